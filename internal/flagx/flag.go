// Package flagx holds helpers for parsing a subset of the command line, so
// that independent loaders can each pick out only the flags they own.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the elements of args that belong to the flags named in
// allowedFlags, keeping their values.
//
// Both forms are recognized:
//
//	-d /var/lib/keyvault
//	-d=/var/lib/keyvault
//
// A separate value is only taken when the next argument does not start
// with '-'. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlag extracts the config file path given with -c or -config
// from args (normally os.Args[1:]). All other arguments are ignored. It
// returns "" when neither flag is present; when both are, the last wins.
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
