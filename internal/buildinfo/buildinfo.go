// Package buildinfo reports the version the binary was built with.
//
// The variables are set at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/keyvault/internal/buildinfo.buildVersion=v1.0.0 \
//	  -X github.com/dmitrijs2005/keyvault/internal/buildinfo.buildDate=2026-01-01 \
//	  -X github.com/dmitrijs2005/keyvault/internal/buildinfo.buildCommit=abc123"
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

const notAvailable = "N/A"

var (
	buildVersion = notAvailable
	buildDate    = notAvailable
	buildCommit  = notAvailable
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// resolveVersion prefers the link-time version, then the module version
// recorded by the go tool, then the VCS revision.
func resolveVersion() (version, date, commit string) {
	version, date, commit = buildVersion, buildDate, buildCommit
	if version != notAvailable {
		return version, date, commit
	}

	info, ok := readBuildInfo()
	if !ok || info == nil {
		return version, date, commit
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == notAvailable {
				commit = s.Value
			}
		case "vcs.time":
			if date == notAvailable {
				date = s.Value
			}
		}
	}
	return version, date, commit
}

// PrintBuildData writes version, date and commit to w, one per line.
func PrintBuildData(w io.Writer) {
	version, date, commit := resolveVersion()
	fmt.Fprintf(w, "Build version: %s\n", version)
	fmt.Fprintf(w, "Build date: %s\n", date)
	fmt.Fprintf(w, "Build commit: %s\n", commit)
}
