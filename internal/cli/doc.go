// Package cli provides the interactive keyvault command-line shell.
//
// It wires configuration, the file-backed vault store, the audit journal and
// a vault session, then asks for the master password (setting one up on
// first run) and drops into a REPL.
//
// Commands:
//   - save     add an account (empty password generates one)
//   - list     print every account with its decrypted password
//   - remove   delete the first account with a given title
//   - generate print a fresh random password
//   - history  show recent vault operations from the audit journal
//   - help, quit
//
// The shell is started via App.Run(ctx), which blocks until the user quits.
package cli
