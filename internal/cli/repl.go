package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const helpText = `Available commands:
  save      add an account
  list      show all accounts
  remove    delete an account by title
  copy      copy an account's password to the clipboard
  generate  print a random password
  history   show recent vault activity, or one event by id
  quit      leave the program`

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests use a stub.
type execIface interface {
	Save(ctx context.Context) error
	List(ctx context.Context) error
	Remove(ctx context.Context) error
	Copy(ctx context.Context) error
	Generate(ctx context.Context) error
	History(ctx context.Context, args []string) error
}

// runREPL reads commands from reader until "quit", "exit" or end of input,
// writing prompts and messages to w. The first token of a line selects the
// command; only history looks at the rest. Handler errors are printed and
// the loop continues, except io.EOF, which ends it.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprint(w, "keyvault> ")
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error
		switch cmd {
		case "help", "?":
			fmt.Fprintln(w, helpText)

		case "save", "add":
			cmdErr = a.Save(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "remove", "rm":
			cmdErr = a.Remove(ctx)

		case "copy", "cp":
			cmdErr = a.Copy(ctx)

		case "generate", "gen":
			cmdErr = a.Generate(ctx)

		case "history":
			cmdErr = a.History(ctx, parts[1:])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Not a valid command:", cmd)
		}

		if cmdErr != nil {
			if errors.Is(cmdErr, io.EOF) {
				fmt.Fprintln(w)
				return
			}
			fmt.Fprintln(w, color.RedString("Error:"), cmdErr)
		}
	}
}
