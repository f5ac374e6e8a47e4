package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"

	"github.com/dmitrijs2005/keyvault/internal/common"
	"github.com/dmitrijs2005/keyvault/internal/policy"
)

// historySize is how many journal events the history command shows.
const historySize = 10

// writeClipboard is a test seam for the system clipboard.
var writeClipboard = clipboard.WriteAll

// Save prompts for title, identifier and password and stores a new
// account. An empty password is replaced by a generated one, which is
// printed once.
func (a *App) Save(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	if title == "" {
		return &common.ValidationError{Rules: []string{"title is required"}}
	}

	identifier, err := GetSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		return err
	}
	if identifier == "" {
		return &common.ValidationError{Rules: []string{"email or username is required"}}
	}
	kind := policy.Classify(identifier)

	password, err := GetPassword(a.reader, "Enter password (leave empty to generate one)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	secret := string(password)
	if secret == "" {
		secret, err = policy.GenerateSecret(a.config.SecretLength)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Generated password:", secret)
	} else if err := policy.Check(secret, a.config.MinPasswordLength); err != nil {
		return err
	}

	if err := a.session.AddAccount(ctx, title, identifier, kind, secret); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %q (%s).\n", title, kind)
	return nil
}

// List prints every account. Records that fail to decrypt are reported in
// place and do not hide the others.
func (a *App) List(ctx context.Context) error {
	if a.session.Len() == 0 {
		fmt.Fprintln(a.out, "No accounts stored.")
		return nil
	}

	failed := 0
	for v := range a.session.Accounts() {
		if v.Err != nil {
			failed++
			a.log.Warn(ctx, "account unreadable", "title", v.Title, "error", v.Err)
			fmt.Fprintf(a.out, "%s | %s: %s | password: %s\n", v.Title, v.Kind, v.Identifier, color.YellowString("<unreadable>"))
			continue
		}
		fmt.Fprintf(a.out, "%s | %s: %s | password: %s\n", v.Title, v.Kind, v.Identifier, v.Secret)
	}
	if failed > 0 {
		fmt.Fprintf(a.out, "%d account(s) could not be decrypted; the vault file may have been modified.\n", failed)
	}
	return nil
}

// Remove deletes the first account with the entered title.
func (a *App) Remove(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title to remove", a.out)
	if err != nil {
		return err
	}

	removed, err := a.session.RemoveAccount(ctx, title)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(a.out, "No account titled %q.\n", title)
		return nil
	}
	fmt.Fprintf(a.out, "Removed %q.\n", title)
	return nil
}

// Copy puts the password of the first account with the entered title on
// the system clipboard instead of printing it.
func (a *App) Copy(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title to copy", a.out)
	if err != nil {
		return err
	}

	for v := range a.session.Accounts() {
		if v.Title != title {
			continue
		}
		if v.Err != nil {
			return v.Err
		}
		if err := writeClipboard(v.Secret); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		a.log.Debug(ctx, "password copied", "title", title)
		fmt.Fprintf(a.out, "Password for %q copied to clipboard.\n", title)
		return nil
	}

	fmt.Fprintf(a.out, "No account titled %q.\n", title)
	return nil
}

func (a *App) Generate(context.Context) error {
	secret, err := policy.GenerateSecret(a.config.SecretLength)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, secret)
	return nil
}

// History prints the most recent journal events, newest first. With an
// event id as argument it prints that single event in full.
func (a *App) History(ctx context.Context, args []string) error {
	if a.journal == nil {
		fmt.Fprintln(a.out, "Audit journal unavailable.")
		return nil
	}

	if len(args) > 0 {
		e, err := a.journal.Get(ctx, args[0])
		if errors.Is(err, common.ErrNotFound) {
			fmt.Fprintf(a.out, "No event with id %q.\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("read audit journal: %w", err)
		}
		fmt.Fprintf(a.out, "id:    %s\nat:    %s\nop:    %s\n", e.ID, e.At.Local().Format(time.RFC3339), e.Op)
		if e.Title != "" {
			fmt.Fprintf(a.out, "title: %s\n", e.Title)
		}
		return nil
	}

	events, err := a.journal.Recent(ctx, historySize)
	if err != nil {
		return fmt.Errorf("read audit journal: %w", err)
	}
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No activity recorded.")
		return nil
	}
	for _, e := range events {
		line := e.ID + "  " + e.At.Local().Format("2006-01-02 15:04:05") + "  " + string(e.Op)
		if e.Title != "" {
			line += "  " + e.Title
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}
