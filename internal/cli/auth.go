package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/keyvault/internal/common"
	"github.com/dmitrijs2005/keyvault/internal/policy"
	"github.com/dmitrijs2005/keyvault/internal/session"
)

func (a *App) authenticate(ctx context.Context) error {
	switch a.session.State() {
	case session.StateUninitialized:
		return a.setup(ctx)
	case session.StateAwaitingUnlock:
		return a.unlock(ctx)
	default:
		return fmt.Errorf("%w: cannot authenticate in state %s", common.ErrInvalidState, a.session.State())
	}
}

// setup asks for a new master password until one passes the strength
// policy and is confirmed, then creates the vault.
func (a *App) setup(ctx context.Context) error {
	fmt.Fprintln(a.out, "No vault found, let's create one.")
	for {
		password, err := GetPassword(a.reader, "Set a master password", a.out)
		if err != nil {
			return err
		}

		if err := policy.Check(string(password), a.config.MinPasswordLength); err != nil {
			common.WipeByteArray(password)
			fmt.Fprintln(a.out, color.YellowString("Master password rejected:"), err)
			continue
		}

		confirm, err := GetPassword(a.reader, "Repeat the master password", a.out)
		if err != nil {
			common.WipeByteArray(password)
			return err
		}
		match := bytes.Equal(password, confirm)
		common.WipeByteArray(confirm)
		if !match {
			common.WipeByteArray(password)
			fmt.Fprintln(a.out, color.YellowString("Passwords do not match."))
			continue
		}

		err = a.session.Setup(ctx, string(password))
		common.WipeByteArray(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, color.GreenString("Master password set!"))
		return nil
	}
}

func (a *App) unlock(ctx context.Context) error {
	password, err := GetPassword(a.reader, "Enter master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Unlock(ctx, string(password)); err != nil {
		if errors.Is(err, common.ErrAuth) {
			fmt.Fprintln(a.out, color.RedString("Incorrect master password! Exiting."))
		}
		return err
	}

	fmt.Fprintln(a.out, color.GreenString("Access Granted."))
	return nil
}
