// Package models defines the vault data model and its on-disk JSON form.
package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/keyvault/internal/cryptox"
)

// IdentifierKind classifies an account identifier.
type IdentifierKind string

const (
	KindEmail    IdentifierKind = "email"
	KindUsername IdentifierKind = "username"
)

func (k IdentifierKind) Valid() bool {
	return k == KindEmail || k == KindUsername
}

var (
	ErrEmptyTitle       = errors.New("account title is empty")
	ErrUnknownKind      = errors.New("unknown identifier kind")
	ErrAmbiguousAccount = errors.New("account must have exactly one of email or username")
	ErrNoMaster         = errors.New("vault has accounts but no master verifier")
)

// Account is a single stored credential. Only the secret is encrypted.
type Account struct {
	Title      string
	Kind       IdentifierKind
	Identifier string
	Secret     cryptox.Blob
}

// accountJSON is the persisted shape. The identifier's field name carries
// its kind, so exactly one of Email/Username is set.
type accountJSON struct {
	Title    string       `json:"title"`
	Email    *string      `json:"email,omitempty"`
	Username *string      `json:"username,omitempty"`
	Password cryptox.Blob `json:"password"`
}

func (a Account) MarshalJSON() ([]byte, error) {
	if a.Title == "" {
		return nil, ErrEmptyTitle
	}
	out := accountJSON{Title: a.Title, Password: a.Secret}
	id := a.Identifier
	switch a.Kind {
	case KindEmail:
		out.Email = &id
	case KindUsername:
		out.Username = &id
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}
	return json.Marshal(out)
}

func (a *Account) UnmarshalJSON(data []byte) error {
	var in accountJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Title == "" {
		return ErrEmptyTitle
	}

	switch {
	case in.Email != nil && in.Username == nil:
		a.Kind, a.Identifier = KindEmail, *in.Email
	case in.Username != nil && in.Email == nil:
		a.Kind, a.Identifier = KindUsername, *in.Username
	default:
		return ErrAmbiguousAccount
	}

	a.Title = in.Title
	a.Secret = in.Password
	return nil
}

// Vault is the root persisted entity. Salt is kept in a separate file and
// never appears in the JSON document.
type Vault struct {
	Master   cryptox.Blob `json:"master"`
	Salt     []byte       `json:"-"`
	Accounts []Account    `json:"accounts"`
}

// Initialized reports whether a master verifier has been set up.
func (v *Vault) Initialized() bool {
	return v.Master != ""
}

// IndexOf returns the index of the first account titled title, or -1.
func (v *Vault) IndexOf(title string) int {
	for i, a := range v.Accounts {
		if a.Title == title {
			return i
		}
	}
	return -1
}

// Validate checks the invariants a loaded document must satisfy.
func (v *Vault) Validate() error {
	if !v.Initialized() && len(v.Accounts) > 0 {
		return ErrNoMaster
	}
	for i, a := range v.Accounts {
		if a.Title == "" {
			return fmt.Errorf("account %d: %w", i, ErrEmptyTitle)
		}
		if !a.Kind.Valid() {
			return fmt.Errorf("account %d: %w", i, ErrUnknownKind)
		}
	}
	return nil
}
