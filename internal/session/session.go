// Package session is the vault core: it unlocks a stored vault with a master
// password and then adds, lists and removes accounts, encrypting and
// decrypting secrets with the key derived at unlock time.
//
// State machine:
//
//	Uninitialized --Setup--> Unlocked
//	AwaitingUnlock --Unlock--> Unlocked   (failed Unlock stays in AwaitingUnlock)
//	any --Close--> Closed
//
// The key is derived exactly once per Setup or Unlock. A Session is not safe
// for concurrent use.
package session

import (
	"context"
	"crypto/subtle"
	"fmt"
	"iter"

	"github.com/dmitrijs2005/keyvault/internal/audit"
	"github.com/dmitrijs2005/keyvault/internal/common"
	"github.com/dmitrijs2005/keyvault/internal/cryptox"
	"github.com/dmitrijs2005/keyvault/internal/logging"
	"github.com/dmitrijs2005/keyvault/internal/models"
	"github.com/dmitrijs2005/keyvault/internal/store"
)

type State int

const (
	StateUninitialized State = iota
	StateAwaitingUnlock
	StateUnlocked
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingUnlock:
		return "awaiting_unlock"
	case StateUnlocked:
		return "unlocked"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// AccountView is one decrypted account as produced by Accounts. Err is set,
// wrapping common.ErrDecrypt, when this record's secret could not be opened;
// Secret is then empty.
type AccountView struct {
	Title      string
	Kind       models.IdentifierKind
	Identifier string
	Secret     string
	Err        error
}

type Session struct {
	store    store.Store
	kdf      cryptox.KDF
	log      logging.Logger
	recorder audit.Recorder

	vault *models.Vault
	key   cryptox.Key
	state State

	// salt of a Setup whose save failed, reused by the next attempt
	pendingSalt []byte
}

type Option func(*Session)

// WithKDF overrides the key derivation parameters. The same KDF must be
// used for every session on a given vault.
func WithKDF(k cryptox.KDF) Option {
	return func(s *Session) { s.kdf = k }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithRecorder journals vault operations. Journal failures are logged and
// never fail the operation itself.
func WithRecorder(r audit.Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// Open loads the vault from st. The session starts Uninitialized when no
// master verifier exists, AwaitingUnlock otherwise. Load errors, including
// common.ErrCorrupt, are returned as is.
func Open(ctx context.Context, st store.Store, opts ...Option) (*Session, error) {
	s := &Session{
		store:    st,
		kdf:      cryptox.DefaultKDF,
		log:      logging.Nop(),
		recorder: audit.Nop{},
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "session")

	v, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("load vault: %w", err)
	}
	s.vault = v

	if v.Initialized() {
		s.state = StateAwaitingUnlock
	} else {
		s.state = StateUninitialized
	}
	s.log.Debug(ctx, "vault loaded", "state", s.state.String(), "accounts", len(v.Accounts))
	return s, nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) require(want State) error {
	if s.state != want {
		return fmt.Errorf("%w: %s, need %s", common.ErrInvalidState, s.state, want)
	}
	return nil
}

func (s *Session) record(ctx context.Context, op audit.Op, title string) {
	if err := s.recorder.Record(ctx, audit.Event{Op: op, Title: title}); err != nil {
		s.log.Warn(ctx, "audit record failed", "op", string(op), "error", err)
	}
}

// Setup creates a new vault protected by password: a fresh salt, a key
// derived from it, and the password encrypted under that key as the master
// verifier. On success the session is Unlocked.
func (s *Session) Setup(ctx context.Context, password string) error {
	if err := s.require(StateUninitialized); err != nil {
		return err
	}

	salt := s.pendingSalt
	if salt == nil {
		salt = cryptox.NewSalt()
	}
	key := s.kdf.DeriveKey(password, salt)

	verifier, err := cryptox.Encrypt(password, key)
	if err != nil {
		key.Wipe()
		return fmt.Errorf("encrypt verifier: %w", err)
	}

	v := &models.Vault{Master: verifier, Salt: salt, Accounts: []models.Account{}}
	if err := s.store.Save(v); err != nil {
		key.Wipe()
		s.pendingSalt = salt
		s.log.Warn(ctx, "vault setup not saved", "error", err)
		return fmt.Errorf("save new vault: %w", err)
	}

	s.pendingSalt = nil
	s.vault = v
	s.key = key
	s.state = StateUnlocked
	s.log.Info(ctx, "vault initialized")
	s.record(ctx, audit.OpSetup, "")
	return nil
}

// Unlock derives a key from candidate and the stored salt and checks it
// against the master verifier. A mismatch, or a verifier that fails to
// decrypt, returns common.ErrAuth and leaves the session AwaitingUnlock.
func (s *Session) Unlock(ctx context.Context, candidate string) error {
	if err := s.require(StateAwaitingUnlock); err != nil {
		return err
	}

	key := s.kdf.DeriveKey(candidate, s.vault.Salt)

	recovered, err := cryptox.Decrypt(s.vault.Master, key)
	if err != nil || subtle.ConstantTimeCompare([]byte(recovered), []byte(candidate)) != 1 {
		key.Wipe()
		s.log.Warn(ctx, "unlock failed")
		s.record(ctx, audit.OpUnlockFailed, "")
		return common.ErrAuth
	}

	s.key = key
	s.state = StateUnlocked
	s.log.Info(ctx, "vault unlocked", "accounts", len(s.vault.Accounts))
	s.record(ctx, audit.OpUnlock, "")
	return nil
}

// AddAccount encrypts secret and appends a new account, then persists the
// vault. Titles are not required to be unique. If saving fails the account
// is not kept in memory either.
func (s *Session) AddAccount(ctx context.Context, title, identifier string, kind models.IdentifierKind, secret string) error {
	if err := s.require(StateUnlocked); err != nil {
		return err
	}
	if title == "" {
		return &common.ValidationError{Rules: []string{"title is required"}}
	}
	if !kind.Valid() {
		return &common.ValidationError{Rules: []string{fmt.Sprintf("unknown identifier kind %q", kind)}}
	}

	blob, err := cryptox.Encrypt(secret, s.key)
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}

	prev := s.vault.Accounts
	s.vault.Accounts = append(prev[:len(prev):len(prev)], models.Account{
		Title:      title,
		Kind:       kind,
		Identifier: identifier,
		Secret:     blob,
	})
	if err := s.store.Save(s.vault); err != nil {
		s.vault.Accounts = prev
		return fmt.Errorf("save vault: %w", err)
	}

	s.log.Info(ctx, "account added", "title", title, "kind", string(kind))
	s.record(ctx, audit.OpAdd, title)
	return nil
}

// Accounts yields every stored account in order, decrypting each secret
// only when the consumer reaches it. A record that fails to decrypt is
// yielded with Err set and the iteration continues. Outside the Unlocked
// state the sequence is empty.
func (s *Session) Accounts() iter.Seq[AccountView] {
	return func(yield func(AccountView) bool) {
		if s.state != StateUnlocked {
			return
		}
		for _, a := range s.vault.Accounts {
			view := AccountView{Title: a.Title, Kind: a.Kind, Identifier: a.Identifier}
			secret, err := cryptox.Decrypt(a.Secret, s.key)
			if err != nil {
				view.Err = fmt.Errorf("account %q: %w", a.Title, err)
			} else {
				view.Secret = secret
			}
			if !yield(view) {
				return
			}
		}
	}
}

// Len returns the number of stored accounts.
func (s *Session) Len() int {
	if s.vault == nil {
		return 0
	}
	return len(s.vault.Accounts)
}

// RemoveAccount deletes the first account titled title and persists the
// vault. It reports false, with a nil error, when nothing matched.
func (s *Session) RemoveAccount(ctx context.Context, title string) (bool, error) {
	if err := s.require(StateUnlocked); err != nil {
		return false, err
	}

	i := s.vault.IndexOf(title)
	if i < 0 {
		s.log.Debug(ctx, "remove: no such account", "title", title)
		return false, nil
	}

	prev := s.vault.Accounts
	next := make([]models.Account, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)

	s.vault.Accounts = next
	if err := s.store.Save(s.vault); err != nil {
		s.vault.Accounts = prev
		return false, fmt.Errorf("save vault: %w", err)
	}

	s.log.Info(ctx, "account removed", "title", title)
	s.record(ctx, audit.OpRemove, title)
	return true, nil
}

// Close discards the session key. Every later operation fails with
// common.ErrInvalidState. Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) {
	if s.state == StateClosed {
		return
	}
	wasUnlocked := s.state == StateUnlocked
	s.key.Wipe()
	s.vault = nil
	s.state = StateClosed
	if wasUnlocked {
		s.record(ctx, audit.OpClose, "")
	}
	s.log.Debug(ctx, "session closed")
}
