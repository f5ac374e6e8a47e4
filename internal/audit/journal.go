// Package audit keeps an append-only journal of vault operations in a local
// SQLite database. Entries record what happened and to which account title;
// secrets never enter the journal.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/keyvault/internal/audit/migrations"
	"github.com/dmitrijs2005/keyvault/internal/common"
	"github.com/dmitrijs2005/keyvault/internal/dbx"
	"github.com/google/uuid"
)

// Op names a journaled operation.
type Op string

const (
	OpSetup        Op = "setup"
	OpUnlock       Op = "unlock"
	OpUnlockFailed Op = "unlock_failed"
	OpAdd          Op = "add"
	OpRemove       Op = "remove"
	OpClose        Op = "close"
	OpPurge        Op = "purge"
)

type Event struct {
	ID    string
	At    time.Time
	Op    Op
	Title string
}

// Recorder is the write side of the journal, as seen by the session.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// Journal is a SQLite-backed Recorder.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the journal at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := dbx.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := dbx.RunMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate audit journal: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores e, assigning an ID and a UTC timestamp when they are unset.
func (j *Journal) Record(ctx context.Context, e Event) error {
	return j.insert(ctx, j.db, e)
}

func (j *Journal) insert(ctx context.Context, q dbx.DBTX, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = j.now()
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO events (id, at, op, title) VALUES (?, ?, ?, ?)`,
		e.ID, e.At.UTC(), string(e.Op), e.Title)
	if err != nil {
		return fmt.Errorf("failed to record event %s: %w", e.Op, err)
	}
	return nil
}

// Recent returns up to n events, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, at, op, title FROM events ORDER BY at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	result := make([]Event, 0, n)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return result, nil
}

// Get returns the event with the given id, or common.ErrNotFound.
func (j *Journal) Get(ctx context.Context, id string) (Event, error) {
	row := j.db.QueryRowContext(ctx, `SELECT id, at, op, title FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, common.ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("failed to get event[%s]: %w", id, err)
	}
	return e, nil
}

// Purge deletes events older than cutoff and reports how many were removed.
// When anything was removed, a purge event is journaled in the same
// transaction.
func (j *Journal) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE at < ?`, cutoff.UTC())
		if err != nil {
			return err
		}
		if n, err = res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		return j.insert(ctx, tx, Event{Op: OpPurge})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge events: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (Event, error) {
	var (
		e  Event
		op string
	)
	if err := s.Scan(&e.ID, &e.At, &op, &e.Title); err != nil {
		return Event{}, err
	}
	e.Op = Op(op)
	return e, nil
}

// Nop is a Recorder that drops every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
