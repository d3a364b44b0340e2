// Package sqlite is a local store backed by a SQLite file. It fills the
// server's role for offline development: ids and createdAt are assigned
// here on insert.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"saldo/internal/core"
	"saldo/internal/remote"
)

var ErrNotFound = errors.New("transaction not found")

const createdAtLayout = time.RFC3339Nano

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, description, amount_cents, type, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) InsertTransaction(ctx context.Context, userID string, p core.Payload) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        p.Type,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, date, description, amount_cents, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Date.String(), tx.Description,
		tx.Amount.Cents, string(tx.Type), tx.CreatedAt.Format(createdAtLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, p core.Payload) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, description = ?, amount_cents = ?, type = ?
		WHERE id = ?`,
		p.Date.String(), p.Description, p.Amount.Cents, string(p.Type), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return core.Transaction{}, ErrNotFound
	}

	return s.getTransaction(ctx, id)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) getTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, description, amount_cents, type, created_at
		FROM transactions
		WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	return tx, err
}

func (s *Store) FetchProfile(ctx context.Context, userID string) (remote.Profile, error) {
	var p remote.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, avatar_url, updated_at
		FROM profiles
		WHERE id = ?`, userID).Scan(&p.ID, &p.FullName, &p.AvatarURL, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// A fresh account has an empty profile row rather than an error.
		return remote.Profile{ID: userID}, nil
	}
	if err != nil {
		return remote.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p remote.Profile) error {
	if p.ID == "" {
		return core.ErrMissingUser
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, full_name, avatar_url, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			full_name = excluded.full_name,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at`,
		p.ID, p.FullName, p.AvatarURL, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		date      string
		typ       string
		createdAt string
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &date, &tx.Description, &tx.Amount.Cents, &typ, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	tx.Date = d
	tx.Type = core.Type(typ)

	ts, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored created_at %q: %w", createdAt, err)
	}
	tx.CreatedAt = ts
	return tx, nil
}
