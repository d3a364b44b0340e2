package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"saldo/internal/core"
	"saldo/internal/remote"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "saldo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndListOrdering(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	older, err := s.InsertTransaction(ctx, "u1", core.Payload{
		Date: core.NewDate(2024, 1, 5), Amount: core.Money{Cents: 100}, Type: core.Income,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	newer, err := s.InsertTransaction(ctx, "u1", core.Payload{
		Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 200}, Type: core.Expense,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.InsertTransaction(ctx, "u2", core.Payload{
		Date: core.NewDate(2024, 1, 20), Amount: core.Money{Cents: 999}, Type: core.Income,
	}); err != nil {
		t.Fatalf("insert other user: %v", err)
	}

	got, err := s.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("list scoped to user: got %d rows", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Fatalf("order = [%s, %s]", got[0].Date, got[1].Date)
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatalf("created_at did not round-trip")
	}
}

func TestUpdatePreservesIdentity(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tx, _ := s.InsertTransaction(ctx, "u1", core.Payload{
		Date: core.NewDate(2024, 3, 1), Amount: core.Money{Cents: 100}, Type: core.Income,
	})

	desc := "correzione"
	got, err := s.UpdateTransaction(ctx, tx.ID, core.Payload{
		Date: tx.Date, Description: &desc, Amount: core.Money{Cents: 250}, Type: core.Expense,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != tx.ID || got.UserID != "u1" {
		t.Errorf("identity changed: %+v", got)
	}
	if !got.CreatedAt.Equal(tx.CreatedAt) {
		t.Errorf("created_at changed on update")
	}
	if got.Amount.Cents != 250 || got.Type != core.Expense || got.Description == nil || *got.Description != desc {
		t.Errorf("row = %+v", got)
	}
}

func TestUpdateMissingRow(t *testing.T) {
	s := newStore(t)
	_, err := s.UpdateTransaction(context.Background(), "nope", core.Payload{
		Date: core.NewDate(2024, 3, 1), Amount: core.Money{Cents: 1}, Type: core.Income,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tx, _ := s.InsertTransaction(ctx, "u1", core.Payload{
		Date: core.NewDate(2024, 3, 1), Amount: core.Money{Cents: 1}, Type: core.Income,
	})
	if err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	got, _ := s.ListTransactions(ctx, "u1")
	if len(got) != 0 {
		t.Fatalf("row survived delete")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	fresh, err := s.FetchProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch fresh: %v", err)
	}
	if fresh.ID != "u1" || fresh.FullName != nil {
		t.Fatalf("fresh profile = %+v", fresh)
	}

	name := "Mario Rossi"
	if err := s.UpsertProfile(ctx, remote.Profile{ID: "u1", FullName: &name, UpdatedAt: "2024-03-01T00:00:00Z"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.FetchProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.FullName == nil || *got.FullName != name {
		t.Fatalf("profile = %+v", got)
	}

	if err := s.UpsertProfile(ctx, remote.Profile{}); !errors.Is(err, core.ErrMissingUser) {
		t.Fatalf("upsert without id err = %v", err)
	}
}
