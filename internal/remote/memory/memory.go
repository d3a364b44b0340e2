// Package memory is an in-process store used for development and tests.
// It plays the server's role: ids and createdAt timestamps are assigned
// here, never by the caller.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"saldo/internal/core"
	"saldo/internal/remote"
)

var ErrNotFound = errors.New("transaction not found")

type Store struct {
	mu       sync.Mutex
	items    []core.Transaction
	profiles map[string]remote.Profile
	lastTick time.Time
}

func New() *Store {
	return &Store{profiles: make(map[string]remote.Profile)}
}

// now returns a strictly increasing timestamp so two inserts in the same
// instant still have a deterministic createdAt order.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastTick) {
		t = s.lastTick.Add(time.Microsecond)
	}
	s.lastTick = t
	return t
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	core.Sort(out)
	return out, nil
}

func (s *Store) InsertTransaction(_ context.Context, userID string, p core.Payload) (core.Transaction, error) {
	tx := core.Transaction{
		UserID:      userID,
		Date:        p.Date,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        p.Type,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	tx.CreatedAt = s.now()
	s.items = append(s.items, tx)
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, p core.Payload) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			t.Date = p.Date
			t.Description = p.Description
			t.Amount = p.Amount
			t.Type = p.Type
			s.items[i] = t
			return t, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) FetchProfile(_ context.Context, userID string) (remote.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	// A fresh account has an empty profile row rather than an error.
	return remote.Profile{ID: userID}, nil
}

func (s *Store) UpsertProfile(_ context.Context, p remote.Profile) error {
	if p.ID == "" {
		return core.ErrMissingUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}
