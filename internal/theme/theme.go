// Package theme holds the two-color UI palette. Colors are six-digit hex
// strings; anything else is rejected so a bad value can never reach the
// renderer.
package theme

import (
	"errors"
	"regexp"
	"sync"
)

var (
	ErrInvalidColor = errors.New("color must be a hex string like #rrggbb")

	hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

const (
	DefaultPrimary   = "#2e86de"
	DefaultSecondary = "#27ae60"
)

type Theme struct {
	Primary   string
	Secondary string
}

func Default() Theme {
	return Theme{Primary: DefaultPrimary, Secondary: DefaultSecondary}
}

// Valid reports whether both colors are well-formed.
func (t Theme) Valid() bool {
	return hexPattern.MatchString(t.Primary) && hexPattern.MatchString(t.Secondary)
}

// Store keeps the active theme. It starts at the defaults and only ever
// holds a valid pair.
type Store struct {
	mu      sync.Mutex
	current Theme
}

func NewStore() *Store {
	return &Store{current: Default()}
}

func (s *Store) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the palette. An invalid pair is rejected and the previous
// theme stays active.
func (s *Store) Set(t Theme) error {
	if !t.Valid() {
		return ErrInvalidColor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = t
	return nil
}

// Reset restores the default palette.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Default()
}
