// Package form holds the transaction entry session: which editor is open,
// its raw field values, and the submit lifecycle. Exactly one session is
// open at a time; opening a new one replaces the previous.
package form

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"saldo/internal/core"
	applog "saldo/internal/log"
)

type Mode int

const (
	ModeClosed Mode = iota
	ModeCreating
	ModeEditing
)

var (
	ErrNotOpen  = errors.New("no form is open")
	ErrInFlight = errors.New("a submit is already in flight")
)

// Saver is the slice of the repository the form needs.
type Saver interface {
	Create(ctx context.Context, p core.Payload) (core.Transaction, error)
	Update(ctx context.Context, id string, p core.Payload) (core.Transaction, error)
}

// Fields are the raw user-entered values. They stay strings until Submit,
// so a half-typed amount never corrupts state.
type Fields struct {
	Date        string
	Description string
	Amount      string
	Type        string
}

type Session struct {
	saver Saver

	mu         sync.Mutex
	mode       Mode
	editID     string
	fields     Fields
	submitting bool
}

func NewSession(saver Saver) *Session {
	return &Session{saver: saver}
}

// OpenCreate opens a blank form. The date defaults to today and the type
// to expense, the common case.
func (s *Session) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeCreating
	s.editID = ""
	s.submitting = false
	s.fields = Fields{
		Date: core.Today().String(),
		Type: string(core.Expense),
	}
}

// OpenEdit opens the form pre-filled from an existing transaction.
func (s *Session) OpenEdit(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeEditing
	s.editID = tx.ID
	s.submitting = false
	s.fields = Fields{
		Date:   tx.Date.String(),
		Amount: tx.Amount.Decimal(),
		Type:   string(tx.Type),
	}
	if tx.Description != nil {
		s.fields.Description = *tx.Description
	}
}

// Cancel closes the form and discards its fields. Pending input is lost,
// which is what discarding means.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeClosed
	s.editID = ""
	s.fields = Fields{}
	s.submitting = false
}

func (s *Session) SetDate(v string)        { s.setField(func(f *Fields) { f.Date = v }) }
func (s *Session) SetDescription(v string) { s.setField(func(f *Fields) { f.Description = v }) }
func (s *Session) SetAmount(v string)      { s.setField(func(f *Fields) { f.Amount = v }) }
func (s *Session) SetType(v string)        { s.setField(func(f *Fields) { f.Type = v }) }

func (s *Session) setField(apply func(*Fields)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeClosed {
		return
	}
	apply(&s.fields)
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// EditingID returns the transaction being edited, or "" in create mode.
func (s *Session) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editID
}

func (s *Session) Fields() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}

func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submit parses and validates the fields, then hands the payload to the
// repository. Validation failures return before any network call and keep
// the form open so the user can correct the input. A second Submit while
// one is in flight is rejected.
func (s *Session) Submit(ctx context.Context) (core.Transaction, error) {
	s.mu.Lock()
	if s.mode == ModeClosed {
		s.mu.Unlock()
		return core.Transaction{}, ErrNotOpen
	}
	if s.submitting {
		s.mu.Unlock()
		return core.Transaction{}, ErrInFlight
	}
	mode, editID := s.mode, s.editID
	payload, err := parse(s.fields)
	if err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.submitting = true
	s.mu.Unlock()

	var tx core.Transaction
	if mode == ModeEditing {
		tx, err = s.saver.Update(ctx, editID, payload)
	} else {
		tx, err = s.saver.Create(ctx, payload)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		// The form stays open with its fields so the attempt can be retried.
		return core.Transaction{}, err
	}
	slog.DebugContext(ctx, "Form submitted",
		applog.FieldComponent, applog.ComponentForm,
		applog.FieldOperation, applog.OpSubmit,
		applog.FieldTransactionID, tx.ID)
	s.mode = ModeClosed
	s.editID = ""
	s.fields = Fields{}
	return tx, nil
}

func parse(f Fields) (core.Payload, error) {
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.Payload{}, err
	}
	cents, err := core.ParseDecimalToCents(f.Amount)
	if err != nil {
		return core.Payload{}, err
	}
	p := core.Payload{
		Date:   date,
		Amount: core.Money{Cents: cents},
		Type:   core.Type(strings.ToLower(strings.TrimSpace(f.Type))),
	}
	if desc := strings.TrimSpace(f.Description); desc != "" {
		p.Description = &desc
	}
	if err := p.Validate(); err != nil {
		return core.Payload{}, err
	}
	return p, nil
}
