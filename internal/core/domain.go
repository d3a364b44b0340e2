package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

type (
	// Type carries the sign of a transaction. Amounts are stored as
	// non-negative magnitudes; the type decides whether an amount adds to
	// or subtracts from the balance.
	Type string

	// Date is a calendar date with no time component (YYYY-MM-DD).
	Date struct {
		time.Time
	}

	// Transaction is one committed row of the remote transaction table.
	// ID and CreatedAt are assigned by the store, never by the client.
	Transaction struct {
		ID          string
		UserID      string
		Date        Date
		Description *string // nil means absent, distinct from empty
		Amount      Money
		Type        Type
		CreatedAt   time.Time
	}

	// Payload is a validated set of fields for a create or update. The
	// owning user and the id are supplied by the caller, not the payload.
	Payload struct {
		Date        Date
		Description *string
		Amount      Money
		Type        Type
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrMissingUser   = errors.New("missing user id")
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t Type) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (p Payload) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	return p.Type.Validate()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrMissingUser
	}
	return Payload{Date: t.Date, Description: t.Description, Amount: t.Amount, Type: t.Type}.Validate()
}

// Signed returns the amount in cents with the sign applied from the type.
// Display layers must take the sign from here, never from the stored number.
func (t Transaction) Signed() int64 {
	if t.Type == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

// Compare orders transactions most recent first: date descending, then
// createdAt descending. Returns a negative value when a sorts before b.
func Compare(a, b Transaction) int {
	switch {
	case a.Date.After(b.Date.Time):
		return -1
	case b.Date.After(a.Date.Time):
		return 1
	case a.CreatedAt.After(b.CreatedAt):
		return -1
	case b.CreatedAt.After(a.CreatedAt):
		return 1
	default:
		return 0
	}
}

// Sort sorts a transaction list in place into the canonical order.
func Sort(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return Compare(txs[i], txs[j]) < 0
	})
}
