// Package repository owns the local copy of one user's transaction list.
// It is the only writer of that list: every mutation goes to the remote
// store first and the list changes only after the store confirms, so the
// local list is always a subset of what the store would return. The
// aggregates are recomputed from scratch after every change.
package repository

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"saldo/internal/core"
	applog "saldo/internal/log"
	"saldo/internal/remote"
)

// Publisher emits transaction change events after a remote commit. A nil
// publisher disables the change feed; publish failures never fail the
// operation.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, action string, tx core.Transaction) error
}

// State is a snapshot of the list's load status for the UI: "loading",
// "loaded empty", "loaded" and "failed" are all distinguishable.
type State struct {
	Loading bool
	Loaded  bool
	Err     error
}

type Repository struct {
	store  remote.Store
	events Publisher
	userID string

	mu      sync.Mutex
	list    []core.Transaction
	summary core.Summary
	loading bool
	loaded  bool
	loadErr error
	loadSeq uint64
}

// New builds a repository scoped to one user. A session change means a new
// repository; inherited state is never reused across users.
func New(store remote.Store, userID string, events Publisher) *Repository {
	return &Repository{store: store, events: events, userID: userID}
}

// Load fetches the full list for the owning user, replacing local state.
// On failure the previous list stays visible next to the error. A response
// is discarded when a newer Load has been issued since, so a slow stale
// load can never roll the list back.
func (r *Repository) Load(ctx context.Context) error {
	r.mu.Lock()
	r.loadSeq++
	seq := r.loadSeq
	r.loading = true
	r.loadErr = nil
	r.mu.Unlock()

	txs, err := r.store.ListTransactions(ctx, r.userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.loadSeq {
		slog.DebugContext(ctx, "Discarding stale load response",
			applog.FieldComponent, applog.ComponentRepository,
			applog.FieldLoadSeq, seq)
		return nil
	}
	r.loading = false
	if err != nil {
		r.loadErr = &FetchError{cause: err}
		slog.ErrorContext(ctx, "Failed to load transactions",
			applog.FieldComponent, applog.ComponentRepository,
			applog.FieldOperation, applog.OpLoad,
			applog.FieldUserID, r.userID,
			applog.FieldError, err.Error())
		return r.loadErr
	}
	core.Sort(txs)
	r.list = txs
	r.loaded = true
	r.summary = core.Summarize(r.list)
	slog.InfoContext(ctx, "Transactions loaded",
		applog.FieldComponent, applog.ComponentRepository,
		applog.FieldUserID, r.userID,
		applog.FieldListSize, len(r.list))
	return nil
}

// Create inserts a transaction remotely, then places the returned row at
// the position its (date, createdAt) dictates. A backdated row lands where
// the global order puts it, not at the top.
func (r *Repository) Create(ctx context.Context, p core.Payload) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := r.store.InsertTransaction(ctx, r.userID, p)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create transaction",
			applog.FieldComponent, applog.ComponentRepository,
			applog.FieldOperation, applog.OpCreate,
			applog.FieldUserID, r.userID,
			applog.FieldError, err.Error())
		return core.Transaction{}, &WriteError{Op: "create", cause: err}
	}

	r.mu.Lock()
	r.insertSorted(tx)
	r.summary = core.Summarize(r.list)
	r.mu.Unlock()

	slog.InfoContext(ctx, "Transaction created",
		applog.FieldComponent, applog.ComponentRepository,
		applog.FieldTransactionID, tx.ID,
		applog.FieldAmountCents, tx.Amount.Cents,
		applog.FieldTxType, string(tx.Type),
		applog.FieldTxDate, tx.Date.String())
	r.publish(ctx, applog.OpCreate, tx)
	return tx, nil
}

// Update replaces the row with the matching id by identity, not position.
// When the id is locally absent the server row is upserted into the list.
func (r *Repository) Update(ctx context.Context, id string, p core.Payload) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := r.store.UpdateTransaction(ctx, id, p)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to update transaction",
			applog.FieldComponent, applog.ComponentRepository,
			applog.FieldOperation, applog.OpUpdate,
			applog.FieldTransactionID, id,
			applog.FieldError, err.Error())
		return core.Transaction{}, &WriteError{Op: "update", cause: err}
	}

	r.mu.Lock()
	r.removeByID(id)
	r.insertSorted(tx)
	r.summary = core.Summarize(r.list)
	r.mu.Unlock()

	slog.InfoContext(ctx, "Transaction updated",
		applog.FieldComponent, applog.ComponentRepository,
		applog.FieldTransactionID, tx.ID,
		applog.FieldAmountCents, tx.Amount.Cents,
		applog.FieldTxType, string(tx.Type))
	r.publish(ctx, applog.OpUpdate, tx)
	return tx, nil
}

// Remove deletes the row remotely, then drops it from the local list.
// Confirmation happens at the UI boundary before this is invoked.
func (r *Repository) Remove(ctx context.Context, id string) error {
	if err := r.store.DeleteTransaction(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete transaction",
			applog.FieldComponent, applog.ComponentRepository,
			applog.FieldOperation, applog.OpDelete,
			applog.FieldTransactionID, id,
			applog.FieldError, err.Error())
		return &WriteError{Op: "delete", cause: err}
	}

	r.mu.Lock()
	removed, ok := r.takeByID(id)
	r.summary = core.Summarize(r.list)
	r.mu.Unlock()

	slog.InfoContext(ctx, "Transaction deleted",
		applog.FieldComponent, applog.ComponentRepository,
		applog.FieldTransactionID, id)
	if ok {
		r.publish(ctx, applog.OpDelete, removed)
	}
	return nil
}

// Transactions returns a copy of the current ordered list.
func (r *Repository) Transactions() []core.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Transaction, len(r.list))
	copy(out, r.list)
	return out
}

// Summary returns the current aggregates.
func (r *Repository) Summary() core.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// State reports the current load status.
func (r *Repository) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{Loading: r.loading, Loaded: r.loaded, Err: r.loadErr}
}

// Get looks up a transaction by id.
func (r *Repository) Get(id string) (core.Transaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.list {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// UserID returns the owning user.
func (r *Repository) UserID() string {
	return r.userID
}

// insertSorted places tx at its canonical position. Callers hold r.mu.
func (r *Repository) insertSorted(tx core.Transaction) {
	i := sort.Search(len(r.list), func(i int) bool {
		return core.Compare(tx, r.list[i]) <= 0
	})
	r.list = append(r.list, core.Transaction{})
	copy(r.list[i+1:], r.list[i:])
	r.list[i] = tx
}

func (r *Repository) removeByID(id string) {
	_, _ = r.takeByID(id)
}

func (r *Repository) takeByID(id string) (core.Transaction, bool) {
	for i, t := range r.list {
		if t.ID == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			return t, true
		}
	}
	return core.Transaction{}, false
}

func (r *Repository) publish(ctx context.Context, action string, tx core.Transaction) {
	if r.events == nil {
		return
	}
	if err := r.events.PublishTransactionEvent(ctx, action, tx); err != nil {
		// The change feed is best-effort; the commit already happened.
		slog.WarnContext(ctx, "Failed to publish transaction event",
			applog.FieldComponent, applog.ComponentRepository,
			applog.FieldOperation, action,
			applog.FieldTransactionID, tx.ID,
			applog.FieldError, err.Error())
	}
}
