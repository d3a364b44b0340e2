package repository

// FetchError marks a failed list load. The previous list is retained; the
// UI shows stale data with an error indicator until the user reloads.
type FetchError struct {
	cause error
}

func (e *FetchError) Error() string {
	return "fetch transactions: " + e.cause.Error()
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

// WriteError marks a failed create, update or delete. No local state was
// mutated; the user retries by resubmitting.
type WriteError struct {
	Op    string
	cause error
}

func (e *WriteError) Error() string {
	return e.Op + " transaction: " + e.cause.Error()
}

func (e *WriteError) Unwrap() error {
	return e.cause
}
