package remote

import (
	"context"

	"saldo/internal/core"
)

// Ports for the managed-backend collaborators. The core interprets a
// failure from any of these as exactly that: a failure with a message. It
// never inspects error codes.
type (
	// Store is the transaction table contract. List rows come back in
	// canonical order (date desc, createdAt desc); implementations that
	// cannot guarantee server-side ordering must sort before returning.
	Store interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		InsertTransaction(ctx context.Context, userID string, p core.Payload) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id string, p core.Payload) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	// ProfileStore reads and upserts the per-user profile row.
	ProfileStore interface {
		FetchProfile(ctx context.Context, userID string) (Profile, error)
		UpsertProfile(ctx context.Context, p Profile) error
	}

	// AvatarUploader writes an object into the avatar bucket and returns
	// its public URL.
	AvatarUploader interface {
		UploadAvatar(ctx context.Context, path string, contentType string, data []byte) (publicURL string, err error)
	}
)

// Profile is the account row next to the transaction table. Nullable
// columns stay pointers so absent and empty remain distinct.
type Profile struct {
	ID        string
	FullName  *string
	AvatarURL *string
	UpdatedAt string // RFC3339, set by the caller on save
}
