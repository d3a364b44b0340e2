package backend

import (
	"context"
	"time"

	"saldo/internal/remote"
	"saldo/internal/remote/rest"
	"saldo/internal/repository"
)

// Backend bundles the stores every data backend must provide.
type Backend interface {
	remote.Store
	remote.ProfileStore
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// BackendResult contains the backend instance plus the optional pieces
// only some backends provide.
type BackendResult struct {
	Backend Backend

	// Remote is set only for the rest backend; it additionally serves
	// authentication and avatar uploads.
	Remote *rest.Client

	// Events is the change feed publisher, nil when AMQP is not configured.
	Events repository.Publisher

	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config, token rest.TokenProvider) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Remote (rest) specific
	RemoteURL     string
	RemoteAnonKey string
	AvatarBucket  string
	HTTPTimeout   time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Change feed (optional for every backend)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	RESTBackend   BackendType = "rest"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case RESTBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
