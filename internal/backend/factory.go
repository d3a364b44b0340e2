package backend

import (
	"context"
	"fmt"

	"saldo/internal/amqp"
	applog "saldo/internal/log"
	"saldo/internal/remote/memory"
	"saldo/internal/remote/rest"
	"saldo/internal/remote/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Default()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, token rest.TokenProvider) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	var result *BackendResult
	var err error
	switch config.Type {
	case RESTBackend:
		result, err = f.createRESTBackend(config, token)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachChangeFeed(result, config)
	return result, nil
}

func (f *DefaultFactory) createRESTBackend(config Config, token rest.TokenProvider) (*BackendResult, error) {
	client := rest.NewClient(config.RemoteURL, config.RemoteAnonKey, config.AvatarBucket, config.HTTPTimeout, token)

	f.logger.Info("Initialized rest backend", "base_url", config.RemoteURL, "timeout", config.HTTPTimeout)

	return &BackendResult{
		Backend: client,
		Remote:  client,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	store, err := sqlite.New(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(Config) (*BackendResult, error) {
	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Backend: memory.New(),
	}, nil
}

// attachChangeFeed wires the optional AMQP publisher. A broker that cannot
// be reached downgrades to no feed instead of failing startup.
func (f *DefaultFactory) attachChangeFeed(result *BackendResult, config Config) {
	if config.AMQPURL == "" {
		return
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without change feed", "error", err)
		return
	}

	f.logger.Info("Initialized AMQP change feed",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Events = client

	storeCleanup := result.Cleanup
	result.Cleanup = func() error {
		amqpErr := client.Close()
		if storeCleanup != nil {
			if err := storeCleanup(); err != nil {
				return err
			}
		}
		return amqpErr
	}
}
