package backend

import (
	"context"
	"errors"
	"fmt"

	"rentledger/internal/amqp"
	"rentledger/internal/log"
	"rentledger/internal/storage"
	"rentledger/internal/store"
	"rentledger/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default().WithComponent(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the configured store and, when an AMQP URL is set,
// the payment event client. A broker that cannot be reached is logged and
// skipped so the ledger stays usable.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var res *BackendResult
	var err error
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		res = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			res.AMQP = client
			storeCleanup := res.Cleanup
			res.Cleanup = func() error {
				return errors.Join(client.Close(), storeCleanup())
			}
		}
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Store:   repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) *BackendResult {
	var st store.Store = memory.New()
	if config.Seed {
		st = memory.NewWithSeed()
	}
	f.logger.InfoContext(ctx, "Initialized memory backend", "seeded", config.Seed)
	return &BackendResult{
		Store:   st,
		Ready:   func(context.Context) error { return nil },
		Cleanup: func() error { return nil },
	}
}
