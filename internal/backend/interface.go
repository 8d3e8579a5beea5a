package backend

import (
	"context"

	"rentledger/internal/amqp"
	"rentledger/internal/store"
)

// CleanupFunc releases resources held by a backend
type CleanupFunc func() error

// BackendResult is a ready store plus the optional payment event client.
type BackendResult struct {
	Store store.Store
	// AMQP is nil when no broker is configured.
	AMQP    *amqp.Client
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Seed adds a demo asset to an empty memory backend.
	Seed bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
