package backend

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/services"
)

// Backend is the set of ledger operations served over the REST API
type Backend interface {
	ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Summary(ctx context.Context, p core.Period) (core.Summary, error)
}

var _ Backend = (*services.TransactionService)(nil)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; empty keeps the ledger in memory only
	DataFile string

	// AMQP events, optional for every backend type
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
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
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
