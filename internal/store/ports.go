// Package store defines the persistence ports of the ledger backend.
package store

import (
	"context"

	"ledger/internal/core"
)

// Ports implemented by the memory and SQLite stores.
type (
	TransactionReader interface {
		// List returns the transactions matching f in insertion order.
		List(ctx context.Context, f core.Filter) ([]core.Transaction, error)
		// Get returns core.ErrNotFound for unknown ids.
		Get(ctx context.Context, id int64) (core.Transaction, error)
	}

	TransactionWriter interface {
		// Create assigns the next id and stores in.
		Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
		// Patch applies p to transaction id atomically and returns the
		// updated transaction.
		Patch(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error)
		// Delete removes transaction id or returns core.ErrNotFound.
		Delete(ctx context.Context, id int64) error
	}

	TransactionStore interface {
		TransactionReader
		TransactionWriter
		Close() error
	}
)
