package services

import (
	"context"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/store"
)

// EventPublisher announces committed writes. *amqp.Client implements it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
	Close() error
}

var _ EventPublisher = (*amqp.Client)(nil)

// TransactionService orchestrates ledger operations across the store and AMQP
type TransactionService struct {
	store     store.TransactionStore
	publisher EventPublisher
	logger    *applog.Logger
}

// NewTransactionService returns a service over s. publisher may be nil, in
// which case no events are published.
func NewTransactionService(s store.TransactionStore, publisher EventPublisher, logger *applog.Logger) *TransactionService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &TransactionService{
		store:     s,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentBackend),
	}
}

func (s *TransactionService) ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	txs, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// CreateTransaction validates and stores in, then publishes the event.
func (s *TransactionService) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.store.Create(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventCreated, tx))
	return tx, nil
}

// UpdateTransaction applies the fields present in p.
func (s *TransactionService) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	tx, err := s.store.Patch(ctx, id, p)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.NewTransactionEvent(amqp.EventUpdated, tx))
	return tx, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewDeleteEvent(id))
	return nil
}

// Summary totals the transactions in p.
func (s *TransactionService) Summary(ctx context.Context, p core.Period) (core.Summary, error) {
	txs, err := s.store.List(ctx, core.Filter{})
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary: %w", err)
	}
	var in []core.Transaction
	for _, tx := range txs {
		if p.Matches(tx) {
			in = append(in, tx)
		}
	}
	return core.Summarize(in), nil
}

// publish never fails the request: the write is already committed.
func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpPublish,
			"type", ev.Type,
			applog.FieldTransactionID, ev.TransactionID)
	}
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
