package backend

import (
	"context"
	"fmt"

	"ledger/internal/amqp"
	applog "ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/store"
	"ledger/internal/store/memory"
	"ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.TransactionStore
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		if config.DataFile != "" {
			st = memory.NewFromFile(config.DataFile, f.logger)
		} else {
			st = memory.New()
		}
		f.logger.Info("Initialized memory backend", "data_file", config.DataFile)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	publisher := f.createPublisher(ctx, config)
	var pub services.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	service := services.NewTransactionService(st, pub, f.logger)

	return &BackendResult{
		Backend: service,
		Cleanup: service.Close,
	}, nil
}

// createPublisher connects to AMQP when configured. A broker that cannot be
// reached disables events instead of failing startup.
func (f *DefaultFactory) createPublisher(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
