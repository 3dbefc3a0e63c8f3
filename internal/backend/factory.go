package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hustleledger/internal/amqp"
	"hustleledger/internal/log"
	"hustleledger/internal/notify"
	"hustleledger/internal/ports"
	"hustleledger/internal/storage"
	"hustleledger/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
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

	sink, closeSink := f.createSink(config, result.Store)
	result.Sink = sink
	result.Cleanup = chain(closeSink, result.Cleanup)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{Store: store}, nil
}

// createSink puts the durable target first so its handles are the ones
// stored on templates. The broker connection is opened on first use.
func (f *DefaultFactory) createSink(config Config, store ports.Store) (notify.Sink, CleanupFunc) {
	logSink := notify.NewLogSink(f.logger)
	if config.AMQPURL == "" {
		f.logger.Info("AMQP disabled - notifications go to the local inbox")
		return notify.Fanout{notify.NewInbox(store), logSink}, nil
	}

	var (
		mu     sync.Mutex
		client *amqp.Client
	)
	lazy := notify.NewLazySink(func() (notify.Sink, error) {
		c, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		client = c
		mu.Unlock()
		f.logger.Info("Initialized AMQP client",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return amqp.NewPublisher(c), nil
	}, f.logger)

	closeClient := func() error {
		mu.Lock()
		defer mu.Unlock()
		if client == nil {
			return nil
		}
		return client.Close()
	}
	return notify.Fanout{lazy, logSink}, closeClient
}

func chain(fns ...CleanupFunc) CleanupFunc {
	return func() error {
		var errs []error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
