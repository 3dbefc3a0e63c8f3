package notify

import (
	"context"
	"sync"

	"hustleledger/internal/log"
)

// Lazy memoizes a loader. The loader runs at most once; if it fails the value
// stays unavailable for the life of the process.
type Lazy[T any] struct {
	once   sync.Once
	load   func() (T, error)
	value  T
	ok     bool
	logger *log.Logger
}

func NewLazy[T any](load func() (T, error), logger *log.Logger) *Lazy[T] {
	if logger == nil {
		logger = log.Discard()
	}
	return &Lazy[T]{load: load, logger: logger.WithComponent(log.ComponentNotify)}
}

// Get returns the loaded value and whether it is available.
func (l *Lazy[T]) Get() (T, bool) {
	l.once.Do(func() {
		if l.load == nil {
			return
		}
		v, err := l.load()
		if err != nil {
			l.logger.Warn("Notification sink unavailable", log.FieldError, err)
			return
		}
		l.value, l.ok = v, true
	})
	return l.value, l.ok
}

// LazySink adapts a lazily loaded Sink to the Sink interface.
type LazySink struct {
	l *Lazy[Sink]
}

func NewLazySink(load func() (Sink, error), logger *log.Logger) *LazySink {
	return &LazySink{l: NewLazy(load, logger)}
}

func (s *LazySink) Notify(ctx context.Context, severity Severity) error {
	sink, ok := s.l.Get()
	if !ok {
		return ErrUnavailable
	}
	return sink.Notify(ctx, severity)
}

func (s *LazySink) Schedule(ctx context.Context, n Notification) (Handle, error) {
	sink, ok := s.l.Get()
	if !ok {
		return "", ErrUnavailable
	}
	return sink.Schedule(ctx, n)
}

func (s *LazySink) Cancel(ctx context.Context, h Handle) error {
	sink, ok := s.l.Get()
	if !ok {
		return ErrUnavailable
	}
	return sink.Cancel(ctx, h)
}
