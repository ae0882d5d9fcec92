package utils

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownManager cancels a context on SIGINT/SIGTERM and runs registered
// hooks in reverse order once the caller decides to stop.
type ShutdownManager struct {
	ctx           context.Context
	cancel        context.CancelFunc
	stopSignals   func()
	logger        *zap.Logger
	gracePeriod   time.Duration
	hooksMutex    sync.Mutex
	shutdownHooks []namedHook
	once          sync.Once
}

type namedHook struct {
	name string
	fn   func(context.Context) error
}

func NewShutdownManager(parent context.Context, gracePeriod time.Duration, logger *zap.Logger) *ShutdownManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(ctx)
	return &ShutdownManager{
		ctx:         ctx,
		cancel:      cancel,
		stopSignals: stop,
		logger:      logger,
		gracePeriod: gracePeriod,
	}
}

// Context is cancelled when a shutdown signal arrives or Shutdown is called.
func (sm *ShutdownManager) Context() context.Context {
	return sm.ctx
}

func (sm *ShutdownManager) RegisterShutdownHook(name string, hook func(context.Context) error) {
	sm.hooksMutex.Lock()
	defer sm.hooksMutex.Unlock()
	sm.shutdownHooks = append(sm.shutdownHooks, namedHook{name: name, fn: hook})
}

// Shutdown cancels the context and runs every hook, last registered first,
// within the grace period. It is safe to call more than once; later calls return nil.
func (sm *ShutdownManager) Shutdown() error {
	var err error
	sm.once.Do(func() {
		sm.cancel()
		sm.stopSignals()

		sm.hooksMutex.Lock()
		hooks := make([]namedHook, len(sm.shutdownHooks))
		copy(hooks, sm.shutdownHooks)
		sm.hooksMutex.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), sm.gracePeriod)
		defer cancel()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			h := hooks[i]
			sm.logger.Debug("running shutdown hook", zap.String("hook", h.name))
			if herr := h.fn(ctx); herr != nil {
				sm.logger.Warn("shutdown hook failed", zap.String("hook", h.name), zap.Error(herr))
				errs = append(errs, herr)
			}
		}
		err = errors.Join(errs...)
	})
	return err
}
