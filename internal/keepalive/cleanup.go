package keepalive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrCleanupTimeout is reported when resources did not close in time.
var ErrCleanupTimeout = errors.New("cleanup timeout exceeded")

// CleanupManager stops the keeper and closes sinks on shutdown. Steps
// run once, in registration order, within a shared timeout.
type CleanupManager struct {
	mu      sync.Mutex
	steps   []cleanupStep
	timeout time.Duration
	logger  *zap.Logger

	once sync.Once
	errs []error
}

type cleanupStep struct {
	name string
	fn   func() error
}

// NewCleanupManager returns a manager that gives up after timeout
// (5s when zero).
func NewCleanupManager(timeout time.Duration, logger *zap.Logger) *CleanupManager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupManager{timeout: timeout, logger: logger.Named("cleanup")}
}

// Register closes c on shutdown.
func (cm *CleanupManager) Register(name string, c io.Closer) {
	cm.RegisterFunc(name, c.Close)
}

// RegisterFunc runs fn on shutdown.
func (cm *CleanupManager) RegisterFunc(name string, fn func() error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.steps = append(cm.steps, cleanupStep{name: name, fn: fn})
}

// Execute runs every step and returns their errors, each prefixed with
// the step name. Later calls return the result of the first.
func (cm *CleanupManager) Execute() []error {
	cm.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cm.timeout)
		defer cancel()
		cm.errs = cm.run(ctx)
	})
	return cm.errs
}

func (cm *CleanupManager) run(ctx context.Context) []error {
	cm.mu.Lock()
	steps := append([]cleanupStep(nil), cm.steps...)
	cm.mu.Unlock()

	// Buffered so a step finishing after the deadline never blocks.
	results := make(chan error, len(steps))
	go func() {
		defer close(results)
		for _, st := range steps {
			results <- cm.runStep(st)
		}
	}()

	var errs []error
	for {
		select {
		case err, ok := <-results:
			if !ok {
				return errs
			}
			if err != nil {
				errs = append(errs, err)
			}
		case <-ctx.Done():
			cm.logger.Warn("cleanup timed out", zap.Duration("timeout", cm.timeout))
			return append(errs, ErrCleanupTimeout)
		}
	}
}

func (cm *CleanupManager) runStep(st cleanupStep) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cm.logger.Error("panic during cleanup", zap.String("resource", st.name), zap.Any("panic", r))
			err = fmt.Errorf("%s: panic: %v", st.name, r)
		}
	}()

	if err := st.fn(); err != nil {
		cm.logger.Warn("cleanup failed", zap.String("resource", st.name), zap.Error(err))
		return fmt.Errorf("%s: %w", st.name, err)
	}
	cm.logger.Debug("cleaned up", zap.String("resource", st.name))
	return nil
}

// Clear drops every registered step without running it.
func (cm *CleanupManager) Clear() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.steps = nil
}
