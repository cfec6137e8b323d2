package util

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ShutdownResource is one component that needs an orderly stop
type ShutdownResource struct {
	Name     string
	Shutdown func(context.Context) error
	Priority int // Lower numbers shut down first
}

// GracefulShutdown stops registered resources in priority order. Outer
// surfaces (HTTP, WebSocket) register with low priorities so they stop
// accepting work before the pipeline behind them is torn down.
type GracefulShutdown struct {
	mu        sync.Mutex
	resources []ShutdownResource
	logger    *logrus.Logger
	timeout   time.Duration
}

// NewGracefulShutdown creates a shutdown manager with a total timeout
func NewGracefulShutdown(logger *logrus.Logger, timeout time.Duration) *GracefulShutdown {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GracefulShutdown{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a resource, kept sorted by priority
func (gs *GracefulShutdown) Register(name string, priority int, shutdown func(context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	resource := ShutdownResource{Name: name, Priority: priority, Shutdown: shutdown}

	inserted := false
	for i, existing := range gs.resources {
		if resource.Priority < existing.Priority {
			gs.resources = append(gs.resources[:i], append([]ShutdownResource{resource}, gs.resources[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		gs.resources = append(gs.resources, resource)
	}

	gs.logger.WithFields(logrus.Fields{
		"resource": name,
		"priority": priority,
	}).Debug("Registered resource for graceful shutdown")
}

// Shutdown stops all registered resources sequentially in priority
// order. A slow resource consumes shared budget; the remaining ones get
// whatever is left of the timeout.
func (gs *GracefulShutdown) Shutdown(ctx context.Context) error {
	gs.mu.Lock()
	resources := make([]ShutdownResource, len(gs.resources))
	copy(resources, gs.resources)
	gs.mu.Unlock()

	gs.logger.WithField("resource_count", len(resources)).Info("Starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, gs.timeout)
	defer cancel()

	var firstErr error
	for _, resource := range resources {
		if err := gs.shutdownOne(shutdownCtx, resource); err != nil {
			gs.logger.WithError(err).WithField("resource", resource.Name).Error("Error shutting down resource")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr == nil {
		gs.logger.Info("Graceful shutdown completed")
	}
	return firstErr
}

func (gs *GracefulShutdown) shutdownOne(ctx context.Context, resource ShutdownResource) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				gs.logger.WithFields(logrus.Fields{
					"panic":    r,
					"resource": resource.Name,
				}).Error("Panic during resource shutdown")
				done <- &ShutdownError{Resource: resource.Name, Message: "panic during shutdown"}
			}
		}()
		done <- resource.Shutdown(ctx)
	}()

	select {
	case shutdownErr := <-done:
		if shutdownErr != nil {
			return &ShutdownError{Resource: resource.Name, Message: shutdownErr.Error()}
		}
		return nil
	case <-ctx.Done():
		return &ShutdownError{Resource: resource.Name, Message: "shutdown timeout"}
	}
}

// ShutdownError reports a failed or timed-out resource stop
type ShutdownError struct {
	Resource string
	Message  string
}

func (e *ShutdownError) Error() string {
	return "shutdown of " + e.Resource + " failed: " + e.Message
}
