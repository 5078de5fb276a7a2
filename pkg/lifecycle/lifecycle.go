// Package lifecycle coordinates startup and shutdown of long-lived systems
// and tracks whether the service is ready for traffic.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator runs startup hooks, holds the context that shutdown cancels,
// and aggregates the readiness of watched subsystems.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  sync.WaitGroup
	shutdown sync.WaitGroup
	started  atomic.Bool

	mu       sync.RWMutex
	checkers map[string]ReadinessChecker
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:      ctx,
		cancel:   cancel,
		checkers: make(map[string]ReadinessChecker),
	}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine. WaitForStartup waits for it.
func (c *Coordinator) OnStartup(fn func()) {
	c.startup.Go(fn)
}

// OnShutdown runs fn in its own goroutine. Hooks block on
// <-c.Context().Done() before releasing resources; Shutdown waits for them.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// Watch adds a subsystem whose readiness gates Ready.
func (c *Coordinator) Watch(name string, checker ReadinessChecker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkers[name] = checker
}

// Status reports the readiness of each watched subsystem.
func (c *Coordinator) Status() map[string]bool {
	c.mu.RLock()
	checkers := maps.Clone(c.checkers)
	c.mu.RUnlock()

	status := make(map[string]bool, len(checkers))
	for name, checker := range checkers {
		status[name] = checker.Ready()
	}
	return status
}

// Ready is true once every startup hook has returned and every watched
// subsystem reports ready.
func (c *Coordinator) Ready() bool {
	if !c.started.Load() {
		return false
	}
	for _, ok := range c.Status() {
		if !ok {
			return false
		}
	}
	return true
}

// WaitForStartup blocks until all startup hooks have returned.
func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()
	c.started.Store(true)
}

// Shutdown cancels the context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown hooks still running after %v", timeout)
	}
}
