// Package lifecycle tracks the Running -> ShuttingDown transition and runs the
// registered shutdown hooks exactly once, in registration order, under a deadline.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"
)

// State is the service lifecycle state. ShuttingDown is terminal.
type State int32

const (
	Running State = iota
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting_down"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Hook is a shutdown step. It should return promptly once ctx is done.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Controller owns the shutdown sequence.
type Controller struct {
	logger  *slog.Logger
	timeout time.Duration

	mu    sync.Mutex
	hooks []namedHook

	state atomic.Int32
	once  sync.Once
	err   error
}

// New returns a Controller in the Running state. timeout bounds the whole
// shutdown sequence; zero means no deadline beyond the caller's context.
func New(logger *slog.Logger, timeout time.Duration) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{logger: logger, timeout: timeout}
}

// OnShutdown registers a hook. Hooks registered once shutdown has begun are
// dropped and never run.
func (c *Controller) OnShutdown(name string, fn Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.State() != Running {
		c.logger.Warn("shutdown_hook_dropped", "hook", name)
		return
	}
	c.hooks = append(c.hooks, namedHook{name: name, fn: fn})
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Shutdown moves to ShuttingDown and runs every hook once. A failing hook does
// not stop the ones after it. Concurrent and repeated calls block until the first
// run finishes and return its result.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		c.state.Store(int32(ShuttingDown))
		hooks := append([]namedHook(nil), c.hooks...)
		c.mu.Unlock()

		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		start := time.Now()
		var errs []error
		for _, h := range hooks {
			hookStart := time.Now()
			if err := h.fn(ctx); err != nil {
				c.logger.Error("shutdown_hook_failed",
					"hook", h.name,
					"error", err.Error(),
					"duration_ms", time.Since(hookStart).Milliseconds(),
				)
				errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
				continue
			}
			c.logger.Info("shutdown_hook_done",
				"hook", h.name,
				"duration_ms", time.Since(hookStart).Milliseconds(),
			)
		}
		c.err = errors.Join(errs...)

		c.logger.Info("shutdown_complete",
			"hooks", len(hooks),
			"failed", len(errs),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
	return c.err
}

// WaitForSignal blocks until one of sigs arrives or ctx is done, then returns the
// signal (nil when ctx ended first). It does not run the hooks.
func (c *Controller) WaitForSignal(ctx context.Context, sigs ...os.Signal) os.Signal {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		c.logger.Info("shutting_down", "signal", sig.String())
		return sig
	case <-ctx.Done():
		return nil
	}
}

// Serve runs serve in the background and blocks until a signal arrives, ctx is
// done, or serve returns on its own. In the first two cases the hooks run and
// Serve waits for serve to return. When serve returns first the hooks are
// skipped, so a server that never came up does not tear anything down; its
// error is returned. Hook failures are logged, not returned.
func (c *Controller) Serve(ctx context.Context, serve func() error, sigs ...os.Signal) error {
	served := make(chan error, 1)
	go func() { served <- serve() }()

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	signalled := make(chan struct{})
	go func() {
		c.WaitForSignal(waitCtx, sigs...)
		close(signalled)
	}()

	select {
	case err := <-served:
		cancel()
		<-signalled
		if err != nil {
			c.logger.Error("server_failed", "error", err.Error())
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-signalled:
	}

	if err := c.Shutdown(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error("shutdown_failed", "error", err.Error())
	}
	if err := <-served; err != nil {
		c.logger.Warn("server_stopped_with_error", "error", err.Error())
	}
	return nil
}
