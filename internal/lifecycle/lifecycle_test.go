package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"filetransfer/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_RunsHooksInOrderOnce(t *testing.T) {
	c := New(nil, time.Second)
	assert.Equal(t, Running, c.State())

	var order []string
	c.OnShutdown("http", func(context.Context) error { order = append(order, "http"); return nil })
	c.OnShutdown("purge", func(context.Context) error { order = append(order, "purge"); return nil })

	require.NoError(t, c.Shutdown(context.Background()))
	require.NoError(t, c.Shutdown(context.Background()))

	assert.Equal(t, []string{"http", "purge"}, order)
	assert.Equal(t, ShuttingDown, c.State())
}

func TestController_ConcurrentShutdown(t *testing.T) {
	c := New(nil, time.Second)

	var calls atomic.Int32
	c.OnShutdown("purge", func(context.Context) error {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Shutdown(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestController_FailingHookDoesNotStopOthers(t *testing.T) {
	var buf bytes.Buffer
	c := New(logging.New(&buf, time.UTC), time.Second)

	ran := false
	c.OnShutdown("http", func(context.Context) error { return errors.New("listener busy") })
	c.OnShutdown("purge", func(context.Context) error { ran = true; return nil })

	err := c.Shutdown(context.Background())

	assert.ErrorContains(t, err, "http: listener busy")
	assert.True(t, ran)
	assert.Contains(t, buf.String(), `"msg":"shutdown_hook_failed"`)
	assert.ErrorContains(t, c.Shutdown(context.Background()), "listener busy", "result is remembered")
}

func TestController_TimeoutBoundsHooks(t *testing.T) {
	c := New(nil, 30*time.Millisecond)

	c.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	err := c.Shutdown(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestController_WaitForSignalContextDone(t *testing.T) {
	c := New(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, c.WaitForSignal(ctx))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "shutting_down", ShuttingDown.String())
	assert.Equal(t, "state(7)", State(7).String())
}

func TestController_LateHookIsDropped(t *testing.T) {
	c := New(nil, time.Second)
	require.NoError(t, c.Shutdown(context.Background()))

	c.OnShutdown("late", func(context.Context) error { return errors.New("should not run") })

	assert.Empty(t, c.hooks)
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestController_ServeFailureSkipsHooks(t *testing.T) {
	c := New(nil, time.Second)
	purged := false
	c.OnShutdown("purge", func(context.Context) error { purged = true; return nil })

	err := c.Serve(context.Background(), func() error { return errors.New("address already in use") })

	assert.ErrorContains(t, err, "address already in use")
	assert.False(t, purged)
	assert.Equal(t, Running, c.State())
}

func TestController_ServeRunsHooksWhenContextEnds(t *testing.T) {
	c := New(nil, time.Second)
	stop := make(chan struct{})
	var order []string
	c.OnShutdown("http", func(context.Context) error { order = append(order, "http"); close(stop); return nil })
	c.OnShutdown("purge", func(context.Context) error { order = append(order, "purge"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Serve(ctx, func() error { <-stop; return nil })
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.Equal(t, []string{"http", "purge"}, order)
	assert.Equal(t, ShuttingDown, c.State())
}
