// Package startup synchronizes the foreground constructor with the
// background HTTP listener. The background goroutine publishes the bound
// port and server handle exactly once; foreground waiters block on a
// one-shot signal instead of polling, so they can never observe a
// partially written state.
package startup

import (
	"errors"
	"net/http"
	"sync"
	"time"
)

// State is the coordinator lifecycle phase.
type State int

const (
	StateNotStarted State = iota
	StateStarting
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Coordinator carries the startup handoff for one server instance. All
// fields are guarded by mu; done is closed exactly once, after the fields
// for the terminal state are in place.
type Coordinator struct {
	mu    sync.Mutex
	state State
	port  int
	srv   *http.Server
	err   error
	done  chan struct{}
}

// NewCoordinator returns a coordinator in StateNotStarted.
func NewCoordinator() *Coordinator {
	return &Coordinator{done: make(chan struct{})}
}

// Starting marks that the background goroutine has begun executing but
// has not bound a port yet. Calling it after a terminal state is a no-op.
func (c *Coordinator) Starting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateNotStarted {
		c.state = StateStarting
	}
}

// Publish records the bound port and server handle and signals readiness.
// It is called by the background goroutine only, after a successful bind.
// A second call after any terminal state is rejected.
func (c *Coordinator) Publish(port int, srv *http.Server) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateReady || c.state == StateFailed {
		return errors.New("startup already " + c.state.String())
	}
	c.port = port
	c.srv = srv
	c.state = StateReady
	close(c.done)
	return nil
}

// Fail records a background startup failure so waiters observe it
// distinctly from readiness instead of hanging.
func (c *Coordinator) Fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateReady || c.state == StateFailed {
		return errors.New("startup already " + c.state.String())
	}
	c.err = err
	c.state = StateFailed
	close(c.done)
	return nil
}

// WaitUntilReady blocks until the coordinator reaches a terminal state or
// the timeout elapses. On readiness it returns the published port and
// server handle; a background failure is propagated wrapped, and a
// timeout is reported as such rather than hanging forever.
func (c *Coordinator) WaitUntilReady(timeout time.Duration) (int, *http.Server, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c.done:
	case <-timer.C:
		return 0, nil, ErrTimeout("timed out after " + timeout.String() + " waiting for server startup")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateFailed {
		return 0, nil, ErrBackgroundFailure(c.err)
	}
	return c.port, c.srv, nil
}

// Snapshot is a consistent, non-blocking view of the coordinator.
type Snapshot struct {
	State State
	Port  int
	Err   error
}

// Snapshot returns the current fields for diagnostics. It never observes
// a torn state: reads take the same lock the publisher writes under.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Port: c.port, Err: c.err}
}
