package apiclient

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Scope ties a set of requests to a consumer's lifetime. Callbacks run one
// at a time, and never after Close has returned.
type Scope struct {
	client Doer
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	// mu is held while a callback runs.
	mu     sync.Mutex
	closed atomic.Bool
}

// NewScope derives a scope from parent; ending parent ends the scope too.
func NewScope(parent context.Context, client Doer) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{client: client, ctx: ctx, cancel: cancel}
}

// Context returns the scope's context.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go performs req in the background and hands the envelope to fn unless the
// scope has been cancelled by then. fn may call Cancel but not Close.
func (s *Scope) Go(req Request, fn func(Response)) {
	s.group.Go(func() error {
		res := s.client.Do(s.ctx, req)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed.Load() {
			return nil
		}
		fn(res)
		return nil
	})
}

// Wait blocks until every request started with Go has finished.
func (s *Scope) Wait() {
	_ = s.group.Wait()
}

// Cancel stops in-flight requests and drops every callback that has not
// started yet. It does not wait, so it is safe to call from a callback.
func (s *Scope) Cancel() {
	s.closed.Store(true)
	s.cancel()
}

// Close cancels the scope and waits for a callback that is already running,
// so no callback runs once Close returns.
func (s *Scope) Close() {
	s.Cancel()

	// Wait for a running callback to finish.
	s.mu.Lock()
	defer s.mu.Unlock()
}
