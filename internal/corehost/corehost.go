// Package corehost bounds how many interpreter sessions a host process runs
// concurrently, the domain-stack role golang.org/x/sync/semaphore fills.
// Session ids are assigned by interp.New, not here.
package corehost

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/ren-core/ren/interp"
)

// Pool bounds the number of live *interp.Interp sessions a process will
// build at once, so a host embedding many short-lived evaluations (a
// request-per-script server, say) doesn't let them pile up unbounded.
type Pool struct {
	sem *semaphore.Weighted
	opt interp.EngineOptions
}

// NewPool builds a pool allowing at most size concurrent sessions, each
// built with opt.
func NewPool(size int64, opt interp.EngineOptions) *Pool {
	return &Pool{sem: semaphore.NewWeighted(size), opt: opt}
}

// Lease blocks until a slot is free (or ctx is done), then returns a fresh
// session and a release func the caller must call exactly once.
func (p *Pool) Lease(ctx context.Context) (*interp.Interp, func(), error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	eng := interp.New(p.opt)
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		eng.Shutdown()
		p.sem.Release(1)
	}
	return eng, release, nil
}
