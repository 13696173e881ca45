// Package workpool runs background computations on a bounded set of
// goroutines and hands results back through pollable task handles.
package workpool

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Pool bounds how many submitted functions run at once. Submitting never
// blocks; excess work waits for a free slot on its own goroutine.
type Pool struct {
	sem      chan struct{}
	wg       sync.WaitGroup
	inFlight atomic.Int64
	log      *zap.Logger
}

// New creates a pool running at most workers functions concurrently.
// workers <= 0 selects runtime.NumCPU().
func New(workers int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		sem: make(chan struct{}, workers),
		log: log,
	}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int { return cap(p.sem) }

// InFlight returns the number of submitted functions that have not finished.
func (p *Pool) InFlight() int { return int(p.inFlight.Load()) }

// Wait blocks until every submitted function has finished.
func (p *Pool) Wait() { p.wg.Wait() }

// Task is the handle of one submitted function. It is owned by the goroutine
// that submitted it and must not be polled concurrently.
type Task[T any] struct {
	ch       chan result[T]
	res      result[T]
	finished bool
}

type result[T any] struct {
	val T
	err error
}

// Go submits fn to the pool and returns its handle. A panic in fn is recovered
// and reported as the task's error.
func Go[T any](p *Pool, fn func() (T, error)) *Task[T] {
	t := &Task[T]{ch: make(chan result[T], 1)}
	p.wg.Add(1)
	p.inFlight.Add(1)

	go func() {
		defer p.wg.Done()
		defer p.inFlight.Add(-1)

		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		t.ch <- runTask(p.log, fn)
	}()
	return t
}

func runTask[T any](log *zap.Logger, fn func() (T, error)) (res result[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			res = result[T]{err: fmt.Errorf("workpool: task panicked: %v", r)}
		}
	}()
	val, err := fn()
	return result[T]{val: val, err: err}
}

// Poll reports whether the task has finished without blocking. Once it
// returns done, later calls return the same result.
func (t *Task[T]) Poll() (val T, done bool, err error) {
	if !t.finished {
		select {
		case r := <-t.ch:
			t.res = r
			t.finished = true
		default:
			return val, false, nil
		}
	}
	return t.res.val, true, t.res.err
}

// Await blocks until the task finishes.
func (t *Task[T]) Await() (T, error) {
	if !t.finished {
		t.res = <-t.ch
		t.finished = true
	}
	return t.res.val, t.res.err
}
