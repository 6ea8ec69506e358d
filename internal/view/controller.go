package view

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Controller owns the slots of one page visit.
type Controller struct {
	page string
	log  *zap.Logger

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs error
}

func NewController(page string, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{page: page, log: log.With(zap.String("page", page))}
}

// Fetch starts fn for slot on its own goroutine and returns immediately.
// A slot that already left idle is not fetched again.  The fetch is
// detached from ctx cancellation: a caller that stops waiting does not
// stop the fetch, whose result then lands in a controller nobody reads.
// There is no retry and no timeout beyond what fn imposes itself.
func Fetch[T any](ctx context.Context, c *Controller, slot *Slot[T], fn func(context.Context) (T, error)) {
	if !slot.begin() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("fetch panicked", zap.String("slot", slot.Name()), zap.Any("panic", r))
				c.record(slot.Name(), fmt.Errorf("panic: %v", r))
				slot.fail(Message(r))
			}
		}()

		v, err := fn(ctx)
		if err != nil {
			c.record(slot.Name(), err)
			slot.fail(Message(err))
			return
		}
		slot.succeed(v)
	}()
}

// Wait blocks until every started fetch resolved or ctx is done, and
// reports whether everything resolved.
func (c *Controller) Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

// Errors returns the failures recorded so far, one per failed slot.
func (c *Controller) Errors() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// LogErrors logs the aggregate of failed slots once, if any.
func (c *Controller) LogErrors() {
	if err := c.Errors(); err != nil {
		c.log.Warn("page rendered with failed slots", zap.Error(err), zap.Int("failed", len(multierr.Errors(err))))
	}
}

func (c *Controller) record(slot string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = multierr.Append(c.errs, fmt.Errorf("%s: %w", slot, err))
}
