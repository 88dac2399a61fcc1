package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/logger"
)

// termInput is a term handed to a pipeline and waiting for its timing policy.
type termInput struct {
	term    string
	version uint64
}

// slotCell holds one pipeline's result slot together with the version of
// the latest term the pipeline accepted. Results carrying any other
// version are dropped, which is how superseded calls are discarded.
type slotCell[T any] struct {
	mu       sync.Mutex
	slot     domain.Slot[T]
	latest   uint64
	pending  *termInput
	cancel   context.CancelFunc
	onChange func()
	log      logger.Scoped
}

func newSlotCell[T any](name string, onChange func()) *slotCell[T] {
	return &slotCell[T]{
		slot:     domain.IdleSlot[T](),
		onChange: onChange,
		log:      logger.Component(name),
	}
}

// get returns the current slot.
func (c *slotCell[T]) get() domain.Slot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot
}

// acceptLocked records version as the latest term. Versions older than
// the latest are refused.
func (c *slotCell[T]) acceptLocked(version uint64) bool {
	if version < c.latest {
		c.log.Debug("refusing term version %d, already at %d", version, c.latest)
		return false
	}
	c.latest = version
	return true
}

// beginLocked abandons the in-flight call, marks the slot loading and
// returns a context for the next call. The caller reports the change with
// notify once the lock is released.
func (c *slotCell[T]) beginLocked(parent context.Context) context.Context {
	c.abandonLocked()
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.slot = domain.LoadingSlot[T]()
	return ctx
}

// abandonLocked cancels the in-flight call, if any. The collaborator may
// still complete; its result is then dropped by apply.
func (c *slotCell[T]) abandonLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// takeLocked returns the pending term if it is still the latest one.
func (c *slotCell[T]) takeLocked() *termInput {
	in := c.pending
	c.pending = nil
	if in == nil || in.version != c.latest {
		return nil
	}
	return in
}

// busy reports whether the slot does not yet reflect the latest term:
// a term is waiting for the timer or a call is loading.
func (c *slotCell[T]) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil || c.slot.IsLoading()
}

// armed reports whether a term is waiting for the timer.
func (c *slotCell[T]) armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// apply stores slot if version is still the latest accepted term and
// ctx, the context of the call that produced it, has not been abandoned.
// onChange runs outside the lock.
func (c *slotCell[T]) apply(ctx context.Context, version uint64, slot domain.Slot[T]) bool {
	c.mu.Lock()
	if version != c.latest || ctx.Err() != nil {
		latest := c.latest
		c.mu.Unlock()
		c.log.Debug("discarding stale %s result for version %d (latest %d)", slot.State, version, latest)
		return false
	}
	c.slot = slot
	c.mu.Unlock()

	c.notify()
	return true
}

// notify reports a slot change made under the lock.
func (c *slotCell[T]) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// shutdown abandons in-flight work and pending input.
func (c *slotCell[T]) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
	c.pending = nil
}

// signal performs a non-blocking send on a 1-buffered channel, coalescing
// bursts into a single wake-up.
func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// debounce runs until done is closed. Every kick stops the timer and, if
// armed reports a waiting term, restarts it; fire runs once the timer
// expires without a newer kick.
func debounce(done <-chan struct{}, delay time.Duration, kick <-chan struct{}, armed func() bool, fire func()) {
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-done:
			return
		case <-kick:
			timer.Stop()
			if armed() {
				timer.Reset(delay)
			}
		case <-timer.C:
			if kicked, rearm := superseded(kick, armed); kicked {
				if rearm {
					timer.Reset(delay)
				}
				continue
			}
			fire()
		}
	}
}

// superseded drains a kick that arrived together with the timer. A drained
// kick restarts the quiet period instead of firing; rearm reports whether a
// term is still waiting for it.
func superseded(kick <-chan struct{}, armed func() bool) (kicked, rearm bool) {
	select {
	case <-kick:
		return true, armed()
	default:
		return false, false
	}
}

// sample runs until done is closed, calling tick once per interval.
func sample(done <-chan struct{}, interval time.Duration, tick func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			tick()
		}
	}
}
