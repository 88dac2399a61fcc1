package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// KnownUsersPipeline queries the local store for users the account already
// knows. Every new term abandons the running live query and restarts the
// debounce timer; the store is only queried after a quiet period.
type KnownUsersPipeline struct {
	store      driven.KnownUserStore
	exclusions func() domain.ExclusionSet
	delay      time.Duration

	cell *slotCell[[]domain.UserProfile]
	kick chan struct{}

	ctx  context.Context
	stop context.CancelFunc
	done chan struct{}
}

// NewKnownUsersPipeline creates and starts the pipeline. onChange is called
// after every slot update.
func NewKnownUsersPipeline(
	store driven.KnownUserStore,
	delay time.Duration,
	exclusions func() domain.ExclusionSet,
	onChange func(),
) *KnownUsersPipeline {
	ctx, stop := context.WithCancel(context.Background())
	p := &KnownUsersPipeline{
		store:      store,
		exclusions: exclusions,
		delay:      delay,
		cell:       newSlotCell[[]domain.UserProfile]("known", onChange),
		kick:       make(chan struct{}, 1),
		ctx:        ctx,
		stop:       stop,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		debounce(ctx.Done(), delay, p.kick, p.cell.armed, p.fire)
	}()

	return p
}

// Submit hands a new term to the pipeline.
func (p *KnownUsersPipeline) Submit(term string, version uint64) {
	p.cell.mu.Lock()
	if !p.cell.acceptLocked(version) {
		p.cell.mu.Unlock()
		return
	}
	p.cell.abandonLocked()
	p.cell.pending = &termInput{term: term, version: version}
	p.cell.mu.Unlock()

	signal(p.kick)
}

// Reset abandons pending and in-flight work and sets the slot to idle.
func (p *KnownUsersPipeline) Reset(version uint64) {
	p.cell.mu.Lock()
	if !p.cell.acceptLocked(version) {
		p.cell.mu.Unlock()
		return
	}
	p.cell.abandonLocked()
	p.cell.pending = nil
	p.cell.slot = domain.IdleSlot[[]domain.UserProfile]()
	p.cell.mu.Unlock()

	p.cell.notify()
	signal(p.kick)
}

// Busy reports whether the slot still lags behind the latest term.
func (p *KnownUsersPipeline) Busy() bool {
	return p.cell.busy()
}

// Slot returns the pipeline's current result slot.
func (p *KnownUsersPipeline) Slot() domain.Slot[[]domain.UserProfile] {
	return p.cell.get()
}

// Close stops the pipeline and abandons the live query.
func (p *KnownUsersPipeline) Close() {
	p.stop()
	<-p.done
	p.cell.shutdown()
}

func (p *KnownUsersPipeline) fire() {
	p.cell.mu.Lock()
	in := p.cell.takeLocked()
	if in == nil {
		p.cell.mu.Unlock()
		return
	}
	ctx := p.cell.beginLocked(p.ctx)
	p.cell.mu.Unlock()

	p.cell.log.Debug("querying local store for %q (version %d)", in.term, in.version)
	p.cell.notify()
	go p.watch(ctx, in)
}

// watch follows the live query until it is abandoned. Only the latest
// value of the active subscription is kept. A query that ends before its
// first value settles the slot as empty.
func (p *KnownUsersPipeline) watch(ctx context.Context, in *termInput) {
	updates, err := p.store.Watch(ctx, strings.TrimSpace(in.term), p.exclusions())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.cell.log.Warn("local query failed: %v", err)
		p.cell.apply(ctx, in.version, domain.FailedSlot[[]domain.UserProfile](fmt.Errorf("known users: %w", err)))
		return
	}

	applied := false
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				if !applied {
					p.cell.log.Debug("live query for version %d closed without results", in.version)
					p.cell.apply(ctx, in.version, domain.ReadySlot([]domain.UserProfile{}))
				}
				return
			}
			if update.Err != nil {
				p.cell.log.Warn("live query failed: %v", update.Err)
				p.cell.apply(ctx, in.version, domain.FailedSlot[[]domain.UserProfile](fmt.Errorf("known users: %w", update.Err)))
				return
			}
			p.cell.log.Debug("%d known users for version %d", len(update.Users), in.version)
			if !p.cell.apply(ctx, in.version, domain.ReadySlot(update.Users)) {
				return
			}
			applied = true
		}
	}
}
