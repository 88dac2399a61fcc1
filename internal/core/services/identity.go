package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// IdentityPipeline maps an email term to a linked account through the
// identity server. Only terms that pass the email gate reach the server.
// Gated terms are sampled: the most recent one is taken once per interval,
// so the lookup rate stays bounded however fast the user types.
//
// The pipeline listens to the identity service for server and consent
// changes and feeds the stored term back into the sampler when either fires.
type IdentityPipeline struct {
	identity   driven.IdentityService
	profiles   driven.ProfileFetcher
	terms      *TermStore
	exclusions func() domain.ExclusionSet

	cell *slotCell[*domain.ThreePidUser]

	ctx         context.Context
	stop        context.CancelFunc
	done        chan struct{}
	unsubscribe func()
	closeOnce   sync.Once
}

// NewIdentityPipeline creates and starts the pipeline and subscribes it to
// identity notifications. Close releases the subscription.
func NewIdentityPipeline(
	identity driven.IdentityService,
	profiles driven.ProfileFetcher,
	terms *TermStore,
	interval time.Duration,
	exclusions func() domain.ExclusionSet,
	onChange func(),
) *IdentityPipeline {
	ctx, stop := context.WithCancel(context.Background())
	p := &IdentityPipeline{
		identity:   identity,
		profiles:   profiles,
		terms:      terms,
		exclusions: exclusions,
		cell:       newSlotCell[*domain.ThreePidUser]("identity", onChange),
		ctx:        ctx,
		stop:       stop,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		sample(ctx.Done(), interval, p.tick)
	}()

	p.unsubscribe = identity.Subscribe(p.handleEvent)
	return p
}

// Submit hands a new term to the gate. Terms that are not email addresses
// abandon any lookup and reset the slot to idle.
func (p *IdentityPipeline) Submit(term string, version uint64) {
	p.cell.mu.Lock()
	if !p.cell.acceptLocked(version) {
		p.cell.mu.Unlock()
		return
	}
	p.cell.abandonLocked()

	if IsEmail(term) {
		p.cell.pending = &termInput{term: term, version: version}
		p.cell.mu.Unlock()
		return
	}

	p.cell.pending = nil
	changed := !p.cell.slot.IsIdle()
	p.cell.slot = domain.IdleSlot[*domain.ThreePidUser]()
	p.cell.mu.Unlock()

	if changed {
		p.cell.notify()
	}
}

// Reset abandons pending and in-flight work and sets the slot to idle.
func (p *IdentityPipeline) Reset(version uint64) {
	p.cell.mu.Lock()
	if !p.cell.acceptLocked(version) {
		p.cell.mu.Unlock()
		return
	}
	p.cell.abandonLocked()
	p.cell.pending = nil
	p.cell.slot = domain.IdleSlot[*domain.ThreePidUser]()
	p.cell.mu.Unlock()

	p.cell.notify()
}

// Busy reports whether the slot still lags behind the latest term.
func (p *IdentityPipeline) Busy() bool {
	return p.cell.busy()
}

// Slot returns the pipeline's current result slot.
func (p *IdentityPipeline) Slot() domain.Slot[*domain.ThreePidUser] {
	return p.cell.get()
}

// Close stops the sampler and releases the identity subscription.
// It is safe to call more than once.
func (p *IdentityPipeline) Close() {
	p.closeOnce.Do(func() {
		if p.unsubscribe != nil {
			p.unsubscribe()
		}
		p.stop()
		<-p.done
		p.cell.shutdown()
	})
}

// handleEvent re-emits the stored term so the next tick repeats the lookup
// against the new server or consent state.
func (p *IdentityPipeline) handleEvent(event domain.IdentityEvent) {
	if p.ctx.Err() != nil {
		return
	}
	p.cell.log.Debug("identity %s (server %q, consent %t)", event.Kind, event.ServerURL, event.Consent)

	term, version := p.terms.Current()
	p.Submit(term, version)

	// Consent is part of the view even when the term is not an email.
	p.cell.notify()
}

func (p *IdentityPipeline) tick() {
	p.cell.mu.Lock()
	in := p.cell.takeLocked()
	if in == nil {
		p.cell.mu.Unlock()
		return
	}
	ctx := p.cell.beginLocked(p.ctx)
	p.cell.mu.Unlock()

	p.cell.notify()
	go p.lookUp(ctx, in)
}

func (p *IdentityPipeline) lookUp(ctx context.Context, in *termInput) {
	email := strings.TrimSpace(in.term)
	result := &domain.ThreePidUser{Email: email}

	userID, found, err := p.identity.LookUp(ctx, email)
	switch {
	case ctx.Err() != nil:
		return
	case err != nil:
		p.cell.log.Debug("lookup for %s failed, treating as no match: %v", email, err)
		found = false
	case found && p.exclusions().Contains(userID):
		p.cell.log.Debug("lookup for %s matched excluded user %s", email, userID)
		found = false
	}

	if found {
		profile, err := p.profiles.GetProfile(ctx, userID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.cell.log.Debug("profile for %s unavailable, reporting id only: %v", userID, err)
			profile = domain.UserProfile{}
		}
		profile.ID = userID
		result.User = &profile
	}

	p.cell.apply(ctx, in.version, domain.ReadySlot(result))
}
