package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// DirectoryPipeline searches the remote user directory. It shares the
// known-users timing policy, and never leaves two requests in flight:
// the previous request's context is cancelled before the next one starts.
//
// When the term is a well-formed user id, the exact profile is fetched
// alongside the directory search and prepended if the directory missed it.
type DirectoryPipeline struct {
	directory  driven.DirectoryClient
	profiles   driven.ProfileFetcher
	exclusions func() domain.ExclusionSet
	limit      int

	cell *slotCell[[]domain.UserProfile]
	kick chan struct{}

	ctx  context.Context
	stop context.CancelFunc
	done chan struct{}
}

// NewDirectoryPipeline creates and starts the pipeline. onChange is called
// after every slot update.
func NewDirectoryPipeline(
	directory driven.DirectoryClient,
	profiles driven.ProfileFetcher,
	delay time.Duration,
	limit int,
	exclusions func() domain.ExclusionSet,
	onChange func(),
) *DirectoryPipeline {
	ctx, stop := context.WithCancel(context.Background())
	p := &DirectoryPipeline{
		directory:  directory,
		profiles:   profiles,
		exclusions: exclusions,
		limit:      limit,
		cell:       newSlotCell[[]domain.UserProfile]("directory", onChange),
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

// Submit hands a new term to the pipeline. A blank term yields an empty
// result immediately, without calling the directory.
func (p *DirectoryPipeline) Submit(term string, version uint64) {
	p.cell.mu.Lock()
	if !p.cell.acceptLocked(version) {
		p.cell.mu.Unlock()
		return
	}
	p.cell.abandonLocked()

	blank := strings.TrimSpace(term) == ""
	if blank {
		p.cell.pending = nil
		p.cell.slot = domain.ReadySlot([]domain.UserProfile{})
	} else {
		p.cell.pending = &termInput{term: term, version: version}
	}
	p.cell.mu.Unlock()

	if blank {
		p.cell.notify()
	}
	signal(p.kick)
}

// Reset abandons pending and in-flight work and sets the slot to idle.
func (p *DirectoryPipeline) Reset(version uint64) {
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
func (p *DirectoryPipeline) Busy() bool {
	return p.cell.busy()
}

// Slot returns the pipeline's current result slot.
func (p *DirectoryPipeline) Slot() domain.Slot[[]domain.UserProfile] {
	return p.cell.get()
}

// Close stops the pipeline and abandons the in-flight request.
func (p *DirectoryPipeline) Close() {
	p.stop()
	<-p.done
	p.cell.shutdown()
}

func (p *DirectoryPipeline) fire() {
	p.cell.mu.Lock()
	in := p.cell.takeLocked()
	if in == nil {
		p.cell.mu.Unlock()
		return
	}
	ctx := p.cell.beginLocked(p.ctx)
	p.cell.mu.Unlock()

	p.cell.notify()
	go p.search(ctx, in)
}

func (p *DirectoryPipeline) search(ctx context.Context, in *termInput) {
	term := strings.TrimSpace(in.term)
	exclude := p.exclusions()
	p.cell.log.Debug("directory search for %q (version %d, limit %d)", term, in.version, p.limit)

	var (
		users      []domain.UserProfile
		searchErr  error
		exact      *domain.UserProfile
		wg         sync.WaitGroup
		wantsExact = domain.IsUserID(term) && !exclude.Contains(term)
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		users, searchErr = p.directory.Search(ctx, term, p.limit, exclude)
	}()

	if wantsExact {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile, err := p.profiles.GetProfile(ctx, term)
			if err != nil {
				p.cell.log.Debug("exact profile %s unavailable: %v", term, err)
				return
			}
			if profile.ID == "" {
				profile.ID = term
			}
			exact = &profile
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return
	}
	if searchErr != nil {
		p.cell.log.Warn("directory search failed: %v", searchErr)
		p.cell.apply(ctx, in.version, domain.FailedSlot[[]domain.UserProfile](fmt.Errorf("directory search: %w", searchErr)))
		return
	}

	p.cell.apply(ctx, in.version, domain.ReadySlot(mergeDirectoryResults(users, exact, exclude)))
}

// mergeDirectoryResults drops excluded and duplicate users and prepends
// the exact-id match when the directory did not return it.
func mergeDirectoryResults(users []domain.UserProfile, exact *domain.UserProfile, exclude domain.ExclusionSet) []domain.UserProfile {
	result := lo.UniqBy(lo.Filter(users, func(u domain.UserProfile, _ int) bool {
		return u.ID != "" && !exclude.Contains(u.ID)
	}), func(u domain.UserProfile) string {
		return u.ID
	})

	if exact == nil {
		return result
	}
	found := lo.ContainsBy(result, func(u domain.UserProfile) bool {
		return u.ID == exact.ID
	})
	if found {
		return result
	}
	return append([]domain.UserProfile{*exact}, result...)
}
