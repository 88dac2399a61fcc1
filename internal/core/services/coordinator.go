package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
	"github.com/custodia-labs/usersearch/internal/logger"
)

// Ensure Coordinator implements the interface.
var _ driving.UserSearch = (*Coordinator)(nil)

// Collaborators are the backends a Coordinator searches. Identity is
// optional; without it the email slot stays idle.
type Collaborators struct {
	Known     driven.KnownUserStore
	Directory driven.DirectoryClient
	Profiles  driven.ProfileFetcher
	Identity  driven.IdentityService
}

// Coordinator fans the search term out to the known-users, directory and
// identity pipelines and merges their slots with the selection into one
// view. None of its methods wait for collaborator work.
type Coordinator struct {
	terms      *TermStore
	exclusions atomic.Pointer[domain.ExclusionSet]
	identity   driven.IdentityService

	known     *KnownUsersPipeline
	directory *DirectoryPipeline
	email     *IdentityPipeline

	mu          sync.Mutex
	selection   *domain.SelectionSet
	profiles    map[string]domain.UserProfile
	subscribers map[uint64]func(domain.ViewState)
	nextSub     uint64

	closed    atomic.Bool
	dirty     chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewCoordinator creates a coordinator and starts its pipelines. excluded
// lists user ids omitted from every result source.
func NewCoordinator(deps Collaborators, settings domain.SearchSettings, excluded []string) (*Coordinator, error) {
	if deps.Known == nil || deps.Directory == nil || deps.Profiles == nil {
		return nil, fmt.Errorf("%w: known users store, directory and profile fetcher are required", domain.ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		terms:       NewTermStore(),
		identity:    deps.Identity,
		selection:   domain.NewSelectionSet(settings.SingleSelection),
		profiles:    make(map[string]domain.UserProfile),
		subscribers: make(map[uint64]func(domain.ViewState)),
		dirty:       make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	set := domain.NewExclusionSet(excluded...)
	c.exclusions.Store(&set)

	c.known = NewKnownUsersPipeline(deps.Known, settings.Debounce, c.excluded, c.markDirty)
	c.directory = NewDirectoryPipeline(deps.Directory, deps.Profiles, settings.Debounce,
		settings.DirectoryLimit, c.excluded, c.markDirty)
	if deps.Identity != nil {
		c.email = NewIdentityPipeline(deps.Identity, deps.Profiles, c.terms,
			settings.SampleInterval, c.excluded, c.markDirty)
	}

	go c.notifyLoop()

	logger.Debug("coordinator started (debounce %s, sample %s, limit %d, single %t, identity %t)",
		settings.Debounce, settings.SampleInterval, settings.DirectoryLimit,
		settings.SingleSelection, deps.Identity != nil)
	return c, nil
}

// SetSearchTerm stores term and publishes it to every pipeline.
// A blank term clears the search.
func (c *Coordinator) SetSearchTerm(term string) {
	if c.closed.Load() {
		return
	}
	version := c.terms.Store(term)
	if strings.TrimSpace(term) == "" {
		c.reset(version)
		return
	}

	c.known.Submit(term, version)
	c.directory.Submit(term, version)
	if c.email != nil {
		c.email.Submit(term, version)
	}
	c.markDirty()
}

// ClearSearch stores the empty term and resets every slot to idle.
func (c *Coordinator) ClearSearch() {
	if c.closed.Load() {
		return
	}
	c.reset(c.terms.Store(""))
}

func (c *Coordinator) reset(version uint64) {
	c.known.Reset(version)
	c.directory.Reset(version)
	if c.email != nil {
		c.email.Reset(version)
	}
	c.markDirty()
}

// ToggleSelection selects id if absent and deselects it if present.
func (c *Coordinator) ToggleSelection(id string) {
	if id == "" {
		return
	}
	view := c.slots()

	c.mu.Lock()
	if c.selection.Toggle(id) {
		c.profiles[id] = profileFor(id, view)
	}
	c.pruneProfilesLocked()
	c.mu.Unlock()

	c.markDirty()
}

// RemoveSelection deselects id. Removing an absent id does nothing.
func (c *Coordinator) RemoveSelection(id string) {
	c.mu.Lock()
	removed := c.selection.Remove(id)
	c.pruneProfilesLocked()
	c.mu.Unlock()

	if removed {
		c.markDirty()
	}
}

// ClearSelection deselects everything.
func (c *Coordinator) ClearSelection() {
	c.mu.Lock()
	c.selection.Clear()
	clear(c.profiles)
	c.mu.Unlock()

	c.markDirty()
}

// SetExclusions replaces the exclusion set. Running pipelines pick up the
// new set on their next call; the view applies it immediately.
func (c *Coordinator) SetExclusions(ids []string) {
	set := domain.NewExclusionSet(ids...)
	c.exclusions.Store(&set)
	c.markDirty()
}

// SetIdentityConsent records the identity server consent. The identity
// service announces the change, which repeats the lookup for the stored term.
func (c *Coordinator) SetIdentityConsent(ctx context.Context, granted bool) error {
	if c.identity == nil {
		return domain.ErrIdentityUnavailable
	}
	if err := c.identity.SetConsent(ctx, granted); err != nil {
		return fmt.Errorf("set identity consent: %w", err)
	}
	c.markDirty()
	return nil
}

// State returns the aggregate view. Excluded users are filtered from every
// slot.
func (c *Coordinator) State() domain.ViewState {
	view := c.slots()
	exclude := c.excluded()

	view.Known = filterUsers(view.Known, exclude)
	view.Directory = filterUsers(view.Directory, exclude)
	if view.Email.IsReady() && view.Email.Value != nil && view.Email.Value.User != nil &&
		exclude.Contains(view.Email.Value.User.ID) {
		view.Email = domain.ReadySlot(&domain.ThreePidUser{Email: view.Email.Value.Email})
	}

	c.mu.Lock()
	view.Selections = c.selection.IDs()
	view.SelectedProfiles = lo.Map(view.Selections, func(id string, _ int) domain.UserProfile {
		if profile, ok := c.profiles[id]; ok {
			return profile
		}
		return domain.UserProfile{ID: id}
	})
	c.mu.Unlock()

	if c.identity != nil {
		view.IdentityConsent = c.identity.Consent()
	}
	return view
}

// Subscribe registers fn to receive the view after every change. Calls are
// serialized on one goroutine and may coalesce bursts of changes.
func (c *Coordinator) Subscribe(fn func(domain.ViewState)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// Close stops every pipeline and releases the identity subscription.
// Later calls do nothing.
func (c *Coordinator) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.stop)
		<-c.done

		c.known.Close()
		c.directory.Close()
		if c.email != nil {
			c.email.Close()
		}
		logger.Debug("coordinator closed")
	})
	return nil
}

func (c *Coordinator) excluded() domain.ExclusionSet {
	return *c.exclusions.Load()
}

// slots returns the term and the raw pipeline slots.
func (c *Coordinator) slots() domain.ViewState {
	term, _ := c.terms.Current()
	pending := c.known.Busy() || c.directory.Busy() || (c.email != nil && c.email.Busy())
	view := domain.ViewState{
		Term:      term,
		Pending:   pending,
		Known:     c.known.Slot(),
		Directory: c.directory.Slot(),
		Email:     domain.IdleSlot[*domain.ThreePidUser](),
	}
	if c.email != nil {
		view.Email = c.email.Slot()
	}
	return view
}

func (c *Coordinator) pruneProfilesLocked() {
	for id := range c.profiles {
		if !c.selection.Contains(id) {
			delete(c.profiles, id)
		}
	}
}

func (c *Coordinator) markDirty() {
	signal(c.dirty)
}

func (c *Coordinator) notifyLoop() {
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		case <-c.dirty:
			c.mu.Lock()
			subscribers := lo.Values(c.subscribers)
			c.mu.Unlock()
			if len(subscribers) == 0 {
				continue
			}

			view := c.State()
			for _, fn := range subscribers {
				fn(view)
			}
		}
	}
}

// profileFor returns the richest profile for id among the current slots.
func profileFor(id string, view domain.ViewState) domain.UserProfile {
	match := func(u domain.UserProfile) bool { return u.ID == id }

	if view.Known.IsReady() {
		if profile, ok := lo.Find(view.Known.Value, match); ok {
			return profile
		}
	}
	if view.Directory.IsReady() {
		if profile, ok := lo.Find(view.Directory.Value, match); ok {
			return profile
		}
	}
	if view.Email.IsReady() && view.Email.Value != nil && view.Email.Value.User != nil && match(*view.Email.Value.User) {
		return *view.Email.Value.User
	}
	return domain.UserProfile{ID: id}
}

func filterUsers(slot domain.Slot[[]domain.UserProfile], exclude domain.ExclusionSet) domain.Slot[[]domain.UserProfile] {
	if !slot.IsReady() || exclude.Len() == 0 {
		return slot
	}
	return domain.ReadySlot(lo.Filter(slot.Value, func(u domain.UserProfile, _ int) bool {
		return !exclude.Contains(u.ID)
	}))
}
