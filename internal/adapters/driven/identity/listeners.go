package identity

import (
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

// listeners is a registry of identity listeners keyed by subscription id.
type listeners struct {
	mu    sync.Mutex
	items map[string]driven.IdentityListener
}

func (l *listeners) add(fn driven.IdentityListener) func() {
	id := uuid.NewString()

	l.mu.Lock()
	if l.items == nil {
		l.items = make(map[string]driven.IdentityListener)
	}
	l.items[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.items, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// emit calls every listener outside the lock.
func (l *listeners) emit(event domain.IdentityEvent) {
	l.mu.Lock()
	fns := make([]driven.IdentityListener, 0, len(l.items))
	for _, fn := range l.items {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
