package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driven"
)

var (
	alice = domain.UserProfile{ID: "@alice:example.com", DisplayName: "Alice", AvatarURL: "mxc://example.com/alice"}
	bob   = domain.UserProfile{ID: "@bob:example.com", DisplayName: "Bob"}
	carol = domain.UserProfile{ID: "@carol:example.org"}
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func receive(t *testing.T, updates <-chan driven.KnownUsersUpdate) driven.KnownUsersUpdate {
	t.Helper()
	select {
	case u, ok := <-updates:
		require.True(t, ok, "updates closed")
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
		return driven.KnownUsersUpdate{}
	}
}

func userIDs(users []domain.UserProfile) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "users.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsRunOnce(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(context.Background(), alice))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	users, err := reopened.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.UserProfile{alice}, users)
}

func TestStore_UpsertAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, bob, alice, carol))

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{carol.ID, alice.ID, bob.ID}, userIDs(users))

	renamed := bob
	renamed.DisplayName = "Robert"
	require.NoError(t, store.Upsert(ctx, renamed))

	users, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Contains(t, users, renamed)
}

func TestStore_Upsert_RequiresID(t *testing.T) {
	store := setupTestStore(t)

	err := store.Upsert(context.Background(), domain.UserProfile{DisplayName: "Nobody"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Remove(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, alice, bob))

	require.NoError(t, store.Remove(ctx, alice.ID))
	require.NoError(t, store.Remove(ctx, "@missing:example.com"))

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, userIDs(users))
}

func TestStore_Watch_MatchesTerm(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Upsert(ctx, alice, bob, carol))

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{carol.ID, alice.ID, bob.ID}},
		{"ALI", []string{alice.ID}},
		{"example.org", []string{carol.ID}},
		{"bo", []string{bob.ID}},
		{"%", []string{}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			updates, err := store.Watch(ctx, tt.term, domain.ExclusionSet{})
			require.NoError(t, err)

			u := receive(t, updates)
			require.NoError(t, u.Err)
			assert.Equal(t, tt.want, userIDs(u.Users))
		})
	}
}

func TestStore_Watch_Exclusions(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Upsert(ctx, alice, bob, carol))

	updates, err := store.Watch(ctx, "", domain.NewExclusionSet(alice.ID, carol.ID))
	require.NoError(t, err)

	assert.Equal(t, []string{bob.ID}, userIDs(receive(t, updates).Users))
}

func TestStore_Watch_LiveUpdates(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Upsert(ctx, alice))

	updates, err := store.Watch(ctx, "example", domain.ExclusionSet{})
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, userIDs(receive(t, updates).Users))

	require.NoError(t, store.Upsert(ctx, bob))
	assert.Equal(t, []string{alice.ID, bob.ID}, userIDs(receive(t, updates).Users))

	require.NoError(t, store.Remove(ctx, alice.ID))
	assert.Equal(t, []string{bob.ID}, userIDs(receive(t, updates).Users))
}

func TestStore_Watch_ClosesOnCancel(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	updates, err := store.Watch(ctx, "", domain.ExclusionSet{})
	require.NoError(t, err)
	receive(t, updates)

	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.watchers)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}
