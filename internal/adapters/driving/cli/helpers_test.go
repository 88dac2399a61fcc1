package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/usersearch/internal/adapters/driven/identity"
	"github.com/custodia-labs/usersearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
	"github.com/custodia-labs/usersearch/internal/core/services"
)

var (
	alice = domain.UserProfile{ID: "@alice:example.com", DisplayName: "Alice"}
	bob   = domain.UserProfile{ID: "@bob:example.com", DisplayName: "Bob"}
	carol = domain.UserProfile{ID: "@carol:example.com", DisplayName: "Carol"}
)

// fakeHomeserver serves directory searches and profiles from a fixed list.
type fakeHomeserver struct {
	users []domain.UserProfile
}

func (f *fakeHomeserver) Search(
	_ context.Context, term string, limit int, exclude domain.ExclusionSet,
) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	for _, u := range f.users {
		if exclude.Contains(u.ID) {
			continue
		}
		if strings.Contains(strings.ToLower(u.ID+" "+u.DisplayName), strings.ToLower(term)) {
			out = append(out, u)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeHomeserver) GetProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return domain.UserProfile{}, domain.ErrNotFound
}

type testEnv struct {
	config   *memory.ConfigStore
	known    *memory.KnownUserStore
	identity *identity.Memory
}

// setupTestServices installs services backed by in-memory adapters and
// returns a cleanup function restoring the previous ones.
func setupTestServices(t *testing.T) (*testEnv, func()) {
	t.Helper()

	config := memory.NewConfigStore()
	require.NoError(t, config.Set("search.debounce", "10ms"))
	require.NoError(t, config.Set("search.sample_interval", "10ms"))

	env := &testEnv{
		config:   config,
		known:    memory.NewKnownUserStore(alice, bob),
		identity: identity.NewMemory("https://id.example.com", true),
	}
	env.identity.Link("carol@example.com", carol.ID)
	homeserver := &fakeHomeserver{users: []domain.UserProfile{alice, bob, carol}}

	oldSettings, oldKnown, oldSearch := settingsService, knownUserService, newUserSearch
	SetServices(Services{
		Settings:   services.NewSettingsService(config),
		KnownUsers: services.NewKnownUserService(env.known, homeserver),
		NewUserSearch: func() (driving.UserSearch, error) {
			c, err := services.NewCoordinator(services.Collaborators{
				Known:     env.known,
				Directory: homeserver,
				Profiles:  homeserver,
				Identity:  env.identity,
			}, services.LoadSearchSettings(config), nil)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	})

	return env, func() {
		settingsService, knownUserService, newUserSearch = oldSettings, oldKnown, oldSearch
	}
}

// execute runs the root command with args and returns its output.
func execute(args []string, stdin io.Reader) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
