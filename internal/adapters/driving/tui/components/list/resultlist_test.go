package list

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

var (
	alice = domain.UserProfile{ID: "@alice:example.com", DisplayName: "Alice"}
	bob   = domain.UserProfile{ID: "@bob:example.com", DisplayName: "Bob"}
	carol = domain.UserProfile{ID: "@carol:example.com"}
)

func testView() domain.ViewState {
	return domain.ViewState{
		Term:      "example",
		Known:     domain.ReadySlot([]domain.UserProfile{alice}),
		Directory: domain.ReadySlot([]domain.UserProfile{bob, carol}),
		Email:     domain.IdleSlot[*domain.ThreePidUser](),
	}
}

func TestNewResultList(t *testing.T) {
	r := NewResultList(nil)

	require.NotNil(t, r)
	assert.True(t, r.IsEmpty())
	assert.NotNil(t, r.styles)
	_, ok := r.Current()
	assert.False(t, ok)
}

func TestResultList_SetView(t *testing.T) {
	r := NewResultList(nil)

	r.SetView(testView())

	require.Equal(t, 3, r.Count())
	assert.Equal(t, Entry{Section: SectionKnown, User: alice}, r.Entries()[0])
	assert.Equal(t, Entry{Section: SectionDirectory, User: bob}, r.Entries()[1])
	assert.Equal(t, SectionDirectory, r.Entries()[2].Section)
}

func TestResultList_SetViewIncludesEmailUser(t *testing.T) {
	r := NewResultList(nil)
	view := testView()
	view.Email = domain.ReadySlot(&domain.ThreePidUser{Email: "carol@example.com", User: &carol})

	r.SetView(view)

	require.Equal(t, 4, r.Count())
	assert.Equal(t, Entry{Section: SectionEmail, User: carol}, r.Entries()[3])
}

func TestResultList_CursorFollowsUser(t *testing.T) {
	r := NewResultList(nil)
	r.SetView(testView())
	r.MoveDown()
	r.MoveDown()
	current, _ := r.Current()
	require.Equal(t, carol, current.User)

	view := testView()
	view.Directory = domain.ReadySlot([]domain.UserProfile{carol})
	r.SetView(view)

	current, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, carol, current.User)
	assert.Equal(t, 1, r.Cursor())
}

func TestResultList_CursorResetsWhenUserGone(t *testing.T) {
	r := NewResultList(nil)
	r.SetView(testView())
	r.MoveDown()

	view := testView()
	view.Directory = domain.LoadingSlot[[]domain.UserProfile]()
	r.SetView(view)

	assert.Equal(t, 0, r.Cursor())
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetView(testView())

	r.MoveUp()
	assert.Equal(t, 0, r.Cursor())

	r.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, r.Cursor())

	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 2, r.Cursor())

	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 1, r.Cursor())
}

func TestResultList_ViewMarksSelection(t *testing.T) {
	r := NewResultList(nil)
	view := testView()
	view.Selections = []string{bob.ID}
	r.SetView(view)

	out := r.View()

	assert.Contains(t, out, SectionKnown)
	assert.Contains(t, out, SectionDirectory)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "[x]")
	assert.NotContains(t, out, SectionEmail)
}

func TestResultList_ViewSlotStates(t *testing.T) {
	r := NewResultList(nil)
	r.SetView(domain.ViewState{
		Known:     domain.ReadySlot([]domain.UserProfile{}),
		Directory: domain.FailedSlot[[]domain.UserProfile](errors.New("boom")),
		Email:     domain.LoadingSlot[*domain.ThreePidUser](),
	})

	out := r.View()

	assert.Contains(t, out, "No results")
	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, "Looking up...")
}

func TestResultList_ViewEmailWithoutAccount(t *testing.T) {
	r := NewResultList(nil)
	r.SetView(domain.ViewState{
		Email: domain.ReadySlot(&domain.ThreePidUser{Email: "nobody@example.com"}),
	})

	assert.Contains(t, r.View(), "nobody@example.com has no linked account")
	assert.True(t, r.IsEmpty())
}

func TestWindow(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, lines, window(lines, 0, 10))
	assert.Equal(t, []string{"a", "b"}, window(lines, 1, 2))
	assert.Equal(t, []string{"d", "e"}, window(lines, 4, 2))
}
