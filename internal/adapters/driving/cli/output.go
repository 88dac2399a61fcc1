package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// listing is a view flattened into numbered rows for display and for
// selection by number.
type listing struct {
	rows []row
}

type row struct {
	section string
	user    domain.UserProfile
}

// at returns the user on 1-based line n.
func (l listing) at(n int) (domain.UserProfile, bool) {
	if n < 1 || n > len(l.rows) {
		return domain.UserProfile{}, false
	}
	return l.rows[n-1].user, true
}

// printView writes the view as sections of numbered users and returns the
// numbering.
func printView(w io.Writer, view domain.ViewState) listing {
	var l listing
	selected := make(map[string]bool, len(view.Selections))
	for _, id := range view.Selections {
		selected[id] = true
	}

	line := func(section string, u domain.UserProfile) {
		l.rows = append(l.rows, row{section: section, user: u})
		mark := " "
		if selected[u.ID] {
			mark = "*"
		}
		if u.DisplayName != "" {
			fmt.Fprintf(w, "  %s[%d] %s (%s)\n", mark, len(l.rows), u.DisplayName, u.ID)
		} else {
			fmt.Fprintf(w, "  %s[%d] %s\n", mark, len(l.rows), u.ID)
		}
	}

	printUsers := func(title string, slot domain.Slot[[]domain.UserProfile]) {
		fmt.Fprintf(w, "%s:\n", title)
		switch {
		case slot.IsFailed():
			fmt.Fprintf(w, "  error: %v\n", slot.Err)
		case slot.IsLoading():
			fmt.Fprintln(w, "  searching...")
		case slot.IsReady() && len(slot.Value) == 0:
			fmt.Fprintln(w, "  no matches")
		case slot.IsReady():
			for _, u := range slot.Value {
				line(title, u)
			}
		default:
			fmt.Fprintln(w, "  -")
		}
	}

	printUsers("Known users", view.Known)
	printUsers("Directory", view.Directory)

	switch {
	case view.Email.IsLoading():
		fmt.Fprintln(w, "Email:\n  looking up...")
	case view.Email.IsReady() && view.Email.Value != nil:
		fmt.Fprintln(w, "Email:")
		if view.Email.Value.User != nil {
			line("Email", *view.Email.Value.User)
		} else {
			fmt.Fprintf(w, "  %s has no linked account\n", view.Email.Value.Email)
		}
	case view.Email.IsFailed():
		fmt.Fprintf(w, "Email:\n  error: %v\n", view.Email.Err)
	}

	return l
}

// printSelection writes the selected users.
func printSelection(w io.Writer, view domain.ViewState) {
	if len(view.SelectedProfiles) == 0 {
		fmt.Fprintln(w, "Nothing selected.")
		return
	}
	fmt.Fprintln(w, "Selected:")
	for _, u := range view.SelectedProfiles {
		fmt.Fprintf(w, "  %s\n", u.Name())
	}
}

// viewJSON is the JSON rendering of a view.
type viewJSON struct {
	Term      string               `json:"term"`
	Known     slotJSON             `json:"known"`
	Directory slotJSON             `json:"directory"`
	Email     *emailJSON           `json:"email,omitempty"`
	Selected  []domain.UserProfile `json:"selected"`
}

type slotJSON struct {
	State string               `json:"state"`
	Users []domain.UserProfile `json:"users,omitempty"`
	Error string               `json:"error,omitempty"`
}

type emailJSON struct {
	State  string               `json:"state"`
	Result *domain.ThreePidUser `json:"result,omitempty"`
}

func toSlotJSON(slot domain.Slot[[]domain.UserProfile]) slotJSON {
	out := slotJSON{State: slot.State.String(), Users: slot.Value}
	if slot.Err != nil {
		out.Error = slot.Err.Error()
	}
	return out
}

// toViewJSON converts a view for JSON output.
func toViewJSON(view domain.ViewState) viewJSON {
	out := viewJSON{
		Term:      view.Term,
		Known:     toSlotJSON(view.Known),
		Directory: toSlotJSON(view.Directory),
		Selected:  view.SelectedProfiles,
	}
	if !view.Email.IsIdle() {
		out.Email = &emailJSON{State: view.Email.State.String(), Result: view.Email.Value}
	}
	if out.Selected == nil {
		out.Selected = []domain.UserProfile{}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
