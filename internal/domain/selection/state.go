// Package selection classifies pantry ingredient names for recipe
// generation. Each name carries exactly one Status, so a name can never be
// both selected and excluded.
package selection

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotSelected is returned when starring a name that is not selected.
var ErrNotSelected = errors.New("ingredient must be selected before it can be starred")

// Status is the classification of one ingredient name.
type Status int

const (
	Neutral Status = iota
	Selected
	Starred
	Excluded
)

func (s Status) String() string {
	switch s {
	case Selected:
		return "selected"
	case Starred:
		return "starred"
	case Excluded:
		return "excluded"
	default:
		return "neutral"
	}
}

// MarshalText renders the status name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name. Unknown names are an error.
func (s *Status) UnmarshalText(text []byte) error {
	for _, st := range []Status{Neutral, Selected, Starred, Excluded} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown selection status %q", text)
}

// IsSelected reports whether the name takes part in generation.
func (s Status) IsSelected() bool {
	return s == Selected || s == Starred
}

// Active is the input handed to prompt construction.
type Active struct {
	Selected []string `json:"selected"`
	Primary  string   `json:"primary,omitempty"`
	Excluded []string `json:"excluded"`
}

// Empty reports whether nothing is selected.
func (a Active) Empty() bool {
	return len(a.Selected) == 0
}

// State holds the per-session classification. Neutral names are not stored.
// The zero value is ready to use.
type State struct {
	status map[string]Status
	order  map[string]uint64
	seq    uint64
	star   string
}

// New creates an empty selection
func New() *State {
	return &State{}
}

func (s *State) set(name string, st Status) {
	if s.status == nil {
		s.status = make(map[string]Status)
		s.order = make(map[string]uint64)
	}
	if st == Neutral {
		delete(s.status, name)
		delete(s.order, name)
		return
	}
	prev, ok := s.status[name]
	s.status[name] = st
	// Ordering follows when a name entered its current group.
	if !ok || prev.IsSelected() != st.IsSelected() {
		s.seq++
		s.order[name] = s.seq
	}
}

// Status returns the classification of name.
func (s *State) Status(name string) Status {
	return s.status[name]
}

// Starred returns the primary ingredient, if any.
func (s *State) Starred() string {
	return s.star
}

// ToggleSelect moves a neutral name to Selected and a selected or starred
// name back to Neutral. Excluded names must be un-excluded first, so the
// call is a no-op for them. It returns the resulting status.
func (s *State) ToggleSelect(name string) Status {
	switch s.Status(name) {
	case Neutral:
		s.set(name, Selected)
	case Selected:
		s.set(name, Neutral)
	case Starred:
		s.set(name, Neutral)
		s.star = ""
	}
	return s.Status(name)
}

// ToggleExclude un-excludes an excluded name and excludes any other,
// dropping its selection and star.
func (s *State) ToggleExclude(name string) Status {
	switch s.Status(name) {
	case Excluded:
		s.set(name, Neutral)
	case Starred:
		s.star = ""
		s.set(name, Excluded)
	default:
		s.set(name, Excluded)
	}
	return s.Status(name)
}

// SetStar toggles the star on a selected name. Starring a name demotes the
// previous primary to Selected.
func (s *State) SetStar(name string) (Status, error) {
	switch s.Status(name) {
	case Starred:
		s.set(name, Selected)
		s.star = ""
	case Selected:
		if s.star != "" {
			s.set(s.star, Selected)
		}
		s.set(name, Starred)
		s.star = name
	default:
		return s.Status(name), ErrNotSelected
	}
	return s.Status(name), nil
}

// Active returns the selected names in the order they were selected, the
// starred name, and the excluded names in the order they were excluded.
func (s *State) Active() Active {
	a := Active{Selected: []string{}, Excluded: []string{}, Primary: s.star}
	for _, name := range s.ordered() {
		switch st := s.status[name]; {
		case st.IsSelected():
			a.Selected = append(a.Selected, name)
		case st == Excluded:
			a.Excluded = append(a.Excluded, name)
		}
	}
	return a
}

// Snapshot returns the non-neutral classifications.
func (s *State) Snapshot() map[string]Status {
	out := make(map[string]Status, len(s.status))
	for name, st := range s.status {
		out[name] = st
	}
	return out
}

// Reset returns every name to Neutral.
func (s *State) Reset() {
	s.status = nil
	s.order = nil
	s.star = ""
}

// Sync drops classifications of names that are no longer in the pantry.
// A nil list means the pantry is not loaded and resets the selection.
func (s *State) Sync(names []string) {
	if names == nil {
		s.Reset()
		return
	}
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[n] = struct{}{}
	}
	for name := range s.status {
		if _, ok := present[name]; !ok {
			if name == s.star {
				s.star = ""
			}
			s.set(name, Neutral)
		}
	}
}

func (s *State) ordered() []string {
	names := make([]string, 0, len(s.status))
	for name := range s.status {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return s.order[names[i]] < s.order[names[j]]
	})
	return names
}
