package circles

import (
	"strings"

	"github.com/idilsaglam/circles/internal/model"
)

// Phase is where the page is in its interaction cycle.
type Phase int

const (
	Idle Phase = iota
	Listing
	Editing
	Submitting
	Selecting
	Deleting
	Viewing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Listing:
		return "listing"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Selecting:
		return "selecting"
	case Deleting:
		return "deleting"
	case Viewing:
		return "viewing"
	}
	return "unknown"
}

// Form holds the editor's field values.
type Form struct {
	Name   string
	Desc   string
	Avatar string
}

// FormOf fills a form from an existing record.
func FormOf(c model.Circle) Form {
	return Form{Name: c.Name, Desc: c.Desc, Avatar: c.Avatar}
}

func (f Form) draft() model.NewDraft {
	return model.NewDraft{Name: f.Name, Desc: f.Desc, Avatar: f.Avatar}.Normalize()
}

// State is the page's whole view state. It is a value: transitions return
// a new State and never mutate the old one's slices.
type State struct {
	Phase  Phase
	Params model.PageParams
	Rows   []model.Circle
	Total  int

	// Current is the row being edited or viewed. Nil while creating.
	Current  *model.Circle
	Form     Form
	FormErr  string
	Selected []model.Circle
}

// NewState starts an idle page at the first page of the given size.
func NewState(pageSize int) State {
	return State{Params: model.PageParams{Current: 1, PageSize: pageSize}.Normalize()}
}

// EditorOpen reports whether the create/edit overlay is shown.
func (s State) EditorOpen() bool { return s.Phase == Editing || s.Phase == Submitting }

// DetailOpen reports whether the detail view is shown.
func (s State) DetailOpen() bool { return s.Phase == Viewing && s.Current != nil }

// IsSelected reports whether a row with id is in the selection.
func (s State) IsSelected(id string) bool {
	for _, r := range s.Selected {
		if r.ID == id {
			return true
		}
	}
	return false
}

// SelectedIDs returns the ids of the selected rows in selection order.
func (s State) SelectedIDs() []string {
	ids := make([]string, 0, len(s.Selected))
	for _, r := range s.Selected {
		ids = append(ids, r.ID)
	}
	return ids
}

// Pages is the page count for the current total.
func (s State) Pages() int { return model.Pages(s.Total, s.Params.PageSize) }

// Event is anything that moves the page between phases.
type Event interface{ event() }

type (
	// Load requests a page; it covers page turns, searches and reloads.
	Load struct{ Params model.PageParams }
	// Loaded carries a fetched page and the params it was fetched with.
	Loaded struct {
		Params model.PageParams
		Page   model.Page
	}
	// LoadFailed surfaces as an empty result.
	LoadFailed struct {
		Params model.PageParams
		Err    error
	}

	OpenCreate  struct{}
	OpenEdit    struct{ Row model.Circle }
	CancelEdit  struct{}
	SubmitForm  struct{ Form Form }
	Submitted   struct{ OK bool }
	SelectRows  struct{ Rows []model.Circle }
	DeleteRows  struct{}
	Removed     struct{ OK bool }
	OpenDetail  struct{ Row model.Circle }
	CloseDetail struct{}
)

func (Load) event()        {}
func (Loaded) event()      {}
func (LoadFailed) event()  {}
func (OpenCreate) event()  {}
func (OpenEdit) event()    {}
func (CancelEdit) event()  {}
func (SubmitForm) event()  {}
func (Submitted) event()   {}
func (SelectRows) event()  {}
func (DeleteRows) event()  {}
func (Removed) event()     {}
func (OpenDetail) event()  {}
func (CloseDetail) event() {}

// Effect is remote work requested by a transition. The Controller runs it
// and returns the event that completes it.
type Effect interface{ effect() }

type (
	Fetch  struct{ Params model.PageParams }
	Submit struct{ Draft model.Draft }
	Remove struct{ IDs []string }
)

func (Fetch) effect()  {}
func (Submit) effect() {}
func (Remove) effect() {}

// Transition is the page's state machine. It is pure: the same state and
// event always produce the same result, and nothing outside s changes.
// Events that make no sense in the current phase return s unchanged.
func Transition(s State, e Event) (State, Effect) {
	switch e := e.(type) {
	case Load:
		if !s.resting() && s.Phase != Listing {
			return s, nil
		}
		s.Params = e.Params.Normalize()
		s.Phase = Listing
		return s, Fetch{Params: s.Params}

	case Loaded:
		// a reply to a superseded request is stale
		if s.Phase != Listing || e.Params != s.Params {
			return s, nil
		}
		s.Rows = append([]model.Circle(nil), e.Page.Data...)
		s.Total = e.Page.Total
		s.Phase = s.rest()
		return s, nil

	case LoadFailed:
		if s.Phase != Listing || e.Params != s.Params {
			return s, nil
		}
		s.Rows = nil
		s.Total = 0
		s.Phase = s.rest()
		return s, nil

	case OpenCreate:
		if !s.resting() {
			return s, nil
		}
		s.Current = nil
		s.Form = Form{}
		s.FormErr = ""
		s.Phase = Editing
		return s, nil

	case OpenEdit:
		if !s.resting() {
			return s, nil
		}
		row := e.Row
		s.Current = &row
		s.Form = FormOf(row)
		s.FormErr = ""
		s.Phase = Editing
		return s, nil

	case CancelEdit:
		if s.Phase != Editing {
			return s, nil
		}
		s.Current = nil
		s.Form = Form{}
		s.FormErr = ""
		s.Phase = s.rest()
		return s, nil

	case SubmitForm:
		if s.Phase != Editing {
			return s, nil
		}
		s.Form = e.Form
		d, err := Resolve(e.Form, s.Current)
		if err != nil {
			s.FormErr = formError(err)
			return s, nil
		}
		s.FormErr = ""
		s.Phase = Submitting
		return s, Submit{Draft: d}

	case Submitted:
		if s.Phase != Submitting {
			return s, nil
		}
		if !e.OK {
			s.Phase = Editing
			return s, nil
		}
		updated := s.Current != nil && s.Current.Persisted()
		s.Current = nil
		s.Form = Form{}
		if updated {
			s = s.reset()
		}
		s.Phase = Listing
		return s, Fetch{Params: s.Params}

	case SelectRows:
		if !s.resting() {
			return s, nil
		}
		s.Selected = dedupe(e.Rows)
		s.Phase = s.rest()
		return s, nil

	case DeleteRows:
		if s.Phase != Selecting {
			return s, nil
		}
		s.Phase = Deleting
		return s, Remove{IDs: s.SelectedIDs()}

	case Removed:
		if s.Phase != Deleting {
			return s, nil
		}
		if !e.OK {
			s.Phase = Selecting
			return s, nil
		}
		s = s.reset()
		s.Phase = Listing
		return s, Fetch{Params: s.Params}

	case OpenDetail:
		if !s.resting() {
			return s, nil
		}
		row := e.Row
		s.Current = &row
		s.Phase = Viewing
		return s, nil

	case CloseDetail:
		if s.Phase != Viewing {
			return s, nil
		}
		s.Current = nil
		s.Phase = s.rest()
		return s, nil
	}
	return s, nil
}

// Toggle adds row to the selection or removes it if already selected.
func Toggle(selected []model.Circle, row model.Circle) []model.Circle {
	out := make([]model.Circle, 0, len(selected)+1)
	found := false
	for _, r := range selected {
		if r.ID == row.ID {
			found = true
			continue
		}
		out = append(out, r)
	}
	if !found {
		out = append(out, row)
	}
	return out
}

// Resolve turns the editor's values into the draft to dispatch: a patch of
// the changed fields when editing a persisted row, a new draft otherwise.
func Resolve(f Form, current *model.Circle) (model.Draft, error) {
	d := f.draft()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if current != nil && current.Persisted() {
		return model.Diff(*current, d), nil
	}
	return d, nil
}

func (s State) resting() bool { return s.Phase == Idle || s.Phase == Selecting }

func (s State) rest() Phase {
	if len(s.Selected) > 0 {
		return Selecting
	}
	return Idle
}

// reset clears the selection and returns to the first page, keeping the
// search filters.
func (s State) reset() State {
	s.Selected = nil
	s.Params.Current = 1
	return s
}

func dedupe(rows []model.Circle) []model.Circle {
	if len(rows) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(rows))
	out := make([]model.Circle, 0, len(rows))
	for _, r := range rows {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

func formError(err error) string {
	return strings.TrimPrefix(err.Error(), model.ErrInvalid.Error()+": ")
}
