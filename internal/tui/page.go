package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/circles/internal/circles"
	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/ui"
)

// eventMsg carries the event that completes an effect back into Update.
type eventMsg struct{ e circles.Event }

// page is the circle management screen. All view state lives in state and
// only changes through circles.Transition.
type page struct {
	ctx   context.Context
	ctrl  *circles.Controller
	state circles.State

	table     table.Model
	editor    editor
	search    textinput.Model
	searching bool
	loaded    bool

	// md renders descriptions in the detail drawer; nil means plain text.
	md     *glamour.TermRenderer
	detail string
}

func newPage(ctx context.Context, ctrl *circles.Controller, pageSize int) page {
	cols := []table.Column{{Title: " ", Width: 3}}
	for _, c := range circles.Columns {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(ui.Current().Header.GetForeground())
	st.Selected = ui.Current().Selected
	t.SetStyles(st)

	s := textinput.New()
	s.Prompt = "/ "
	s.Placeholder = "search by name"
	s.CharLimit = 64

	md, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)

	return page{
		ctx:    ctx,
		ctrl:   ctrl,
		state:  circles.NewState(pageSize),
		table:  t,
		editor: newEditor(),
		search: s,
		md:     md,
	}
}

// capturing reports whether keys belong to an input rather than navigation.
func (p page) capturing() bool {
	return p.searching || p.state.EditorOpen() || p.state.DetailOpen()
}

// load requests the current page. The first call on a screen is its Init.
func (p page) load() (page, tea.Cmd) {
	p.loaded = true
	return p.apply(circles.Load{Params: p.state.Params})
}

// apply runs one transition and schedules its effect.
func (p page) apply(e circles.Event) (page, tea.Cmd) {
	prev := p.state
	var eff circles.Effect
	p.state, eff = circles.Transition(p.state, e)
	p.syncTable()

	var cmd tea.Cmd
	if p.state.EditorOpen() && !prev.EditorOpen() {
		p.editor, cmd = p.editor.load(p.state.Form)
	}
	if !p.state.EditorOpen() && prev.EditorOpen() {
		p.editor = p.editor.blur()
	}
	if p.state.DetailOpen() && !prev.DetailOpen() {
		p.detail = p.renderDetail(*p.state.Current)
	}
	if eff != nil {
		return p, p.run(eff)
	}
	return p, cmd
}

func (p page) run(eff circles.Effect) tea.Cmd {
	ctx, ctrl := p.ctx, p.ctrl
	return func() tea.Msg { return eventMsg{e: ctrl.Run(ctx, eff)} }
}

func (p *page) syncTable() {
	t := ui.Current()
	rows := make([]table.Row, 0, len(p.state.Rows))
	for _, c := range p.state.Rows {
		mark := t.BoxUnchecked
		if p.state.IsSelected(c.ID) {
			mark = t.BoxChecked
		}
		rows = append(rows, append(table.Row{mark}, circles.Cells(c)...))
	}
	p.table.SetRows(rows)
	if p.table.Cursor() >= len(rows) {
		p.table.SetCursor(max(0, len(rows)-1))
	}
}

// row is the record under the cursor.
func (p page) row() (model.Circle, bool) {
	i := p.table.Cursor()
	if i < 0 || i >= len(p.state.Rows) {
		return model.Circle{}, false
	}
	return p.state.Rows[i], true
}

func (p page) update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if msg.e == nil {
			return p, nil
		}
		return p.apply(msg.e)
	case tea.WindowSizeMsg:
		// header, nav, search, batch bar, toast and help lines
		p.table.SetHeight(max(3, msg.Height-10))
		return p, nil
	case tea.KeyMsg:
		switch {
		case p.state.EditorOpen():
			return p.editorKey(msg)
		case p.state.DetailOpen():
			if key.Matches(msg, keys.Back, keys.Confirm) || msg.String() == "q" {
				return p.apply(circles.CloseDetail{})
			}
			return p, nil
		case p.searching:
			return p.searchKey(msg)
		}
		return p.listKey(msg)
	}
	return p, nil
}

func (p page) editorKey(msg tea.KeyMsg) (page, tea.Cmd) {
	if p.state.Phase == circles.Submitting {
		return p, nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		return p.apply(circles.CancelEdit{})
	case key.Matches(msg, keys.Save):
		return p.apply(circles.SubmitForm{Form: p.editor.form()})
	}
	var cmd tea.Cmd
	p.editor, cmd = p.editor.update(msg)
	return p, cmd
}

func (p page) searchKey(msg tea.KeyMsg) (page, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.searching = false
		p.search.Blur()
		return p, nil
	case key.Matches(msg, keys.Confirm):
		p.searching = false
		p.search.Blur()
		params := p.state.Params
		params.Name = strings.TrimSpace(p.search.Value())
		params.Current = 1
		return p.apply(circles.Load{Params: params})
	}
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	return p, cmd
}

func (p page) listKey(msg tea.KeyMsg) (page, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Add):
		return p.apply(circles.OpenCreate{})
	case key.Matches(msg, keys.Edit):
		if r, ok := p.row(); ok {
			return p.apply(circles.OpenEdit{Row: r})
		}
		return p, nil
	case key.Matches(msg, keys.Detail):
		if r, ok := p.row(); ok {
			return p.apply(circles.OpenDetail{Row: r})
		}
		return p, nil
	case key.Matches(msg, keys.Select):
		if r, ok := p.row(); ok {
			return p.apply(circles.SelectRows{Rows: circles.Toggle(p.state.Selected, r)})
		}
		return p, nil
	case key.Matches(msg, keys.Clear):
		return p.apply(circles.SelectRows{})
	case key.Matches(msg, keys.Delete):
		return p.apply(circles.DeleteRows{})
	case key.Matches(msg, keys.Search):
		p.searching = true
		p.search.SetValue(p.state.Params.Name)
		p.search.CursorEnd()
		return p, p.search.Focus()
	case key.Matches(msg, keys.Reload):
		return p.apply(circles.Load{Params: p.state.Params})
	case key.Matches(msg, keys.Next):
		if p.state.Params.Current >= p.state.Pages() {
			return p, nil
		}
		params := p.state.Params
		params.Current++
		return p.apply(circles.Load{Params: params})
	case key.Matches(msg, keys.Prev):
		if p.state.Params.Current <= 1 {
			return p, nil
		}
		params := p.state.Params
		params.Current--
		return p.apply(circles.Load{Params: params})
	}
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p page) view(width int) string {
	t := ui.Current()
	s := p.state

	switch {
	case s.EditorOpen():
		title := "New circle"
		if s.Current != nil {
			title = "Edit " + s.Current.Name
		}
		busy := ""
		if s.Phase == circles.Submitting {
			busy = t.SymBusy + " saving"
		}
		return p.editor.view(title, s.FormErr, busy)
	case s.DetailOpen():
		return p.detail
	}

	var b strings.Builder
	b.WriteString(t.Title.Render("Circles"))
	b.WriteString("  ")
	b.WriteString(t.Muted.Render(fmt.Sprintf("page %d/%d • %d total", s.Params.Current, s.Pages(), s.Total)))
	if s.Params.Name != "" {
		b.WriteString("  " + t.Accent.Render("name~"+s.Params.Name))
	}
	if s.Phase == circles.Listing || s.Phase == circles.Deleting {
		b.WriteString("  " + t.Pending.Render(t.SymBusy+" "+s.Phase.String()))
	}
	b.WriteString("\n")
	if p.searching {
		b.WriteString(p.search.View() + "\n")
	}
	if len(s.Rows) == 0 && s.Phase != circles.Listing {
		b.WriteString(t.Muted.Render("No circles yet. Press a to add one.") + "\n")
	} else {
		b.WriteString(p.table.View() + "\n")
	}
	if n := len(s.Selected); n > 0 {
		bar := fmt.Sprintf("Selected %d item(s) • D delete • x clear", n)
		b.WriteString(lipgloss.NewStyle().Width(max(0, width-4)).Render(t.Accent.Render(bar)) + "\n")
	}
	return b.String()
}

func (p page) renderDetail(c model.Circle) string {
	t := ui.Current()
	lines := []string{t.Title.Render(c.Name), ""}
	for _, f := range circles.Detail(c) {
		lines = append(lines, t.Muted.Render(f.Label))
		if f.Label == "Description" {
			lines = append(lines, p.markdown(f.Value))
			continue
		}
		lines = append(lines, "  "+f.Value)
	}
	lines = append(lines, "", t.Muted.Render("esc close"))
	return ui.PanelString(lines)
}

// markdown renders a description, falling back to the raw text.
func (p page) markdown(s string) string {
	if p.md == nil {
		return "  " + s
	}
	out, err := p.md.Render(s)
	if err != nil {
		return "  " + s
	}
	return strings.Trim(out, "\n")
}
