package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/circles/internal/circles"
	"github.com/idilsaglam/circles/internal/ui"
)

const (
	fieldName = iota
	fieldDesc
	fieldAvatar
	fieldCount
)

// editor is the create/edit overlay: name, description and avatar.
type editor struct {
	name   textinput.Model
	desc   textarea.Model
	avatar textinput.Model
	focus  int
}

func newEditor() editor {
	e := editor{
		name:   textinput.New(),
		desc:   textarea.New(),
		avatar: textinput.New(),
	}
	e.name.Prompt = "> "
	e.name.Placeholder = "Circle name"
	e.name.CharLimit = 64

	e.desc.Placeholder = "What is this circle about?"
	e.desc.ShowLineNumbers = false
	e.desc.CharLimit = 500
	e.desc.SetHeight(3)
	e.desc.SetWidth(48)

	e.avatar.Prompt = "> "
	e.avatar.Placeholder = "image path to upload, or an uploaded reference"
	e.avatar.CharLimit = 512
	return e
}

// load fills the fields from f and focuses the first one.
func (e editor) load(f circles.Form) (editor, tea.Cmd) {
	e.name.SetValue(f.Name)
	e.name.CursorEnd()
	e.desc.SetValue(f.Desc)
	e.avatar.SetValue(f.Avatar)
	e.avatar.CursorEnd()
	return e.focusOn(fieldName)
}

func (e editor) form() circles.Form {
	return circles.Form{
		Name:   e.name.Value(),
		Desc:   e.desc.Value(),
		Avatar: e.avatar.Value(),
	}
}

func (e editor) focusOn(i int) (editor, tea.Cmd) {
	e.focus = (i + fieldCount) % fieldCount
	e.name.Blur()
	e.desc.Blur()
	e.avatar.Blur()
	switch e.focus {
	case fieldName:
		return e, e.name.Focus()
	case fieldDesc:
		return e, e.desc.Focus()
	default:
		return e, e.avatar.Focus()
	}
}

func (e editor) blur() editor {
	e.name.Blur()
	e.desc.Blur()
	e.avatar.Blur()
	return e
}

func (e editor) update(msg tea.Msg) (editor, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab":
			return e.focusOn(e.focus + 1)
		case "shift+tab":
			return e.focusOn(e.focus - 1)
		}
	}
	var cmd tea.Cmd
	switch e.focus {
	case fieldName:
		e.name, cmd = e.name.Update(msg)
	case fieldDesc:
		e.desc, cmd = e.desc.Update(msg)
	default:
		e.avatar, cmd = e.avatar.Update(msg)
	}
	return e, cmd
}

func (e editor) view(title, formErr string, busy string) string {
	t := ui.Current()
	label := func(i int, s string) string {
		if e.focus == i {
			return t.Accent.Render(s)
		}
		return t.Muted.Render(s)
	}
	head := t.Title.Render(title)
	if formErr != "" {
		head += "  " + t.Error.Render(formErr)
	}
	if busy != "" {
		head += "  " + t.Pending.Render(busy)
	}
	lines := []string{
		head,
		"",
		label(fieldName, "Name"),
		e.name.View(),
		label(fieldDesc, "Description"),
		e.desc.View(),
		label(fieldAvatar, "Avatar"),
		e.avatar.View(),
		t.Muted.Render("images only, up to 10MB"),
		"",
		t.Muted.Render("tab next field • ctrl+s save • esc cancel"),
	}
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
