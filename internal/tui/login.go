package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/circles/internal/auth"
	"github.com/idilsaglam/circles/internal/ui"
)

// loggedInMsg is sent after a token was stored.
type loggedInMsg struct{}

// login asks for an API token and saves it to the credentials file.
type login struct {
	input textinput.Model
	err   string
	save  func(token string) error
}

func newLogin() login {
	in := textinput.New()
	in.Prompt = "token> "
	in.Placeholder = "paste your API token"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.CharLimit = 4096
	return login{
		input: in,
		save:  func(token string) error { return auth.SetToken(token, nil) },
	}
}

func (l login) focus() (login, tea.Cmd) {
	l.err = ""
	l.input.SetValue("")
	return l, l.input.Focus()
}

func (l login) update(msg tea.Msg) (login, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, keys.Confirm) {
		token := strings.TrimSpace(l.input.Value())
		if token == "" {
			l.err = "token cannot be empty"
			return l, nil
		}
		if err := l.save(token); err != nil {
			l.err = err.Error()
			return l, nil
		}
		l.input.Blur()
		return l, func() tea.Msg { return loggedInMsg{} }
	}
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return l, cmd
}

func (l login) view() string {
	t := ui.Current()
	lines := []string{
		t.Title.Render("Sign in"),
		"",
		l.input.View(),
	}
	if l.err != "" {
		lines = append(lines, t.Error.Render(t.SymFail+" "+l.err))
	}
	lines = append(lines, "", t.Muted.Render("enter save • esc back • ctrl+c quit"))
	return ui.PanelString(lines)
}
