package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add     key.Binding
	Edit    key.Binding
	Detail  key.Binding
	Select  key.Binding
	Clear   key.Binding
	Delete  key.Binding
	Search  key.Binding
	Reload  key.Binding
	Prev    key.Binding
	Next    key.Binding
	Goto    key.Binding
	Quit    key.Binding
	Back    key.Binding
	Save    key.Binding
	Confirm key.Binding
}

var keys = keyMap{
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Detail:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Select:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	Clear:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear selection")),
	Delete:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Prev:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
	Next:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
	Goto:    key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "go to path")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
}

// ShortHelp and FullHelp make keyMap a help.KeyMap for the circles screen.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Select, k.Delete, k.Search, k.Goto, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Edit, k.Detail},
		{k.Select, k.Clear, k.Delete},
		{k.Search, k.Reload, k.Prev, k.Next},
		{k.Goto, k.Quit},
	}
}
