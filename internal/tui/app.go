// Package tui is the interactive terminal front end: a routed shell around
// the circle management page.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/circles/internal/auth"
	"github.com/idilsaglam/circles/internal/circles"
	"github.com/idilsaglam/circles/internal/notify"
	"github.com/idilsaglam/circles/internal/routes"
	"github.com/idilsaglam/circles/internal/ui"
)

// Options wires the program.
type Options struct {
	Controller *circles.Controller
	// Toasts is the receive side of the notifier the controller publishes to.
	Toasts   <-chan notify.Toast
	Routes   routes.Table
	Start    string
	PageSize int
	Log      *zap.Logger
}

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	log    *zap.Logger
	routes routes.Table
	path   string
	route  routes.Route

	page   page
	login  login
	toasts toasts
	toastC <-chan notify.Toast

	help   help.Model
	jump   textinput.Model
	going  bool
	status string

	width, height int
	initCmd       tea.Cmd
}

// New builds the root model. Nothing is fetched until Init.
func New(ctx context.Context, opt Options) App {
	if opt.Routes == nil {
		opt.Routes = routes.Default()
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	if opt.Start == "" {
		opt.Start = "/"
	}
	j := textinput.New()
	j.Prompt = ": "
	j.Placeholder = "/list"
	j.CharLimit = 128

	m := App{
		ctx:    ctx,
		log:    opt.Log,
		routes: opt.Routes,
		path:   opt.Start,
		route:  opt.Routes.Resolve(opt.Start),
		page:   newPage(ctx, opt.Controller, opt.PageSize),
		login:  newLogin(),
		toasts: newToasts(),
		toastC: opt.Toasts,
		help:   help.New(),
		jump:   j,
	}
	m, m.initCmd = m.enter()
	return m
}

// Run starts the program on the alternate screen and blocks until it quits.
func Run(ctx context.Context, opt Options) error {
	p := tea.NewProgram(New(ctx, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func (m App) Init() tea.Cmd {
	return tea.Batch(m.initCmd, waitForToast(m.toastC))
}

// navigate resolves path and prepares the target screen.
func (m App) navigate(path string) (App, tea.Cmd) {
	m.path = path
	m.route = m.routes.Resolve(path)
	m.log.Debug("navigate", zap.String("path", path), zap.String("component", m.route.Component))
	return m.enter()
}

// enter runs the current screen's entry work.
func (m App) enter() (App, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route.Component {
	case routes.Circles:
		if !m.page.loaded {
			m.page, cmd = m.page.load()
		}
	case routes.Login:
		m.login, cmd = m.login.focus()
	case routes.Welcome:
		m.status = tokenStatus(time.Now())
	}
	return m, cmd
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.page, cmd = m.page.update(msg)
		return m, cmd

	case toastMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.push(msg.t)
		return m, tea.Batch(cmd, waitForToast(m.toastC))

	case toastExpiredMsg:
		m.toasts = m.toasts.expire(msg.id)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.update(msg)
		return m, cmd

	case eventMsg:
		var cmd tea.Cmd
		m.page, cmd = m.page.update(msg)
		return m, cmd

	case loggedInMsg:
		return m.navigate("/list")

	case tea.KeyMsg:
		return m.key(msg)
	}
	return m.forward(msg)
}

func (m App) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.going {
		switch {
		case key.Matches(msg, keys.Back):
			m.going = false
			m.jump.Blur()
			return m, nil
		case key.Matches(msg, keys.Confirm):
			m.going = false
			m.jump.Blur()
			path := strings.TrimSpace(m.jump.Value())
			if path == "" {
				return m, nil
			}
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
			return m.navigate(path)
		}
		var cmd tea.Cmd
		m.jump, cmd = m.jump.Update(msg)
		return m, cmd
	}

	if m.route.Component == routes.Login {
		if key.Matches(msg, keys.Back) {
			return m.navigate("/")
		}
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg)
		return m, cmd
	}

	if m.route.Component == routes.Circles && m.page.capturing() {
		var cmd tea.Cmd
		m.page, cmd = m.page.update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Goto):
		m.going = true
		m.jump.SetValue("")
		return m, m.jump.Focus()
	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case msg.String() == "L":
		return m.navigate("/login")
	}
	if r, ok := menuKey(m.routes.Menu(), msg.String()); ok {
		return m.navigate(r.Path)
	}
	return m.forward(msg)
}

// forward hands msg to the current screen.
func (m App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route.Component {
	case routes.Circles:
		m.page, cmd = m.page.update(msg)
	case routes.Login:
		m.login, cmd = m.login.update(msg)
	}
	return m, cmd
}

// menuKey maps the digit keys to menu entries, starting at 1.
func menuKey(menu []routes.Route, k string) (routes.Route, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return routes.Route{}, false
	}
	i := int(k[0] - '1')
	if i >= len(menu) {
		return routes.Route{}, false
	}
	return menu[i], true
}

func (m App) View() string {
	var body string
	switch m.route.Component {
	case routes.Circles:
		body = m.page.view(m.width)
	case routes.Login:
		body = m.login.view()
	case routes.Welcome:
		body = m.welcomeView()
	default:
		body = m.notFoundView()
	}

	if !m.route.Layout {
		return joinLines(body, m.toasts.view())
	}

	helpView := m.help.View(keys)
	if m.route.Component != routes.Circles {
		helpView = m.help.View(navHelp{})
	}
	var jump string
	if m.going {
		jump = m.jump.View()
	}
	return joinLines(m.navView(), body, jump, m.toasts.view(), helpView)
}

func (m App) navView() string {
	t := ui.Current()
	parts := make([]string, 0, len(m.routes.Menu()))
	for i, r := range m.routes.Menu() {
		label := fmt.Sprintf("%d %s %s", i+1, r.Icon, r.Name)
		if r.Path == m.route.Path {
			parts = append(parts, t.Selected.Render(" "+label+" "))
		} else {
			parts = append(parts, t.Muted.Render(" "+label+" "))
		}
	}
	return t.Title.Render("circles") + "  " + strings.Join(parts, " ")
}

func (m App) welcomeView() string {
	t := ui.Current()
	lines := []string{
		t.Title.Render("Welcome"),
		"",
		"Manage circles from the terminal.",
		"",
	}
	for i, r := range m.routes.Menu() {
		lines = append(lines, fmt.Sprintf("  %s %d  %s %s", t.Accent.Render("press"), i+1, r.Icon, r.Name))
	}
	lines = append(lines, "", t.Muted.Render(m.status))
	return ui.PanelString(lines)
}

func (m App) notFoundView() string {
	t := ui.Current()
	return ui.PanelString([]string{
		t.Error.Render("404"),
		"",
		"Nothing lives at " + t.Accent.Render(m.path) + ".",
		t.Muted.Render("press 1 to go home"),
	})
}

// tokenStatus describes the stored credentials for the welcome screen.
func tokenStatus(now time.Time) string {
	ti, err := auth.GetToken()
	switch {
	case err != nil:
		return "credentials unreadable: " + err.Error()
	case ti == nil:
		return "not signed in • press L to sign in"
	case ti.Expired(now):
		return "token expired • press L to sign in again"
	}
	return "signed in"
}

type navHelp struct{}

func (navHelp) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1-9", "menu")),
		key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign in")),
		keys.Goto, keys.Quit,
	}
}

func (n navHelp) FullHelp() [][]key.Binding { return [][]key.Binding{n.ShortHelp()} }

func joinLines(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, strings.TrimRight(p, "\n"))
		}
	}
	return strings.Join(out, "\n")
}
