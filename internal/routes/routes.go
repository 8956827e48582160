package routes

// Route maps a path to a screen. Layout false means the screen is drawn
// without the navigation chrome.
type Route struct {
	Path      string
	Name      string
	Icon      string
	Component string
	Layout    bool
	Redirect  string
}

const CatchAll = "*"

// Components rendered by the TUI.
const (
	Login    = "login"
	Welcome  = "welcome"
	Circles  = "circles"
	NotFound = "404"
)

// maxRedirects bounds redirect chains so a cycle cannot hang Resolve.
const maxRedirects = 8

// Table is an ordered route list; the first match wins.
type Table []Route

// Default is the application's route table.
func Default() Table {
	return Table{
		{Path: "/login", Component: Login},
		{Path: "/welcome", Name: "Welcome", Icon: "☺", Component: Welcome, Layout: true},
		{Path: "/list", Name: "Circles", Icon: "▦", Component: Circles, Layout: true},
		{Path: "/", Redirect: "/welcome"},
		{Path: CatchAll, Component: NotFound},
	}
}

// Resolve returns the route that renders path, following redirects.
func (t Table) Resolve(path string) Route {
	for i := 0; i <= maxRedirects; i++ {
		r, ok := t.lookup(path)
		if !ok {
			return t.catchAll()
		}
		if r.Redirect == "" {
			return r
		}
		path = r.Redirect
	}
	return t.catchAll()
}

// Menu lists the routes that carry a display name, in table order.
func (t Table) Menu() []Route {
	var out []Route
	for _, r := range t {
		if r.Name != "" && r.Redirect == "" {
			out = append(out, r)
		}
	}
	return out
}

func (t Table) lookup(path string) (Route, bool) {
	for _, r := range t {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

func (t Table) catchAll() Route {
	if r, ok := t.lookup(CatchAll); ok {
		return r
	}
	return Route{Path: CatchAll, Component: NotFound}
}
