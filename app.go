package ruter

import (
	"github.com/gorilla/websocket"
	"github.com/kildevaeld/strong"
	"go.uber.org/zap"

	"github.com/kildevaeld/ruter/httpcontext"
)

// Mountable builds a part from accumulated routes so it can be mounted
// under a prefix on another app.
type Mountable interface {
	Part() Part
}

// Route is one registered candidate with its routing metadata.
type Route struct {
	Method string
	Path   string
	Part   Part
}

// App collects routes and middleware and compiles them into a single part.
// Candidates are tried strictly in registration order, first match wins.
type App struct {
	wraps  []Wrap
	routes []Route
}

func NewApp() *App {
	return &App{}
}

// Use appends middleware around the compiled part. The first wrap
// registered becomes the outermost.
func (a *App) Use(wraps ...Wrap) *App {
	a.wraps = append(a.wraps, wraps...)
	return a
}

func (a *App) Get(path string, parts ...Part) *App {
	return a.Route(strong.GET, path, parts...)
}

func (a *App) Post(path string, parts ...Part) *App {
	return a.Route(strong.POST, path, parts...)
}

func (a *App) Put(path string, parts ...Part) *App {
	return a.Route(strong.PUT, path, parts...)
}

func (a *App) Patch(path string, parts ...Part) *App {
	return a.Route(strong.PATCH, path, parts...)
}

func (a *App) Delete(path string, parts ...Part) *App {
	return a.Route(strong.DELETE, path, parts...)
}

func (a *App) Head(path string, parts ...Part) *App {
	return a.Route(strong.HEAD, path, parts...)
}

func (a *App) Options(path string, parts ...Part) *App {
	return a.Route(strong.OPTIONS, path, parts...)
}

// WebSocket registers a GET route that upgrades the connection and hands
// it to handler. The handler owns the connection and must close it.
func (a *App) WebSocket(path string, handler func(ctx *httpcontext.Context, conn *websocket.Conn) error) *App {
	part := func(ctx *httpcontext.Context) (Result, error) {
		conn, err := ctx.Websocket(nil)
		if err != nil {
			return NoMatch(), err
		}
		if err := handler(ctx, conn); err != nil {
			zap.L().Error("websocket handler", zap.String("path", path), zap.Error(err))
		}
		return Matched(ctx), nil
	}

	return a.Route(strong.GET, path, part)
}

// Route registers parts under a method and exact path. The parts compose
// left to right after the method and path matchers.
func (a *App) Route(method, path string, parts ...Part) *App {
	if len(parts) == 0 {
		return a
	}

	combined := make([]Part, 0, len(parts)+2)
	combined = append(combined, Method(method), Path(path))
	combined = append(combined, parts...)

	zap.L().Debug("register route", zap.String("method", method), zap.String("path", path))

	a.routes = append(a.routes, Route{
		Method: method,
		Path:   path,
		Part:   Compose(combined...),
	})
	return a
}

// Handle registers a bare candidate with no method or path matcher in
// front, composing the given parts.
func (a *App) Handle(parts ...Part) *App {
	if len(parts) == 0 {
		return a
	}

	zap.L().Debug("register handler")

	a.routes = append(a.routes, Route{
		Part: Compose(parts...),
	})
	return a
}

// Mount registers m under a path prefix. Requests reaching it see their
// path with the prefix stripped. Extra wraps apply around the mounted part
// only.
func (a *App) Mount(path string, m Mountable, wraps ...Wrap) *App {
	part := m.Part()
	for i := len(wraps) - 1; i >= 0; i-- {
		part = wraps[i](part)
	}

	zap.L().Debug("register mount", zap.String("path", path))

	a.routes = append(a.routes, Route{
		Path: path,
		Part: Compose(PathStrip(path), part),
	})
	return a
}

// Part compiles the app: an ordered alternation over every candidate,
// wrapped in the registered middleware.
func (a *App) Part() Part {
	parts := make([]Part, len(a.routes))
	for i, route := range a.routes {
		parts[i] = route.Part
	}

	root := Choose(parts...)
	for i := len(a.wraps) - 1; i >= 0; i-- {
		root = a.wraps[i](root)
	}
	return root
}

// Routes returns the registered candidates in order.
func (a *App) Routes() []Route {
	out := make([]Route, len(a.routes))
	copy(out, a.routes)
	return out
}
