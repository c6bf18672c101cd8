package ruter

import (
	"testing"

	"github.com/kildevaeld/strong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kildevaeld/ruter/httpcontext"
)

func TestAppVerbRouting(t *testing.T) {
	app := NewApp().
		Get("/things", OK("listed")).
		Post("/things", Created("made"))

	part := app.Part()

	res, rec := runPart(t, part, strong.GET, "/things")
	require.True(t, res.Matched())
	finalize(t, res.Context())
	assert.Equal(t, "listed", rec.Body.String())

	res, rec = runPart(t, part, strong.POST, "/things")
	require.True(t, res.Matched())
	finalize(t, res.Context())
	assert.Equal(t, 201, rec.Code)

	res, _ = runPart(t, part, strong.DELETE, "/things")
	assert.False(t, res.Matched())
}

func TestAppFirstRegisteredWins(t *testing.T) {
	app := NewApp().
		Get("/x", OK("first")).
		Get("/x", OK("second"))

	res, rec := runPart(t, app.Part(), strong.GET, "/x")
	require.True(t, res.Matched())
	finalize(t, res.Context())
	assert.Equal(t, "first", rec.Body.String())
}

func TestAppWrapOrder(t *testing.T) {
	var order []string
	wrap := func(name string) Wrap {
		return func(next Part) Part {
			return func(ctx *httpcontext.Context) (Result, error) {
				order = append(order, name)
				return next(ctx)
			}
		}
	}

	app := NewApp().
		Use(wrap("outer"), wrap("inner")).
		Get("/", OK("done"))

	res, _ := runPart(t, app.Part(), strong.GET, "/")
	require.True(t, res.Matched())
	assert.Equal(t, []string{"outer", "inner"}, order, "first registered wrap runs outermost")
}

func TestAppWrapSeesDeclines(t *testing.T) {
	saw := false
	spy := Wrap(func(next Part) Part {
		return func(ctx *httpcontext.Context) (Result, error) {
			res, err := next(ctx)
			saw = !res.Matched()
			return res, err
		}
	})

	app := NewApp().Use(spy).Get("/known", OK("yes"))

	res, _ := runPart(t, app.Part(), strong.GET, "/unknown")
	assert.False(t, res.Matched())
	assert.True(t, saw, "middleware observes the miss")
}

func TestAppHandleBareCandidate(t *testing.T) {
	app := NewApp().Handle(Compose(GET, PathPrefix("/dl/"), OK("download")))

	res, _ := runPart(t, app.Part(), strong.GET, "/dl/file.zip")
	assert.True(t, res.Matched())

	res, _ = runPart(t, app.Part(), strong.GET, "/other")
	assert.False(t, res.Matched())
}

func TestAppMountStripsPrefix(t *testing.T) {
	api := NewApp().Get("/users", OK("users"))

	app := NewApp().Mount("/api", api)

	res, rec := runPart(t, app.Part(), strong.GET, "/api/users")
	require.True(t, res.Matched())
	finalize(t, res.Context())
	assert.Equal(t, "users", rec.Body.String())

	res, _ = runPart(t, app.Part(), strong.GET, "/users")
	assert.False(t, res.Matched(), "unprefixed path does not reach the mount")
}

func TestAppMountWraps(t *testing.T) {
	hits := 0
	counting := Wrap(func(next Part) Part {
		return func(ctx *httpcontext.Context) (Result, error) {
			hits++
			return next(ctx)
		}
	})

	inner := NewApp().Get("/a", OK("a"))
	app := NewApp().
		Mount("/sub", inner, counting).
		Get("/plain", OK("plain"))

	runPart(t, app.Part(), strong.GET, "/sub/a")
	assert.Equal(t, 1, hits)

	runPart(t, app.Part(), strong.GET, "/plain")
	assert.Equal(t, 1, hits, "mount wraps stay local to the mount")
}

func TestAppRoutesSnapshot(t *testing.T) {
	app := NewApp().Get("/a", OK("a")).Post("/b", OK("b"))

	routes := app.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, strong.GET, routes[0].Method)
	assert.Equal(t, "/a", routes[0].Path)
	assert.Equal(t, strong.POST, routes[1].Method)

	routes[0].Path = "/mutated"
	assert.Equal(t, "/a", app.Routes()[0].Path)
}

func TestAppEmptyDeclines(t *testing.T) {
	res, _ := runPart(t, NewApp().Part(), strong.GET, "/")
	assert.False(t, res.Matched())
}
