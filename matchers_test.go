package ruter

import (
	"testing"

	"github.com/kildevaeld/strong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kildevaeld/ruter/httpcontext"
)

func TestMethodMatcher(t *testing.T) {
	res, _ := runPart(t, GET, strong.GET, "/")
	assert.True(t, res.Matched())

	res, _ = runPart(t, POST, strong.GET, "/")
	assert.False(t, res.Matched())
}

func TestMethodShorthands(t *testing.T) {
	shorthands := map[string]Part{
		strong.GET:     GET,
		strong.POST:    POST,
		strong.PUT:     PUT,
		strong.PATCH:   PATCH,
		strong.DELETE:  DELETE,
		strong.HEAD:    HEAD,
		strong.OPTIONS: OPTIONS,
		strong.CONNECT: CONNECT,
		strong.TRACE:   TRACE,
	}

	for method, part := range shorthands {
		res, _ := runPart(t, part, method, "/")
		assert.True(t, res.Matched(), "method %s", method)

		other := strong.GET
		if method == strong.GET {
			other = strong.POST
		}
		res, _ = runPart(t, part, other, "/")
		assert.False(t, res.Matched(), "method %s against %s", method, other)
	}
}

func TestPathExact(t *testing.T) {
	res, _ := runPart(t, Path("/users"), strong.GET, "/users")
	assert.True(t, res.Matched())

	res, _ = runPart(t, Path("/users"), strong.GET, "/users/42")
	assert.False(t, res.Matched())
}

func TestPathPrefix(t *testing.T) {
	res, _ := runPart(t, PathPrefix("/api"), strong.GET, "/api/v1/users")
	assert.True(t, res.Matched())

	res, _ = runPart(t, PathPrefix("/api"), strong.GET, "/admin")
	assert.False(t, res.Matched())
}

func TestPathStripRewritesPath(t *testing.T) {
	res, _ := runPart(t, PathStrip("/static"), strong.GET, "/static/css/site.css")
	require.True(t, res.Matched())
	assert.Equal(t, "/css/site.css", res.Context().Request().URL.Path)
}

func TestPathStripExactPrefixBecomesRoot(t *testing.T) {
	res, _ := runPart(t, PathStrip("/static"), strong.GET, "/static")
	require.True(t, res.Matched())
	assert.Equal(t, "/", res.Context().Request().URL.Path)
}

func TestPathStripLeavesOriginalRequest(t *testing.T) {
	ctx, _ := newTestContext(strong.GET, "/static/app.js")
	defer httpcontext.Release(ctx)

	res, err := PathStrip("/static")(ctx)
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Equal(t, "/static/app.js", ctx.Request().URL.Path)
}

func TestPathRegexParams(t *testing.T) {
	p := PathRegex(`^/users/(?P<id>\d+)$`)

	res, _ := runPart(t, p, strong.GET, "/users/42")
	require.True(t, res.Matched())
	assert.Equal(t, "42", res.Context().Params().ByName("id"))

	res, _ = runPart(t, p, strong.GET, "/users/abc")
	assert.False(t, res.Matched())
}

func TestPathRegexInvalidPatternPanics(t *testing.T) {
	assert.Panics(t, func() { PathRegex("(") })
}

func TestHostIgnoresPortAndCase(t *testing.T) {
	ctx, _ := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)
	ctx.Request().Host = "Example.COM:8080"

	res, err := Host("example.com")(ctx)
	require.NoError(t, err)
	assert.True(t, res.Matched())

	res, err = Host("other.com")(ctx)
	require.NoError(t, err)
	assert.False(t, res.Matched())
}

func TestIsSecure(t *testing.T) {
	res, _ := runPart(t, Part(IsSecure), strong.GET, "/")
	assert.False(t, res.Matched(), "httptest requests are plain http")
}

func TestMinVersion(t *testing.T) {
	res, _ := runPart(t, MinVersion(1, 1), strong.GET, "/")
	assert.True(t, res.Matched())

	res, _ = runPart(t, MinVersion(2, 0), strong.GET, "/")
	assert.False(t, res.Matched())
}

func TestPathScanTypedCaptures(t *testing.T) {
	var gotName string
	var gotID int64

	p := PathScan("/users/%s/posts/%d", func(name string, id int64) Part {
		gotName = name
		gotID = id
		return Succeed
	})

	res, _ := runPart(t, p, strong.GET, "/users/alice/posts/42")
	require.True(t, res.Matched())
	assert.Equal(t, "alice", gotName)
	assert.Equal(t, int64(42), gotID)
}

func TestPathScanIntArgument(t *testing.T) {
	p := PathScan("/items/%d", func(id int) Part {
		return OK("ok")
	})

	res, _ := runPart(t, p, strong.GET, "/items/7")
	assert.True(t, res.Matched())

	res, _ = runPart(t, p, strong.GET, "/items/seven")
	assert.False(t, res.Matched(), "unparsable capture declines")
}

func TestPathScanHex(t *testing.T) {
	var got uint64
	p := PathScan("/blobs/%x", func(h uint64) Part {
		got = h
		return Succeed
	})

	res, _ := runPart(t, p, strong.GET, "/blobs/deadbeef")
	require.True(t, res.Matched())
	assert.Equal(t, uint64(0xdeadbeef), got)
}

func TestPathScanFloat(t *testing.T) {
	var got float64
	p := PathScan("/scale/%f", func(f float64) Part {
		got = f
		return Succeed
	})

	res, _ := runPart(t, p, strong.GET, "/scale/2.5")
	require.True(t, res.Matched())
	assert.Equal(t, 2.5, got)

	res, _ = runPart(t, p, strong.GET, "/scale/.")
	assert.False(t, res.Matched(), "a lone dot is not a float")
}

func TestPathScanSegmentStopsAtSlash(t *testing.T) {
	var got string
	p := PathScan("/files/%s/meta", func(name string) Part {
		got = name
		return Succeed
	})

	res, _ := runPart(t, p, strong.GET, "/files/report.txt/meta")
	require.True(t, res.Matched())
	assert.Equal(t, "report.txt", got)

	res, _ = runPart(t, p, strong.GET, "/files/a/b/meta")
	assert.False(t, res.Matched(), "%s never crosses a slash")
}

func TestPathScanInlineStopByte(t *testing.T) {
	var name, ext string
	p := PathScan("/d/%s.%s", func(n, e string) Part {
		name = n
		ext = e
		return Succeed
	})

	res, _ := runPart(t, p, strong.GET, "/d/report.txt")
	require.True(t, res.Matched())
	assert.Equal(t, "report", name)
	assert.Equal(t, "txt", ext)
}

func TestPathScanLiteralPercent(t *testing.T) {
	p := PathScan("/100%%/%d", func(n int) Part { return Succeed })

	// the escape decodes to /100%/5
	res, _ := runPart(t, p, strong.GET, "/100%25/5")
	assert.True(t, res.Matched())
}

func TestPathScanTailMustMatch(t *testing.T) {
	p := PathScan("/items/%d", func(id int64) Part { return Succeed })

	res, _ := runPart(t, p, strong.GET, "/items/42/extra")
	assert.False(t, res.Matched())
}

func TestPathScanNegativeNumbers(t *testing.T) {
	var got int64
	p := PathScan("/delta/%d", func(d int64) Part {
		got = d
		return Succeed
	})

	res, _ := runPart(t, p, strong.GET, "/delta/-12")
	require.True(t, res.Matched())
	assert.Equal(t, int64(-12), got)
}

func TestPathScanConstructionPanics(t *testing.T) {
	assert.Panics(t, func() { PathScan("/x/%", Succeed) }, "bare percent")
	assert.Panics(t, func() { PathScan("/x/%q", Succeed) }, "unknown verb")
	assert.Panics(t, func() { PathScan("/x/%d", "not a func") })
	assert.Panics(t, func() { PathScan("/x/%d", func(a, b int64) Part { return Succeed }) }, "arity mismatch")
	assert.Panics(t, func() { PathScan("/x/%d", func(s string) Part { return Succeed }) }, "type mismatch")
	assert.Panics(t, func() { PathScan("/x/%d", func(n int64) string { return "" }) }, "wrong return")
}

func TestLogAlwaysContinues(t *testing.T) {
	p := Log(nil, func(ctx *httpcontext.Context) string {
		return "saw " + ctx.Request().URL.Path
	})

	res, _ := runPart(t, p, strong.GET, "/traced")
	assert.True(t, res.Matched())
}
