package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kildevaeld/strong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
)

func run(t *testing.T, p ruter.Part, req *http.Request) (ruter.Result, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	ctx := httpcontext.Acquire(rec, req)
	t.Cleanup(func() { httpcontext.Release(ctx) })

	res, err := p(ctx)
	require.NoError(t, err)
	if res.Matched() {
		require.NoError(t, res.Context().Finalize())
	}
	return res, rec
}

func TestSimpleRequestWildcard(t *testing.T) {
	wrapped := CORS()(ruter.OK("data"))

	res, rec := run(t, wrapped, httptest.NewRequest(strong.GET, "/", nil))
	require.True(t, res.Matched())
	assert.Equal(t, "*", rec.Header().Get(strong.HeaderAccessControlAllowOrigin))
	assert.Equal(t, strong.HeaderOrigin, rec.Header().Get(strong.HeaderVary))
	assert.Equal(t, "data", rec.Body.String())
}

func TestSimpleRequestEchoesOrigin(t *testing.T) {
	wrapped := CORS()(ruter.OK("data"))

	req := httptest.NewRequest(strong.GET, "/", nil)
	req.Header.Set(strong.HeaderOrigin, "https://app.example.com")

	_, rec := run(t, wrapped, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get(strong.HeaderAccessControlAllowOrigin))
}

func TestConfiguredOriginsWin(t *testing.T) {
	wrapped := CORSWithConfig(CORSConfig{
		AllowOrigins: []string{"https://trusted.example.com"},
	})(ruter.OK("data"))

	req := httptest.NewRequest(strong.GET, "/", nil)
	req.Header.Set(strong.HeaderOrigin, "https://evil.example.com")

	_, rec := run(t, wrapped, req)
	assert.Equal(t, "https://trusted.example.com", rec.Header().Get(strong.HeaderAccessControlAllowOrigin))
}

func TestPreflightAnswers204(t *testing.T) {
	wrapped := CORS()(ruter.OK("never reached"))

	req := httptest.NewRequest(strong.OPTIONS, "/", nil)
	req.Header.Set(strong.HeaderOrigin, "https://app.example.com")
	req.Header.Set(strong.HeaderAccessControlRequestMethod, strong.POST)

	res, rec := run(t, wrapped, req)
	require.True(t, res.Matched())
	assert.Equal(t, 204, rec.Code)
	assert.Equal(t, 0, rec.Body.Len())
	assert.Contains(t, rec.Header().Get(strong.HeaderAccessControlAllowMethods), strong.POST)
	assert.NotContains(t, rec.Body.String(), "never reached")
}

func TestPreflightEchoesRequestedHeaders(t *testing.T) {
	wrapped := CORS()(ruter.OK("x"))

	req := httptest.NewRequest(strong.OPTIONS, "/", nil)
	req.Header.Set(strong.HeaderOrigin, "https://app.example.com")
	req.Header.Set(strong.HeaderAccessControlRequestHeaders, "X-Custom, Content-Type")

	_, rec := run(t, wrapped, req)
	assert.Equal(t, "X-Custom, Content-Type", rec.Header().Get(strong.HeaderAccessControlAllowHeaders))
}

func TestPreflightMaxAgeAndCredentials(t *testing.T) {
	wrapped := CORSWithConfig(CORSConfig{
		AllowCredentials: true,
		MaxAge:           600,
	})(ruter.OK("x"))

	req := httptest.NewRequest(strong.OPTIONS, "/", nil)
	req.Header.Set(strong.HeaderOrigin, "https://app.example.com")

	_, rec := run(t, wrapped, req)
	assert.Equal(t, "600", rec.Header().Get(strong.HeaderAccessControlMaxAge))
	assert.Equal(t, "true", rec.Header().Get(strong.HeaderAccessControlAllowCredentials))
}

func TestOriginNotLeakedAcrossRequests(t *testing.T) {
	wrapped := CORS()(ruter.OK("data"))

	req := httptest.NewRequest(strong.GET, "/", nil)
	req.Header.Set(strong.HeaderOrigin, "https://first.example.com")
	run(t, wrapped, req)

	_, rec := run(t, wrapped, httptest.NewRequest(strong.GET, "/", nil))
	assert.Equal(t, "*", rec.Header().Get(strong.HeaderAccessControlAllowOrigin),
		"a previous request's origin must not stick")
}
