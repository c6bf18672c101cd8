package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func from(addr string) *http.Request {
	req := httptest.NewRequest(strong.GET, "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestLimiterThrottlesBurst(t *testing.T) {
	wrapped := New(1, 1).Wrap()(ruter.OK("served"))

	_, rec := run(t, wrapped, from("10.0.0.1:1111"))
	assert.Equal(t, 200, rec.Code)

	_, rec = run(t, wrapped, from("10.0.0.1:1111"))
	assert.Equal(t, 429, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestLimiterKeysByClientAddress(t *testing.T) {
	wrapped := New(1, 1).Wrap()(ruter.OK("served"))

	_, rec := run(t, wrapped, from("10.0.0.1:1111"))
	assert.Equal(t, 200, rec.Code)

	_, rec = run(t, wrapped, from("10.0.0.2:2222"))
	assert.Equal(t, 200, rec.Code, "another client has its own bucket")
}

func TestLimiterIgnoresClientPort(t *testing.T) {
	wrapped := New(1, 1).Wrap()(ruter.OK("served"))

	run(t, wrapped, from("10.0.0.1:1111"))
	_, rec := run(t, wrapped, from("10.0.0.1:9999"))
	assert.Equal(t, 429, rec.Code, "same host, different port shares the bucket")
}

func TestLimiterRefills(t *testing.T) {
	wrapped := New(50, 1).Wrap()(ruter.OK("served"))

	run(t, wrapped, from("10.0.0.1:1111"))
	time.Sleep(30 * time.Millisecond)

	_, rec := run(t, wrapped, from("10.0.0.1:1111"))
	assert.Equal(t, 200, rec.Code)
}

func TestPruneDropsIdleVisitors(t *testing.T) {
	l := New(1, 1)
	wrapped := l.Wrap()(ruter.OK("served"))

	run(t, wrapped, from("10.0.0.1:1111"))
	run(t, wrapped, from("10.0.0.2:2222"))

	assert.Equal(t, 0, l.Prune(time.Minute), "fresh buckets survive")
	assert.Equal(t, 2, l.Prune(0), "zero idle age drops everything")
	assert.Equal(t, 0, l.Prune(0))
}
