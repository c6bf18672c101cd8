package ruter

import (
	"net/http"
	"testing"

	"github.com/kildevaeld/strong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack"

	"github.com/kildevaeld/ruter/httpcontext"
	"github.com/kildevaeld/ruter/status"
)

func TestRespondWithBody(t *testing.T) {
	ctx, rec := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)

	res, err := Respond(status.OK, []byte("payload"))(ctx)
	require.NoError(t, err)
	require.True(t, res.Matched())

	finalize(t, res.Context())
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "payload", rec.Body.String())
	assert.Empty(t, rec.Header().Get(strong.HeaderContentType), "Respond never picks a content type")
}

func TestRespondStatusOnly(t *testing.T) {
	ctx, rec := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)

	res, err := Respond(status.Accepted, nil)(ctx)
	require.NoError(t, err)
	require.True(t, res.Matched())

	finalize(t, res.Context())
	assert.Equal(t, 202, rec.Code)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestRespondTextSetsPlainText(t *testing.T) {
	ctx, rec := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)

	res, err := RespondText(status.OK, "hello")(ctx)
	require.NoError(t, err)
	require.True(t, res.Matched())

	finalize(t, res.Context())
	assert.Equal(t, strong.MIMETextPlain, rec.Header().Get(strong.HeaderContentType))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestJSONPart(t *testing.T) {
	ctx, rec := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)

	res, err := JSON(map[string]int{"n": 7})(ctx)
	require.NoError(t, err)
	require.True(t, res.Matched())

	finalize(t, res.Context())
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"n":7}`, rec.Body.String())
}

func TestJSONEncodingFailureIsError(t *testing.T) {
	ctx, _ := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)

	_, err := JSON(make(chan int))(ctx)
	assert.Error(t, err)
}

func TestMsgpackPart(t *testing.T) {
	ctx, rec := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)

	res, err := Msgpack(map[string]string{"k": "v"})(ctx)
	require.NoError(t, err)
	require.True(t, res.Matched())

	finalize(t, res.Context())
	assert.Equal(t, strong.MIMEApplicationMsgpack, rec.Header().Get(strong.HeaderContentType))

	var decoded map[string]string
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "v", decoded["k"])
}

func TestSetHeaderAndMimeCompose(t *testing.T) {
	p := Compose(
		SetHeader("X-Custom", "yes"),
		SetMimeType(strong.MIMEApplicationJSON),
		OK(`{"ok":true}`),
	)

	ctx, rec := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)

	res, err := p(ctx)
	require.NoError(t, err)
	require.True(t, res.Matched())

	finalize(t, res.Context())
	assert.Equal(t, "yes", rec.Header().Get("X-Custom"))
	assert.Equal(t, strong.MIMEApplicationJSON, rec.Header().Get(strong.HeaderContentType))
}

func TestCookieParts(t *testing.T) {
	p := Compose(
		SetCookie(&http.Cookie{Name: "a", Value: "1"}),
		UnsetCookie("b"),
		OK("done"),
	)

	ctx, rec := newTestContext(strong.GET, "/")
	defer httpcontext.Release(ctx)

	res, err := p(ctx)
	require.NoError(t, err)
	require.True(t, res.Matched())

	finalize(t, res.Context())
	lines := rec.Header().Values(strong.HeaderSetCookie)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "a=1")
	assert.Contains(t, lines[1], "Max-Age=0")
}
