package ruter

import (
	"net/http"

	"github.com/kildevaeld/strong"

	"github.com/kildevaeld/ruter/httpcontext"
	"github.com/kildevaeld/ruter/status"
)

// Respond stages the status and body on the context and claims the request.
// A nil body stages the status alone. Bodies on statuses that must not
// carry one are dropped at finalization, not here.
func Respond(s status.Status, body []byte) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		ctx.SetStatusCode(s.Code())
		if body != nil {
			if err := ctx.Raw(body); err != nil {
				return NoMatch(), err
			}
		}
		return Matched(ctx), nil
	}
}

// RespondText stages a text/plain response.
func RespondText(s status.Status, text string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		ctx.SetStatusCode(s.Code())
		if err := ctx.Text(text); err != nil {
			return NoMatch(), err
		}
		return Matched(ctx), nil
	}
}

// SetHeader stages a response header and continues.
func SetHeader(key, value string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		ctx.SetHeader(key, value)
		return Matched(ctx), nil
	}
}

// SetMimeType stages the response content type and continues.
func SetMimeType(mime string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		ctx.SetContentType(mime)
		return Matched(ctx), nil
	}
}

// SetCookie stages a cookie and continues. Staging a cookie with a name
// staged earlier replaces it.
func SetCookie(cookie *http.Cookie) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		ctx.SetCookie(cookie)
		return Matched(ctx), nil
	}
}

// UnsetCookie stages an expiry for the named cookie and continues.
func UnsetCookie(name string) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		ctx.UnsetCookie(name)
		return Matched(ctx), nil
	}
}

// JSON stages v encoded as JSON with a 200 status. Encoding failures are
// genuine errors, not declines.
func JSON(v interface{}) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		if err := ctx.JSON(v); err != nil {
			return NoMatch(), err
		}
		ctx.SetStatusCode(strong.StatusOK)
		return Matched(ctx), nil
	}
}

// Msgpack stages v encoded as msgpack with a 200 status.
func Msgpack(v interface{}) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		if err := ctx.Encode(strong.MIMEApplicationMsgpack, v); err != nil {
			return NoMatch(), err
		}
		ctx.SetStatusCode(strong.StatusOK)
		return Matched(ctx), nil
	}
}
