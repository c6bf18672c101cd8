package ruter

import (
	"net/http"

	"github.com/kildevaeld/ruter/httpcontext"
)

// Wrap transforms a part, usually to run something before or after it.
// Wraps registered on an app apply outermost first.
type Wrap func(Part) Part

// WrapHTTP lifts a plain http.Handler into a part. The handler's output is
// staged on the context, so it takes part in deferred writing like any
// other part, and it always claims the request.
func WrapHTTP(h http.Handler) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		httpcontext.ServeHandler(ctx, h)
		return Matched(ctx), nil
	}
}

// WrapHTTPFunc lifts a handler func into a part.
func WrapHTTPFunc(f func(http.ResponseWriter, *http.Request)) Part {
	return WrapHTTP(http.HandlerFunc(f))
}
