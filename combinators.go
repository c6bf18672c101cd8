package ruter

import (
	"net/http"

	"github.com/kildevaeld/ruter/httpcontext"
)

// Succeed claims every request without touching the context.
func Succeed(ctx *httpcontext.Context) (Result, error) {
	return Matched(ctx), nil
}

// Fail declines every request.
func Fail(ctx *httpcontext.Context) (Result, error) {
	return NoMatch(), nil
}

// Never declines regardless of its input. It keeps the call site shape of a
// result producing expression while permanently disabling the branch.
func Never[T any](T) Result {
	return NoMatch()
}

// Bind runs f against the context carried by r. A no match result short
// circuits without running f.
func Bind(f Part, r Result) (Result, error) {
	if !r.Matched() {
		return NoMatch(), nil
	}
	return f(r.Context())
}

// Delay defers building a part until a request arrives. Use it to break
// definition cycles in recursive routes.
func Delay(f func() Part) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		return f()(ctx)
	}
}

// Compose chains parts left to right. Each part receives the context
// produced by the previous one; the first decline or error stops the chain.
func Compose(parts ...Part) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		res := Matched(ctx)
		var err error
		for _, part := range parts {
			res, err = Bind(part, res)
			if err != nil {
				return NoMatch(), err
			}
			if !res.Matched() {
				return NoMatch(), nil
			}
		}
		return res, nil
	}
}

// Choose tries parts in order against the same context and returns the
// first match. Later candidates never run once one has claimed the request.
// Errors abort the scan instead of falling through.
func Choose(parts ...Part) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		for _, part := range parts {
			res, err := part(ctx)
			if err != nil {
				return NoMatch(), err
			}
			if res.Matched() {
				return res, nil
			}
		}
		return NoMatch(), nil
	}
}

// ApplyToSelf feeds a value to a function twice, f(a)(a). It is the
// building block behind FromContext and Request.
func ApplyToSelf[A, B any](f func(A) func(A) B) func(A) B {
	return func(a A) B {
		return f(a)(a)
	}
}

// FromContext builds a part from the live context and runs it against that
// same context, giving the builder access to request state.
func FromContext(f func(*httpcontext.Context) Part) Part {
	return func(ctx *httpcontext.Context) (Result, error) {
		return f(ctx)(ctx)
	}
}

// Request is FromContext narrowed to the request.
func Request(f func(*http.Request) Part) Part {
	return FromContext(func(ctx *httpcontext.Context) Part {
		return f(ctx.Request())
	})
}

// Const always yields v, ignoring its argument.
func Const[T, U any](v T) func(U) T {
	return func(U) T {
		return v
	}
}

// Cond selects f(*item) when item is present and otherwise when it is nil.
// The choice is made once, when the part is built.
func Cond[T any](item *T, f func(T) Part, otherwise Part) Part {
	if item != nil {
		return f(*item)
	}
	return otherwise
}
