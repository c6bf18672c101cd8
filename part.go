// Package ruter is a combinator based HTTP router. Handlers, called parts,
// either claim a request and stage a response on the context or decline it
// so the next candidate can run. Nothing is written to the wire until the
// server finalizes the winning context.
package ruter

import (
	"github.com/kildevaeld/ruter/httpcontext"
)

// Part inspects a request context and either claims it, returning a matched
// result carrying the context to continue with, or declines it with a no
// match result. The error return is reserved for genuine failures and never
// used to signal that a part simply did not match.
type Part func(ctx *httpcontext.Context) (Result, error)

// Result is the outcome of running a part: either no match, or matched
// together with the context the rest of the pipeline should see.
type Result struct {
	ctx     *httpcontext.Context
	matched bool
}

// Matched wraps ctx in a successful result.
func Matched(ctx *httpcontext.Context) Result {
	return Result{ctx: ctx, matched: true}
}

// NoMatch is the declining result. It carries no context.
func NoMatch() Result {
	return Result{}
}

func (r Result) Matched() bool {
	return r.matched
}

// Context returns the context carried by a matched result, nil otherwise.
func (r Result) Context() *httpcontext.Context {
	return r.ctx
}
