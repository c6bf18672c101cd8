// Package panic converges panicking parts into plain errors so the server
// answers with a clean 500 instead of tearing down the connection.
package panic

import (
	"fmt"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
)

func New() ruter.Wrap {
	return func(next ruter.Part) ruter.Part {
		return func(ctx *httpcontext.Context) (res ruter.Result, err error) {
			defer func() {
				if e := recover(); e != nil {
					res = ruter.NoMatch()
					if errerr, ok := e.(error); ok {
						err = errerr
					} else {
						err = fmt.Errorf("%s", e)
					}
				}
			}()
			res, err = next(ctx)
			return res, err
		}
	}
}
