package cache

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/kildevaeld/strong"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
	"github.com/kildevaeld/ruter/status"
)

type Etag struct {
	Weak bool
}

// NewEtag tags in memory response bodies with an entity tag derived from
// their content and answers If-None-Match revalidations with a 304.
// Streamed bodies pass through untagged.
func NewEtag(options *Etag) ruter.Wrap {
	if options == nil {
		options = &Etag{
			Weak: false,
		}
	}

	return func(next ruter.Part) ruter.Part {
		return func(ctx *httpcontext.Context) (ruter.Result, error) {
			res, err := next(ctx)
			if err != nil || !res.Matched() {
				return res, err
			}

			rctx := res.Context()
			if !(strong.IsSuccess(rctx.StatusCode()) || rctx.StatusCode() == 0) {
				return res, nil
			}

			body, ok := rctx.Body().(interface{ Bytes() []byte })
			if !ok {
				return res, nil
			}

			bs := body.Bytes()
			sum := fnv.New64a()
			sum.Write(bs)

			tag := fmt.Sprintf("\"%x-%x\"", len(bs), sum.Sum64())
			if options.Weak {
				tag = "W/" + tag
			}

			rctx.Header().Set("ETag", tag)

			if inm := rctx.Request().Header.Get("If-None-Match"); inm != "" && tagMatch(inm, tag) {
				rctx.SetStatusCode(status.NotModified.Code())
				rctx.SetBody(nil)
			}

			return res, nil
		}
	}
}

func tagMatch(header, tag string) bool {
	want := strings.TrimPrefix(tag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}
