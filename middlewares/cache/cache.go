// Package cache stages client caching headers on successful responses.
package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/kildevaeld/strong"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
)

type CacheControl struct {
	MaxAge  int
	Private bool
	Debug   bool
}

func NewCacheControl(options *CacheControl) ruter.Wrap {
	if options == nil {
		options = &CacheControl{
			MaxAge:  7 * 24 * 60 * 60,
			Private: false,
			Debug:   false,
		}
	}
	maxAge := options.MaxAge
	if options.Debug {
		maxAge = 1
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

			cacheCtrl := rctx.Request().Header.Get(strong.HeaderCacheControl)
			if cacheCtrl != "" && strings.ToLower(cacheCtrl) == "no-cache" {
				return res, nil
			}

			scope := "public"
			if options.Private {
				scope = "private"
			}

			rctx.Header().Set(strong.HeaderCacheControl, fmt.Sprintf(scope+", max-age=%d", maxAge))

			now := time.Now().Add(time.Duration(maxAge) * time.Second)

			rctx.Header().Set("expires", now.UTC().Format(time.RFC1123))

			return res, nil
		}
	}
}
