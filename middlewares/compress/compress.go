// Package gzip compresses staged response bodies for clients that accept
// it. Compression wraps the staged body reader, so nothing is buffered and
// the deferred write model stays intact.
package gzip

import (
	"io"
	"net/http"
	"strings"

	"github.com/kildevaeld/strong"
	cgzip "github.com/klauspost/compress/gzip"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
)

// Accepts reports whether the client advertises gzip support.
func Accepts(r *http.Request) bool {
	return strings.Contains(r.Header.Get(strong.HeaderAcceptEncoding), "gzip")
}

// Reader returns a reader yielding the gzip compressed content of rc.
// Closing the returned reader stops compression and closes rc.
func Reader(rc io.ReadCloser) io.ReadCloser {
	pr, pw := io.Pipe()

	go func() {
		zw := cgzip.NewWriter(pw)
		_, err := io.Copy(zw, rc)
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
		rc.Close()
		pw.CloseWithError(err)
	}()

	return pr
}

var skipPrefixes = []string{"image/", "video/", "audio/"}

var skipTypes = map[string]bool{
	"application/zip":          true,
	"application/gzip":         true,
	"application/x-gzip":       true,
	"application/octet-stream": true,
}

func compressible(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ct == "image/svg+xml" {
		return true
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(ct, prefix) {
			return false
		}
	}
	return !skipTypes[ct]
}

type Config struct {
	// MinLength skips compression for in memory bodies smaller than this.
	// Streamed bodies of unknown size are always compressed.
	MinLength int
}

func Gzip() ruter.Wrap {
	return GzipWithConfig(Config{})
}

func GzipWithConfig(config Config) ruter.Wrap {
	return func(next ruter.Part) ruter.Part {
		return func(ctx *httpcontext.Context) (ruter.Result, error) {
			res, err := next(ctx)
			if err != nil || !res.Matched() {
				return res, err
			}

			rctx := res.Context()
			if !Accepts(rctx.Request()) {
				return res, nil
			}

			body := rctx.Body()
			if body == nil {
				return res, nil
			}

			h := rctx.Header()
			if h.Get(strong.HeaderContentEncoding) != "" {
				return res, nil
			}
			if !compressible(h.Get(strong.HeaderContentType)) {
				return res, nil
			}
			if config.MinLength > 0 {
				if b, ok := body.(interface{ Len() int }); ok && b.Len() < config.MinLength {
					return res, nil
				}
			}

			h.Del(strong.HeaderContentLength)
			h.Set(strong.HeaderContentEncoding, "gzip")
			h.Add(strong.HeaderVary, strong.HeaderAcceptEncoding)
			rctx.SwapBody(Reader(body))

			return res, nil
		}
	}
}
