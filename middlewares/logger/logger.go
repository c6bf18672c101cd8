// Package logger logs one line when a request starts and one when it
// completes, with method, status and latency.
package logger

import (
	"time"

	"github.com/kildevaeld/strong"
	"go.uber.org/zap"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
	"github.com/kildevaeld/ruter/status"
)

func Logger() ruter.Wrap {
	return LoggerWithZap(zap.L())
}

func LoggerWithZap(log *zap.Logger) ruter.Wrap {
	return func(next ruter.Part) ruter.Part {
		return func(ctx *httpcontext.Context) (ruter.Result, error) {
			start := time.Now()

			req := ctx.Request()

			entry := log.With(zap.String("request", req.URL.String()),
				zap.String("method", req.Method),
				zap.String("remote", req.RemoteAddr))

			if reqID := req.Header.Get("X-Request-Id"); reqID != "" {
				entry = entry.With(zap.String("request_id", reqID))
			}

			entry.Info("started handling request")

			res, err := next(ctx)
			if err != nil {
				entry.Info("request failed", zap.Error(err))
				return res, err
			}

			latency := time.Since(start)

			rctx := ctx
			if res.Matched() && res.Context() != nil {
				rctx = res.Context()
			}

			code := rctx.StatusCode()
			hasBody := rctx.Body() != nil
			if code == 0 {
				if hasBody {
					code = strong.StatusOK
				} else {
					code = strong.StatusNotFound
				}
			}

			text := strong.StatusText(code)
			if s, ok := status.Parse(code); ok {
				text = s.Reason()
			}

			entry.Info("completed handling request",
				zap.Int("status", code),
				zap.String("text_status", text),
				zap.Duration("took", latency),
				zap.Int64("measure#.latency", latency.Nanoseconds()))

			return res, nil
		}
	}
}
