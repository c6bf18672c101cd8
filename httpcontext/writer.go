package httpcontext

import (
	"fmt"
	"net/http"

	"github.com/kildevaeld/strong"
)

// writerWrapper lets a plain http.Handler run against a Context. Writes are
// collected in a buffer and staged on the context when the handler returns,
// keeping the deferred write model intact for wrapped handlers.
type writerWrapper struct {
	ctx    *Context
	writer *bufferBody
}

func (w *writerWrapper) Write(bs []byte) (int, error) {
	return w.writer.Write(bs)
}

func (w *writerWrapper) Header() http.Header {
	return w.ctx.Header()
}

func (w *writerWrapper) WriteHeader(status int) {
	w.ctx.SetStatusCode(status)
}

func (w *writerWrapper) Close() error {
	if w.writer.Len() > 0 {
		w.ctx.Header().Set(strong.HeaderContentLength, fmt.Sprintf("%d", w.writer.Len()))
		w.ctx.SetBody(w.writer)
	}
	return nil
}

func newWriterWrapper(ctx *Context) *writerWrapper {
	return &writerWrapper{
		ctx, new(bufferBody),
	}
}

// ServeHandler runs h against the context, staging whatever it writes.
func ServeHandler(ctx *Context, h http.Handler) {
	writer := newWriterWrapper(ctx)
	defer writer.Close()

	h.ServeHTTP(writer, ctx.Request())
}
