package ruter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kildevaeld/strong"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kildevaeld/ruter/httpcontext"
	"github.com/kildevaeld/ruter/status"
)

type Options struct {
	Debug bool
	// HandleError runs after the builtin error response has been written.
	HandleError func(ctx *httpcontext.Context, w http.ResponseWriter, r *http.Request, err error)
}

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Server drives a part. Every request gets a pooled context, the part runs,
// and the staged response of the winning context is written out. An
// unmatched request becomes a 404, an error a 500 unless it carries its own
// status.
type Server struct {
	noCopy noCopy

	part      Part
	listening bool

	s *http.Server
	o *Options
}

func New(part Part) *Server {
	return NewWithOptions(part, nil)
}

func NewWithOptions(part Part, o *Options) *Server {
	if o == nil {
		o = &Options{}
	}
	v := &Server{
		s:    &http.Server{},
		part: part,
		o:    o,
	}

	v.s.Handler = otelhttp.NewHandler(http.HandlerFunc(v.serve), "ruter",
		otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents))

	return v
}

func (v *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v.serve(w, r)
}

func (v *Server) serve(w http.ResponseWriter, r *http.Request) {
	if v.part == nil {
		http.NotFound(w, r)
		return
	}

	ctx := httpcontext.Acquire(w, r)
	defer httpcontext.Release(ctx)

	res, err := v.part(ctx)

	if err != nil {
		if errors.Is(err, httpcontext.ErrResponseSent) || ctx.Hijacked() {
			return
		}
		v.handleError(ctx, w, r, err)
		return
	}

	if ctx.Hijacked() {
		return
	}

	final := ctx
	if res.Matched() && res.Context() != nil {
		final = res.Context()
	} else if !res.Matched() {
		final.SetStatusCode(strong.StatusNotFound)
		final.Text(status.NotFound.Message())
	}

	if err := final.Finalize(); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func (v *Server) Listen(addr string) error {
	if v.listening {
		return errors.New("Already running")
	}
	v.listening = true
	v.s.Addr = addr

	if v.o.Debug {
		zap.L().Debug("listening on", zap.String("addr", addr))
	}
	return v.s.ListenAndServe()
}

func (v *Server) ListenTLS(addr, certFile, keyFile string) error {
	if v.listening {
		return errors.New("Already running")
	}
	v.listening = true
	v.s.Addr = addr

	if v.o.Debug {
		zap.L().Debug("listening on", zap.String("addr", addr), zap.Bool("tls", true))
	}
	return v.s.ListenAndServeTLS(certFile, keyFile)
}

// Run serves until ctx is canceled, then shuts down gracefully with a five
// second drain window.
func (v *Server) Run(ctx context.Context, addr string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := v.Listen(addr)
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return v.Shutdown(sctx)
	})

	return g.Wait()
}

func (v *Server) Close() error {
	if v.s == nil {
		return nil
	}
	return v.s.Close()
}

func (v *Server) Shutdown(ctx context.Context) error {
	if v.s == nil {
		return nil
	}
	return v.s.Shutdown(ctx)
}

func (v *Server) handleError(ctx *httpcontext.Context, w http.ResponseWriter, r *http.Request, err error) {
	var redirect *httpcontext.RedirectError
	var httperr *strong.HttpError

	switch {
	case errors.As(err, &redirect):
		w.Header().Set(strong.HeaderLocation, redirect.Location())
		w.WriteHeader(redirect.StatusCode())
	case errors.As(err, &httperr):
		http.Error(w, httperr.Error(), httperr.StatusCode())
	default:
		http.Error(w, strong.StatusText(strong.StatusInternalServerError), strong.StatusInternalServerError)
	}

	if v.o.HandleError != nil {
		v.o.HandleError(ctx, w, r, err)
	}
}
