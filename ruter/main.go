package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	system "github.com/kildevaeld/go-system"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/auth"
	"github.com/kildevaeld/ruter/config"
	"github.com/kildevaeld/ruter/files"
	"github.com/kildevaeld/ruter/middlewares/logger"
	"github.com/kildevaeld/ruter/middlewares/metrics"
	panichandler "github.com/kildevaeld/ruter/middlewares/panic"
	"github.com/kildevaeld/ruter/middlewares/ratelimit"
)

func main() {

	if err := system.Run(wrappedMain); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
	}

}

func wrappedMain(kill system.KillChannel) error {

	godotenv.Load(".env")

	address := pflag.StringP("address", "H", "", "address")
	configPath := pflag.StringP("config", "c", "ruter.yaml", "config file")
	debug := pflag.BoolP("debug", "d", false, "debug")
	engine := pflag.StringP("engine", "e", "net", "http engine (net|fasthttp)")
	root := pflag.StringP("root", "r", "", "directory to serve")

	pflag.Parse()

	fs := osfs.New()

	cfg := config.New(fs, *configPath)
	if err := cfg.Load(); err != nil {
		return err
	}
	if *address != "" {
		cfg.Server.Address = *address
	}
	if *root != "" {
		cfg.Files.Root = *root
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := buildLogger(*debug, cfg.Logging.Level)
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(log)

	done := make(chan struct{})
	go func() {
		<-kill
		close(done)
	}()

	site := siteFromConfig(fs, cfg)

	sitePart := site.Part()
	if len(cfg.Auth.Users) > 0 {
		sitePart = auth.BasicBcrypt(cfg.Auth.Realm, cfg.Auth.Users, sitePart)
	}

	m := metrics.New()

	app := ruter.NewApp().
		Use(logger.Logger(), panichandler.New(), m.Wrap())

	if cfg.RateLimit.RPS > 0 {
		limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		app.Use(limiter.Wrap())
		go pruneLoop(done, limiter)
	}

	app.Get("/healthz", ruter.JSON(map[string]string{"status": "ok"})).
		Get("/metrics", metrics.Handler()).
		Handle(sitePart)

	server := ruter.NewWithOptions(app.Part(), &ruter.Options{
		Debug: *debug,
	})

	zap.L().Info("Started server and listening",
		zap.String("address", cfg.Server.Address),
		zap.String("engine", *engine),
		zap.String("root", cfg.Files.Root))

	if *engine == "fasthttp" {
		return listenFast(done, server, cfg.Server.Address)
	}

	go func() {
		<-done
		server.Close()
	}()

	if cfg.Server.TLS.CertFile != "" {
		return server.ListenTLS(cfg.Server.Address, cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
	}
	return server.Listen(cfg.Server.Address)
}

func buildLogger(debug bool, level string) (*zap.Logger, error) {
	if debug || level == "debug" {
		return zap.NewDevelopment()
	}

	c := zap.NewProductionConfig()
	switch level {
	case "warn":
		c.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		c.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return c.Build()
}

func siteFromConfig(fs vfs.FileSystem, cfg *config.Config) *files.Files {
	opts := []files.Option{
		files.WithRoot(cfg.Files.Root),
		files.WithIndex(cfg.Files.Index),
	}
	if cfg.Files.Browse {
		opts = append(opts, files.WithBrowsing())
	}
	if cfg.Files.Compression {
		opts = append(opts, files.WithCompression())
	}
	if cfg.Files.DefaultType != "" {
		opts = append(opts, files.WithDefaultType(cfg.Files.DefaultType))
	}
	if len(cfg.Files.MimeTypes) > 0 {
		types := make(map[string]files.MimeType, len(cfg.Files.MimeTypes))
		for ext, entry := range cfg.Files.MimeTypes {
			types[ext] = files.MimeType{
				Name:         entry.Name,
				Compressible: entry.Compressible,
			}
		}
		opts = append(opts, files.WithMimeTypes(types))
	}
	return files.New(fs, opts...)
}

func pruneLoop(done chan struct{}, limiter *ratelimit.Limiter) {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			limiter.Prune(10 * time.Minute)
		}
	}
}

func listenFast(done chan struct{}, server *ruter.Server, addr string) error {
	fast := &fasthttp.Server{
		Handler: fasthttpadaptor.NewFastHTTPHandler(server),
		Name:    "ruter",
	}

	go func() {
		<-done
		fast.Shutdown()
	}()

	return fast.ListenAndServe(addr)
}
