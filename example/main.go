package main

import (
	"fmt"
	"os"

	"github.com/gorilla/websocket"
	"github.com/kildevaeld/strong"

	"go.uber.org/zap"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
	"github.com/kildevaeld/ruter/middlewares/logger"

	system "github.com/kildevaeld/go-system"
)

func main() {
	if err := system.Run(wrappedMain); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
	}
}

func wrappedMain(kill system.KillChannel) error {

	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(log)

	app := ruter.NewApp().
		Use(logger.Logger())

	app.Get("/", func(ctx *httpcontext.Context) (ruter.Result, error) {
		if err := ctx.HTML("<h1>Hello, World</h1>"); err != nil {
			return ruter.NoMatch(), err
		}
		return ruter.Matched(ctx), nil
	})

	app.Get("/hello", ruter.Compose(
		ruter.SetMimeType(strong.MIMETextHTMLCharsetUTF8),
		ruter.OK("<h1>Hello again</h1>"),
	))

	app.Handle(ruter.Compose(ruter.GET, ruter.PathScan("/world/%s", func(greeting string) ruter.Part {
		return ruter.Compose(
			ruter.SetMimeType(strong.MIMETextHTMLCharsetUTF8),
			ruter.OK(fmt.Sprintf("<h1>Hello %s</h1>", greeting)),
		)
	})))

	app.Handle(ruter.Compose(ruter.GET, ruter.PathScan("/items/%d", func(id int64) ruter.Part {
		return ruter.JSON(map[string]int64{"id": id})
	})))

	app.Get("/error", func(ctx *httpcontext.Context) (ruter.Result, error) {
		return ruter.NoMatch(), strong.NewHTTPError(strong.StatusUnauthorized, "test")
	})

	app.WebSocket("/echo", func(ctx *httpcontext.Context, conn *websocket.Conn) error {
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return nil
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return err
			}
		}
	})

	server := ruter.NewWithOptions(app.Part(), &ruter.Options{
		Debug: true,
	})

	go func() {
		<-kill
		server.Close()
	}()

	return server.Listen(":3000")

}
