package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/xlexi/oauth2orize/internal/config"
)

// errPanic marks errors produced by the panic handler in run. Only these
// trigger a restart; anything else is a startup failure worth dying over.
var errPanic = errors.New("panic recovered")

func main() {
	for {
		err := run()
		if err == nil {
			break
		}
		if !shouldRestart(err) {
			log.Fatalf("Error running server: %s\n", err)
		}
		log.Printf("Restarting server: %s\n", err)
		time.Sleep(1 * time.Second)
	}
	log.Printf("Server stopped\n")
}

func shouldRestart(err error) bool {
	return errors.Is(err, errPanic)
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	app, err := newApp(c)
	if err != nil {
		return fmt.Errorf("newApp: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: app.routes()}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(httpServer *http.Server) error {
	log.Printf("Server listening on %s\n", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpServer.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("httpServer.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
