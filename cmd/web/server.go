package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mkallio/fitplan/internal/errors"
)

const defaultTimeout = 2 * time.Second

// configureAndStartServer configures and starts the HTTP server, shutting it
// down gracefully when ctx is cancelled.
func (app *application) configureAndStartServer(ctx context.Context, addr string) error {
	idleTimeout := time.Minute
	srv := &http.Server{ //nolint:exhaustruct // defaults are fine for the rest.
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(),
		IdleTimeout:       idleTimeout,
		ReadTimeout:       defaultTimeout,
		WriteTimeout:      generationTimeout + time.Second,
		ReadHeaderTimeout: time.Second,
	}

	shutdownComplete := make(chan struct{})
	go func() {
		<-ctx.Done()
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")

		shutdownContext, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownContext); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "error shutting down server",
				errors.SlogError(errors.Wrap(err, "shutdown server")))
		}
		close(shutdownComplete)
	}()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "TCP listen", slog.String("addr", addr))
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server",
		slog.String("addr", listener.Addr().String()))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server serve")
	}
	<-shutdownComplete

	return nil
}
