package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start binds the configured address and serves on it. The returned channel
// is closed on SIGINT, SIGTERM or SIGHUP, or when the server stops on its own.
func (a *App) Start() <-chan struct{} {
	l, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		slog.Error("failed to listen http server", "address", a.httpServer.Addr, "error", err)
		os.Exit(1)
	}
	slog.Info("http server listening", "address", l.Addr().String())

	served := a.Serve(l)
	terminate := make(chan struct{})

	go func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		select {
		case <-ctx.Done():
			slog.Info("termination signal received")
		case err := <-served:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server stopped unexpectedly", "error", err)
			}
		}

		if a.cancel != nil {
			a.cancel()
		}
		close(terminate)
	}()

	return terminate
}

// Serve runs the HTTP server on l. The channel yields the server's exit error.
func (a *App) Serve(l net.Listener) <-chan error {
	served := make(chan error, 1)

	go func() {
		served <- a.httpServer.Serve(l)
		close(served)
	}()

	return served
}

// Stop drains HTTP, waits for background tasks (code deliveries, consumers,
// the otp janitor) and then closes resources in registration order.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background tasks ended with errors", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
			continue
		}
		slog.DebugContext(ctx, "resource closed", "name", closer.name)
	}

	slog.InfoContext(ctx, "application stopped")
}
