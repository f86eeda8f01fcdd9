package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"jiratools/internal/logging"
)

// ServeOptions controls the HTTP server lifecycle.
type ServeOptions struct {
	Addr            string
	ShutdownTimeout time.Duration
	// MaxConns caps simultaneous connections; 0 means unlimited.
	MaxConns int
}

// Serve runs handler on ln until ctx is cancelled, then shuts down gracefully
// within opts.ShutdownTimeout. A clean shutdown returns nil.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, opts ServeOptions) error {
	if opts.MaxConns > 0 {
		ln = netutil.LimitListener(ln, opts.MaxConns)
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Gateway("HTTP gateway listening on %s (max_conns=%d)", ln.Addr(), opts.MaxConns)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Gateway("HTTP gateway shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// ListenAndServe listens on opts.Addr and calls Serve.
func ListenAndServe(ctx context.Context, handler http.Handler, opts ServeOptions) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.Addr, err)
	}
	return Serve(ctx, ln, handler, opts)
}
