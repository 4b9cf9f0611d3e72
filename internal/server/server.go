// package server contains the local HTTP listener used to complete the operator login flow
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// LoggingMiddleware logs every request at debug level with its status and duration.
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("callback request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// CallbackServer is a short-lived HTTP server bound to the host of a redirect URI.
type CallbackServer struct {
	srv      *http.Server
	listener net.Listener
	errs     chan error
}

// ListenRedirect binds to the host:port of redirectURI.
//
// Only loopback http redirect URIs are accepted.
func ListenRedirect(redirectURI string, handler http.Handler) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect uri: %w", err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect uri must use http, got %q", u.Scheme)
	}
	if ip := net.ParseIP(u.Hostname()); u.Hostname() != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return nil, fmt.Errorf("redirect uri must point at a loopback address, got %q", u.Hostname())
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "80")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return &CallbackServer{
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		listener: listener,
		errs:     make(chan error, 1),
	}, nil
}

// Addr returns the bound address.
func (c *CallbackServer) Addr() string { return c.listener.Addr().String() }

// Serve starts serving in the background.
func (c *CallbackServer) Serve() {
	go func() {
		if err := c.srv.Serve(c.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.errs <- err
		}
	}()
}

// Errors receives a serve failure, if any.
func (c *CallbackServer) Errors() <-chan error { return c.errs }

// Shutdown gracefully stops the server.
func (c *CallbackServer) Shutdown(ctx context.Context) error {
	return c.srv.Shutdown(ctx)
}
