package server

import (
	"fmt"
	"net/http"
)

// HealthPath answers liveness checks while the login listener is up.
const HealthPath = "/healthz"

// CallbackRouter dispatches requests that reach the redirect listener.
//
// Mounted callback routes and [HealthPath] accept GET only. Any other path
// gets a 404 page sending the operator back to the terminal. Middleware wraps
// the whole dispatch, so stray requests are logged alongside the callback.
type CallbackRouter struct {
	mux     *http.ServeMux
	handler http.Handler
}

// NewCallbackRouter builds a router with the health route registered.
//
// Middleware runs in the order given.
func NewCallbackRouter(middleware ...Middleware) *CallbackRouter {
	r := &CallbackRouter{mux: http.NewServeMux()}
	r.mux.Handle(HealthPath, getOnly(http.HandlerFunc(healthy)))

	var h http.Handler = http.HandlerFunc(r.dispatch)
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	r.handler = h
	return r
}

// Mount registers h on every path it reports through [Handler.Routes].
func (r *CallbackRouter) Mount(h Handler) {
	for _, route := range h.Routes() {
		r.mux.Handle(route, getOnly(h))
	}
}

func (r *CallbackRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *CallbackRouter) dispatch(w http.ResponseWriter, req *http.Request) {
	if _, pattern := r.mux.Handler(req); pattern == "" {
		notFound(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func notFound(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "%s is not a login callback. Finish signing in from the browser tab opened by mlcc.\n", req.URL.Path)
}
