// Package server assembles the HTTP router hosting the security middleware
// and the demo pages behind it.
package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/bittyphp/bitty-security/internal/middleware"
	"github.com/bittyphp/bitty-security/pkg/security/session"
)

// RouterOptions controls the construction of the HTTP router.
// The zero value is valid; sensible defaults are applied where fields are not set.
type RouterOptions struct {
	// Source resolves request sessions; required.
	Source session.Source

	// BuildShield assembles the shield pipeline per request; required.
	BuildShield middleware.ShieldBuilder

	// LoginPath is where the login form renders; defaults to /login.
	LoginPath string

	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, the
// security middleware, and the built-in pages mounted. The router can be
// tailored via RouterOptions for CLI usage, tests, or other entrypoints.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	// Apply custom middleware passed from the caller.
	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	// Everything below runs through the security pipeline.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Security(opts.Source, opts.BuildShield))

		loginPath := opts.LoginPath
		if loginPath == "" {
			loginPath = "/login"
		}
		r.Get(loginPath, handleLoginForm)
		r.Get("/", handleIndex)

		if opts.ExtraRoutes != nil {
			opts.ExtraRoutes(r)
		}
	})

	return r
}

// NewH2CHandler wraps the router for HTTP/2 cleartext support.
func NewH2CHandler(r chi.Router) http.Handler {
	return h2c.NewHandler(r, &http2.Server{})
}

// handleLoginForm renders the login form. Credential POSTs to the same path
// never reach this handler; the form shield consumes them.
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!doctype html>
<title>Log In</title>
<h1>Log In</h1>
<form method="post">
  <label>Username <input type="text" name="username" autofocus></label>
  <label>Password <input type="password" name="password"></label>
  <button type="submit">Log In</button>
</form>
`)
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if user, ok := middleware.CurrentUser(r.Context()); ok {
		fmt.Fprintf(w, "<p>Logged in as %s. <a href=\"/logout\">Log out</a></p>\n",
			html.EscapeString(user.Username))
		return
	}
	fmt.Fprint(w, "<p>Not logged in. <a href=\"/login\">Log in</a></p>\n")
}
