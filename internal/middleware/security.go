// Package middleware wires the security engine into net/http: it resolves
// the request's session, runs the shield pipeline, and either writes the
// engine's response or forwards the request with the current user attached
// to its context.
package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/bittyphp/bitty-security/pkg/security/session"
	"github.com/bittyphp/bitty-security/pkg/security/shield"
	"github.com/bittyphp/bitty-security/pkg/security/zone"
)

// ShieldBuilder assembles the shield pipeline for one request over the
// request's session store. Shields are stateless per request, so building
// them per request is cheap and keeps zone state request-scoped.
type ShieldBuilder func(store session.Store) shield.Shield

// Security returns the middleware enforcing the shield pipeline.
//
// Per request it:
//  1. Loads the session named by the request cookie (or starts a fresh one)
//  2. Builds the shields and runs them
//  3. Re-issues the session cookie when the session ID changed (login
//     regenerates it) and persists the session
//  4. Writes the shield response, or forwards with the current user on the
//     request context
//
// Engine errors map to generic failure responses: authentication faults to
// 401, authorization faults to 403, anything else to 500. The shields never
// render custom error pages.
func Security(source session.Source, build ShieldBuilder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var cookieID string
			if c, err := r.Cookie(session.CookieName); err == nil {
				cookieID = c.Value
			}

			store, err := source.Load(ctx, cookieID)
			if err != nil {
				log.Printf("load session for %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			sh := build(store)
			resp, shieldErr := sh.Handle(r)

			if err := source.Save(ctx, store); err != nil {
				log.Printf("save session %s: %v", store.ID(), err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if store.ID() != cookieID {
				http.SetCookie(w, &http.Cookie{
					Name:     session.CookieName,
					Value:    store.ID(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if shieldErr != nil {
				writeFailure(w, r, shieldErr)
				return
			}

			if resp != nil {
				resp.Write(w)
				return
			}

			// Request passed every shield; expose the current user to
			// downstream handlers.
			contexts := zone.NewMap(sh.Context())
			if user := contexts.GetUser(r); user != nil {
				ctx = SetUserContext(ctx, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeFailure renders the generic failure response for an engine error.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var authnErr *security.AuthenticationError
	var authzErr *security.AuthorizationError

	switch {
	case errors.As(err, &authnErr):
		log.Printf("authentication failed for %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "authentication failed", http.StatusUnauthorized)
	case errors.As(err, &authzErr):
		log.Printf("authorization failed for %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		log.Printf("security error for %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
