package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittyphp/bitty-security/pkg/security/authn"
	"github.com/bittyphp/bitty-security/pkg/security/authz"
	"github.com/bittyphp/bitty-security/pkg/security/encoder"
	"github.com/bittyphp/bitty-security/pkg/security/provider"
	"github.com/bittyphp/bitty-security/pkg/security/session"
	"github.com/bittyphp/bitty-security/pkg/security/shield"
	"github.com/bittyphp/bitty-security/pkg/security/zone"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	users := provider.NewInMemory(map[string]provider.Record{
		"alice": {Password: "secret", Roles: []string{"ROLE_ADMIN"}},
	})
	authenticator := authn.New(users, encoder.NewCollection(encoder.NewPlain()))
	rules := []zone.PathRule{zone.MustRule("^/admin", "ROLE_ADMIN")}

	source := session.NewMemorySource(session.NewManager(64, 0))
	build := func(store session.Store) shield.Shield {
		ctx := zone.NewContext(store, "main", rules, zone.DefaultConfig())
		return shield.NewForm(ctx, authenticator, authz.NewAllowAll(), nil, shield.DefaultFormConfig())
	}

	return NewRouter(RouterOptions{Source: source, BuildShield: build})
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterLoginFormRenders(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestRouterLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	// Hitting the guarded page bounces to the login form.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Posting valid credentials redirects back to the guarded page.
	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "secret")
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	// The login rotated the session; carry the new cookie forward.
	cookies = rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The index page now knows who we are.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")

	// And the guarded page opens.
	r = httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no handler is mounted at /admin; the shield passed it through")
}

func TestRouterBadCredentials(t *testing.T) {
	router := newTestRouter(t)

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "wrong")
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterExtraRoutes(t *testing.T) {
	users := provider.NewInMemory(nil)
	authenticator := authn.New(users, encoder.NewCollection(encoder.NewPlain()))
	source := session.NewMemorySource(session.NewManager(8, 0))
	build := func(store session.Store) shield.Shield {
		ctx := zone.NewContext(store, "main", nil, zone.DefaultConfig())
		return shield.NewForm(ctx, authenticator, authz.NewAllowAll(), nil, shield.DefaultFormConfig())
	}

	router := NewRouter(RouterOptions{
		Source:      source,
		BuildShield: build,
		ExtraRoutes: func(r chi.Router) {
			r.Get("/extra", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			})
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/extra", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
