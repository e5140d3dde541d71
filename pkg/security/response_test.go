package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedirect(t *testing.T) {
	resp := NewRedirect("/login")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Empty(t, resp.Body)
}

func TestResponseWrite(t *testing.T) {
	header := http.Header{}
	header.Set("WWW-Authenticate", `Basic realm="Secured Area"`)
	resp := NewResponse("denied", http.StatusUnauthorized, header)

	rec := httptest.NewRecorder()
	resp.Write(rec)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="Secured Area"`, rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "denied", rec.Body.String())
}

func TestNewResponseNilHeader(t *testing.T) {
	resp := NewResponse("", http.StatusOK, nil)
	assert.NotNil(t, resp.Header)
}
