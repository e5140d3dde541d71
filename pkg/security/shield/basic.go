package shield

import (
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/bittyphp/bitty-security/pkg/security/authn"
	"github.com/bittyphp/bitty-security/pkg/security/authz"
	"github.com/bittyphp/bitty-security/pkg/security/zone"
)

// BasicConfig carries the HTTP Basic shield's settings.
type BasicConfig struct {
	// Realm is announced in the WWW-Authenticate challenge.
	Realm string `mapstructure:"realm"`
}

// DefaultBasicConfig returns the standard Basic shield settings.
func DefaultBasicConfig() BasicConfig {
	return BasicConfig{Realm: "Secured Area"}
}

// BasicConfigFromMap overlays an option map onto the default settings.
func BasicConfigFromMap(options map[string]any) (BasicConfig, error) {
	cfg := DefaultBasicConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return BasicConfig{}, fmt.Errorf("build basic config decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return BasicConfig{}, fmt.Errorf("decode basic config: %w", err)
	}
	return cfg, nil
}

// HTTPBasic guards paths with the Basic authentication scheme: a guarded
// request without a valid user gets a 401 challenge, one with credentials is
// authenticated and authorized inline.
type HTTPBasic struct {
	base
	config BasicConfig
}

// NewHTTPBasic builds a Basic shield.
func NewHTTPBasic(ctx zone.Context, authenticator *authn.Authenticator, authorizer authz.Authorizer, events security.Sink, config BasicConfig) *HTTPBasic {
	return &HTTPBasic{
		base: base{
			context:       ctx,
			authenticator: authenticator,
			authorizer:    authorizer,
			events:        events,
		},
		config: config,
	}
}

// Context returns the shield's zone context.
func (s *HTTPBasic) Context() zone.Context { return s.context }

// Handle runs the Basic state machine for one request.
func (s *HTTPBasic) Handle(r *http.Request) (*security.Response, error) {
	match := s.context.Match(r)
	if match == nil || len(match.Roles) == 0 {
		return nil, nil
	}

	user, err := s.resolveUser(r)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := s.authorize(r.Context(), user, match.Roles); err != nil {
			return nil, err
		}
		return nil, nil
	}

	header := http.Header{}
	header.Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", s.config.Realm))
	return security.NewResponse("", http.StatusUnauthorized, header), nil
}

// resolveUser prefers a still-valid session user and falls back to the
// request's Basic credentials. Missing or half-missing credentials resolve
// to no user, which triggers the challenge.
func (s *HTTPBasic) resolveUser(r *http.Request) (*security.User, error) {
	user, err := s.currentUser(r.Context())
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	username, password, ok := r.BasicAuth()
	if !ok || username == "" || password == "" {
		return nil, nil
	}

	return s.authenticate(r.Context(), username, password)
}
