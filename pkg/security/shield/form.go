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

// FormConfig carries the form shield's paths and field names.
type FormConfig struct {
	// LoginPath receives credential POSTs.
	LoginPath string `mapstructure:"login.path"`

	// LoginTarget is the post-login redirect when no referrer is stored.
	LoginTarget string `mapstructure:"login.target"`

	// UsernameField and PasswordField name the form parameters.
	UsernameField string `mapstructure:"login.username"`
	PasswordField string `mapstructure:"login.password"`

	// UseReferrer redirects back to the page that bounced the user to the
	// login form, consuming the stored target.
	UseReferrer bool `mapstructure:"login.use_referrer"`

	// LogoutPath clears the zone; LogoutTarget is where it redirects.
	LogoutPath   string `mapstructure:"logout.path"`
	LogoutTarget string `mapstructure:"logout.target"`
}

// DefaultFormConfig returns the standard form shield settings.
func DefaultFormConfig() FormConfig {
	return FormConfig{
		LoginPath:     "/login",
		LoginTarget:   "/",
		UsernameField: "username",
		PasswordField: "password",
		UseReferrer:   true,
		LogoutPath:    "/logout",
		LogoutTarget:  "/",
	}
}

// FormConfigFromMap overlays an option map onto the default settings.
func FormConfigFromMap(options map[string]any) (FormConfig, error) {
	cfg := DefaultFormConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return FormConfig{}, fmt.Errorf("build form config decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return FormConfig{}, fmt.Errorf("decode form config: %w", err)
	}
	return cfg, nil
}

// loginTargetKey stores the page a user was bounced from, consumed one-shot
// after a successful login.
const loginTargetKey = "login.target"

// Form drives the form-login flow: it handles the login and logout paths,
// bounces unauthenticated users on guarded paths to the login form, and
// authorizes authenticated ones.
type Form struct {
	base
	config FormConfig
}

// NewForm builds a form shield.
func NewForm(ctx zone.Context, authenticator *authn.Authenticator, authorizer authz.Authorizer, events security.Sink, config FormConfig) *Form {
	return &Form{
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
func (s *Form) Context() zone.Context { return s.context }

// Handle runs the form state machine for one request.
func (s *Form) Handle(r *http.Request) (*security.Response, error) {
	path := r.URL.Path

	if path == s.config.LoginPath {
		return s.handleFormLogin(r)
	}

	if path == s.config.LogoutPath {
		// Clearing is unconditional: logging out of a session that never
		// logged in is a no-op redirect, and the event still fires.
		user := security.UserFromValue(s.context.Get(zone.UserKey, nil))
		s.context.Clear()
		security.Emit(s.events, security.EventLogout, user, nil)

		return security.NewRedirect(s.config.LogoutTarget), nil
	}

	match := s.context.Match(r)
	if match == nil || len(match.Roles) == 0 {
		return nil, nil
	}

	user, err := s.currentUser(r.Context())
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Remember where the user was headed, then bounce to the login
		// form. The stored target is consumed by the next login.
		s.context.Set(loginTargetKey, path)

		return security.NewRedirect(s.config.LoginPath), nil
	}

	if err := s.authorize(r.Context(), user, match.Roles); err != nil {
		return nil, err
	}
	return nil, nil
}

// handleFormLogin processes a credential POST on the login path. Anything
// that is not a well-formed POST with both fields present passes through so
// the application can render the form itself.
func (s *Form) handleFormLogin(r *http.Request) (*security.Response, error) {
	if r.Method != http.MethodPost {
		return nil, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, nil
	}

	username := r.PostForm.Get(s.config.UsernameField)
	password := r.PostForm.Get(s.config.PasswordField)
	if username == "" || password == "" {
		return nil, nil
	}

	if _, err := s.authenticate(r.Context(), username, password); err != nil {
		return nil, err
	}

	target := s.config.LoginTarget
	if s.config.UseReferrer {
		if stored, ok := s.context.Get(loginTargetKey, target).(string); ok && stored != "" {
			target = stored
		}
		s.context.Remove(loginTargetKey)
	}

	return security.NewRedirect(target), nil
}
