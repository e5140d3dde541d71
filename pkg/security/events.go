package security

// Event names fired around every authentication and authorization attempt,
// plus the logout notification. Start always precedes the call; exactly one
// of success or failure follows it.
const (
	EventAuthenticationStart   = "security.authentication.start"
	EventAuthenticationSuccess = "security.authentication.success"
	EventAuthenticationFailure = "security.authentication.failure"
	EventAuthorizationStart    = "security.authorization.start"
	EventAuthorizationSuccess  = "security.authorization.success"
	EventAuthorizationFailure  = "security.authorization.failure"
	EventLogout                = "security.logout"
)

// Sink receives engine events, typically for audit logging. Implementations
// must not block; the engine ignores anything a sink does.
type Sink interface {
	Trigger(event string, target any, params map[string]any)
}

// Emit fires an event on the sink, tolerating the sink's total absence.
func Emit(sink Sink, event string, target any, params map[string]any) {
	if sink == nil {
		return
	}
	sink.Trigger(event, target, params)
}
