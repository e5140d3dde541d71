package server

import (
	"log"

	"github.com/bittyphp/bitty-security/pkg/security"
)

// LogSink logs security events. It is the default event sink for the server;
// applications embedding the engine can supply their own.
type LogSink struct {
	// Debug also logs success and start events, not just failures.
	Debug bool
}

// NewLogSink builds a log-backed event sink.
func NewLogSink(debug bool) *LogSink {
	return &LogSink{Debug: debug}
}

// Trigger logs the event. Failure and logout events always log; start and
// success events log only in debug mode.
func (s *LogSink) Trigger(event string, target any, params map[string]any) {
	switch event {
	case security.EventAuthenticationFailure, security.EventAuthorizationFailure, security.EventLogout:
	default:
		if !s.Debug {
			return
		}
	}

	if user, ok := target.(*security.User); ok && user != nil {
		log.Printf("event %s user=%s params=%v", event, user.Username, params)
		return
	}
	log.Printf("event %s params=%v", event, params)
}
