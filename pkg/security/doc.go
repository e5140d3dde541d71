// Package security provides the shared types for the bitty-security engine:
// the User value, the error taxonomy, the engine Response, and the optional
// event sink contract.
//
// The engine itself lives in the subpackages:
//
//   - encoder:  password hashing strategies and their per-user-type resolution
//   - provider: username → user record lookup
//   - authn:    credential validation and session-user reloading
//   - authz:    role-based authorization decisions
//   - session:  the raw session storage port and its implementations
//   - zone:     per-zone security contexts, their aggregation, and routing
//   - shield:   the per-request authenticate/authorize/redirect state machines
package security
