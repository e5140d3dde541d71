package authz

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/bittyphp/bitty-security/pkg/security"
)

//go:embed model.conf
var casbinModelContent string

// Casbin authorizes against a Casbin enforcer. The embedded model matches a
// (subject, role) request against p rules, following g groupings, so a deny
// simply means no policy grants any of the required roles to the user.
type Casbin struct {
	enforcer casbin.IEnforcer
}

// NewCasbin wraps an already-initialized enforcer.
func NewCasbin(enforcer casbin.IEnforcer) *Casbin {
	return &Casbin{enforcer: enforcer}
}

// NewEnforcer builds a synced enforcer from the embedded model. When a policy
// file path is given its rules are loaded through the Casbin file adapter;
// otherwise the enforcer starts empty and rules are added through its API.
func NewEnforcer(policyPath string) (casbin.IEnforcer, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	var enforcer casbin.IEnforcer
	if policyPath != "" {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	return enforcer, nil
}

// Authorize grants when the enforcer allows the user any of the required
// roles. Enforcer faults and exhausted role lists surface as
// AuthorizationError so shields raise instead of silently passing.
func (a *Casbin) Authorize(_ context.Context, user *security.User, roles []string) (bool, error) {
	for _, role := range roles {
		ok, err := a.enforcer.Enforce(user.Username, role)
		if err != nil {
			return false, security.NewAuthorizationError("authorize %q: %v", user.Username, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, security.NewAuthorizationError("user %q lacks required roles", user.Username)
}
