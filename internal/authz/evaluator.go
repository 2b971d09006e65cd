// Package authz decides whether a principal's role set entitles it to a
// requested permission. Evaluation is deterministic, side-effect free, and
// performs no I/O: the permission catalog is compiled into an in-memory
// Casbin enforcer once at startup and only read afterwards.
package authz

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/lumerapay/payadmin/internal/catalog"

	_ "embed"
)

//go:embed model.conf
var authzModelContent string

// Evaluator answers permission checks against the catalog's role→permission
// tables. Roles that are not legal for the principal's user type are
// silently excluded from every check (fail-closed), matching the session
// validation invariant.
type Evaluator struct {
	catalog  *catalog.Catalog
	enforcer casbin.IEnforcer
}

// NewEvaluator compiles the catalog into a read-only enforcer. Permission
// wildcards in the catalog (e.g. "disbursements.*") match via keyMatch, so
// a role granting "disbursements.*" holds "disbursements.approve".
func NewEvaluator(cat *catalog.Catalog) (*Evaluator, error) {
	m, err := model.NewModelFromString(authzModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse authz model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create authz enforcer: %w", err)
	}

	for _, role := range cat.Roles() {
		for _, perm := range cat.RolePermissions(role) {
			if _, err := enforcer.AddPolicy(role, perm); err != nil {
				return nil, fmt.Errorf("add policy %s→%s: %w", role, perm, err)
			}
		}
	}

	return &Evaluator{catalog: cat, enforcer: enforcer}, nil
}

// HasPermission reports whether at least one role in roles grants permission.
// When userType is non-empty, only roles on that user type's allow-list are
// considered; roles outside it are dropped, not errored.
func (e *Evaluator) HasPermission(roles []string, permission string, userType string) bool {
	if permission == "" {
		return false
	}
	for _, role := range e.catalog.FilterRoles(userType, roles) {
		allowed, err := e.enforcer.Enforce(role, permission)
		if err != nil {
			// Enforcement errors are treated as a deny for this role.
			continue
		}
		if allowed {
			return true
		}
	}
	return false
}

// HasAny reports whether any of the listed permissions is granted (OR).
func (e *Evaluator) HasAny(roles []string, permissions []string, userType string) bool {
	for _, perm := range permissions {
		if e.HasPermission(roles, perm, userType) {
			return true
		}
	}
	return false
}

// HasAll reports whether every listed permission is granted (AND).
// An empty permission list is vacuously true; callers gating actions must
// treat an empty requirement as a configuration error upstream rather than
// relying on this to mean "always allowed".
func (e *Evaluator) HasAll(roles []string, permissions []string, userType string) bool {
	for _, perm := range permissions {
		if !e.HasPermission(roles, perm, userType) {
			return false
		}
	}
	return true
}

// Catalog exposes the underlying catalog for callers that need the raw
// role/user-type tables (e.g. the catalog inspection endpoint).
func (e *Evaluator) Catalog() *catalog.Catalog {
	return e.catalog
}
