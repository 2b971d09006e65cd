package catalog

import (
	"sort"
)

// Spec is the static configuration a Catalog is built from. It is provided
// at construction (embedded default or operator-supplied file), never
// computed, so tests can inject arbitrary tables.
type Spec struct {
	// Roles maps a role identifier to the permissions it grants.
	Roles map[string][]string `json:"roles"`
	// UserTypes maps a user type (tenant category) to the allow-list of
	// roles that are legal for principals of that type.
	UserTypes map[string][]string `json:"userTypes"`
}

// Catalog is the process-wide role→permission and userType→role lookup.
// It is built once at startup and never mutated afterwards, which makes
// unsynchronized concurrent reads safe.
type Catalog struct {
	rolePerms    map[string]map[string]struct{}
	allowedRoles map[string]map[string]struct{}
}

// New builds an immutable catalog from spec. The input maps are copied, so
// later mutation of spec does not leak into the catalog.
func New(spec Spec) *Catalog {
	c := &Catalog{
		rolePerms:    make(map[string]map[string]struct{}, len(spec.Roles)),
		allowedRoles: make(map[string]map[string]struct{}, len(spec.UserTypes)),
	}
	for role, perms := range spec.Roles {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			if perm != "" {
				set[perm] = struct{}{}
			}
		}
		c.rolePerms[role] = set
	}
	for userType, roles := range spec.UserTypes {
		set := make(map[string]struct{}, len(roles))
		for _, role := range roles {
			if role != "" {
				set[role] = struct{}{}
			}
		}
		c.allowedRoles[userType] = set
	}
	return c
}

// RolePermissions returns the permissions granted by role, sorted.
// Unknown roles resolve to an empty set, not an error (fail-closed).
func (c *Catalog) RolePermissions(role string) []string {
	return sortedKeys(c.rolePerms[role])
}

// AllowedRoles returns the roles legal for userType, sorted. Unknown or
// absent user types resolve to an empty set, which downstream validation
// degrades to "no usable roles", never to "all roles".
func (c *Catalog) AllowedRoles(userType string) []string {
	return sortedKeys(c.allowedRoles[userType])
}

// RoleAllowed reports whether role is legal for userType. An empty userType
// means the principal is not tenant-scoped and every known role is legal.
func (c *Catalog) RoleAllowed(userType, role string) bool {
	if userType == "" {
		return true
	}
	_, ok := c.allowedRoles[userType][role]
	return ok
}

// FilterRoles returns the subset of roles legal for userType, preserving
// the input order. Roles outside the allow-list are silently dropped rather
// than causing an error; the caller decides what an empty result means.
func (c *Catalog) FilterRoles(userType string, roles []string) []string {
	filtered := make([]string, 0, len(roles))
	for _, role := range roles {
		if c.RoleAllowed(userType, role) {
			filtered = append(filtered, role)
		}
	}
	return filtered
}

// Roles returns every role identifier known to the catalog, sorted.
func (c *Catalog) Roles() []string {
	keys := make([]string, 0, len(c.rolePerms))
	for role := range c.rolePerms {
		keys = append(keys, role)
	}
	sort.Strings(keys)
	return keys
}

// UserTypes returns every user type known to the catalog, sorted.
func (c *Catalog) UserTypes() []string {
	keys := make([]string, 0, len(c.allowedRoles))
	for userType := range c.allowedRoles {
		keys = append(keys, userType)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
