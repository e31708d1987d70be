// Package authz implements the permission resolver for the admin roster.
//
// The role model is a strict two-tier hierarchy: super_admin (top tier) and
// admin (mid tier) carry hard-coded management capabilities on top of the
// permission set stored with their role row; every other role is read-only.
// The same resolution runs in every Lambda and feeds the token customizer,
// so the client-side UI gating and the server-side enforcement can never
// drift apart. The server-side evaluation is the authoritative one.
//
// Unknown, empty, or deactivated actor roles resolve to the least privileged
// interpretation. Callers are expected to pass an empty role name when the
// actor's role row is missing or inactive.
package authz

// Distinguished role names. Role IDs double as role names in iam.role.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"

	// RoleUnknown is the sentinel used by the directory projection when an
	// account references a missing role row.
	RoleUnknown = "unknown"
)

// Wildcard grants every stored permission key.
const Wildcard = "*"

// Computed capability keys. These are overlaid onto the stored permission
// set by role name and always win over stored values for the same key.
const (
	PermManageSuperAdmins = "can_manage_super_admins"
	PermManageAdmins      = "can_manage_admins"
	PermManageUsers       = "can_manage_users"
	PermManageRoles       = "can_manage_roles"
	PermViewAuditLog      = "can_view_audit_log"
)

// Grant is the resolved permission map for one actor. It must be recomputed
// per request and never cached beyond a single permission check.
type Grant map[string]bool

// Resolve computes the permission grant for an actor role. The stored
// permission set comes from the role row; the tier overlay is derived from
// the role name and takes precedence over misconfigured stored keys.
func Resolve(roleName string, stored map[string]bool) Grant {
	grant := Grant{}
	for key, allowed := range stored {
		grant[key] = allowed
	}

	switch roleName {
	case RoleSuperAdmin:
		grant[PermManageSuperAdmins] = true
		grant[PermManageAdmins] = true
		grant[PermManageUsers] = true
		grant[PermManageRoles] = true
		grant[PermViewAuditLog] = true
	case RoleAdmin:
		grant[PermManageSuperAdmins] = false
		grant[PermManageAdmins] = true
		grant[PermManageUsers] = true
	default:
		// Read-only capability only, regardless of stored flags.
		grant[PermManageSuperAdmins] = false
		grant[PermManageAdmins] = false
		grant[PermManageUsers] = false
	}

	return grant
}

// Has reports whether the grant allows the given permission key. An explicit
// false beats the wildcard, so the tier overlay cannot be bypassed by a role
// row storing "*".
func (g Grant) Has(key string) bool {
	if allowed, ok := g[key]; ok {
		return allowed
	}
	return g[Wildcard]
}

// CanManage decides whether an actor role may manage a target with the given
// role. The role-pair check dominates the self-service exception: a mid-tier
// actor can never manage a top-tier target, self or not. Outside that, every
// account may manage itself.
func CanManage(actorRole, targetRole string, isSelf bool) bool {
	if actorRole == RoleSuperAdmin {
		return true
	}
	if actorRole == RoleAdmin {
		return targetRole != RoleSuperAdmin
	}
	return isSelf
}

// CanAssignRole decides whether an actor may assign newRole to an account
// being created or updated. There is no target account yet, so this is the
// CanManage check against the role being assigned: only a top-tier actor may
// hand out the top-tier role.
func CanAssignRole(actorRole, newRole string) bool {
	if actorRole == RoleSuperAdmin {
		return true
	}
	if actorRole == RoleAdmin {
		return newRole != RoleSuperAdmin
	}
	return false
}
