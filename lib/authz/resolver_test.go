package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Resolve_SuperAdminOverlay(t *testing.T) {
	//Arrange
	stored := map[string]bool{
		"can_manage_super_admins": false, // misconfigured row
		"can_export_reports":      true,
	}

	//Act
	grant := Resolve(RoleSuperAdmin, stored)

	//Assert
	assert.True(t, grant.Has(PermManageSuperAdmins), "overlay must win over stored false")
	assert.True(t, grant.Has(PermManageAdmins))
	assert.True(t, grant.Has(PermManageUsers))
	assert.True(t, grant.Has(PermManageRoles))
	assert.True(t, grant.Has(PermViewAuditLog))
	assert.True(t, grant.Has("can_export_reports"), "stored keys outside the overlay survive")
}

func Test_Resolve_AdminOverlay(t *testing.T) {
	//Arrange
	stored := map[string]bool{
		"can_manage_super_admins": true, // misconfigured row
	}

	//Act
	grant := Resolve(RoleAdmin, stored)

	//Assert
	assert.False(t, grant.Has(PermManageSuperAdmins), "mid tier can never manage top tier")
	assert.True(t, grant.Has(PermManageAdmins))
	assert.True(t, grant.Has(PermManageUsers))
}

func Test_Resolve_UnknownRoleFailsClosed(t *testing.T) {
	//Arrange
	stored := map[string]bool{
		"can_manage_users": true,
		"*":                true,
	}

	//Act
	grant := Resolve("", stored)

	//Assert
	assert.False(t, grant.Has(PermManageSuperAdmins))
	assert.False(t, grant.Has(PermManageAdmins))
	assert.False(t, grant.Has(PermManageUsers), "stored flag must not override the read-only overlay")
}

func Test_Resolve_DoesNotMutateStoredMap(t *testing.T) {
	//Arrange
	stored := map[string]bool{"can_view_audit_log": false}

	//Act
	Resolve(RoleSuperAdmin, stored)

	//Assert
	assert.False(t, stored["can_view_audit_log"], "the role row's map must stay untouched")
}

func Test_Has_WildcardPrecedence(t *testing.T) {
	//Arrange
	grant := Grant{
		Wildcard:             true,
		"can_export_reports": false,
	}

	//Act & Assert
	assert.False(t, grant.Has("can_export_reports"), "explicit false beats the wildcard")
	assert.True(t, grant.Has("can_view_dashboards"), "wildcard covers keys without an explicit value")
	assert.False(t, Grant{}.Has("anything"), "empty grant denies everything")
}

func Test_CanManage(t *testing.T) {
	tests := []struct {
		name       string
		actorRole  string
		targetRole string
		isSelf     bool
		want       bool
	}{
		{"super admin manages super admin", RoleSuperAdmin, RoleSuperAdmin, false, true},
		{"super admin manages admin", RoleSuperAdmin, RoleAdmin, false, true},
		{"super admin manages viewer", RoleSuperAdmin, "viewer", false, true},
		{"admin manages admin", RoleAdmin, RoleAdmin, false, true},
		{"admin manages viewer", RoleAdmin, "viewer", false, true},
		{"admin cannot manage super admin", RoleAdmin, RoleSuperAdmin, false, false},
		{"admin cannot manage super admin even as self", RoleAdmin, RoleSuperAdmin, true, false},
		{"viewer manages self", "viewer", "viewer", true, true},
		{"viewer cannot manage others", "viewer", "viewer", false, false},
		{"unknown role manages self only", "", "viewer", true, true},
		{"unknown role cannot manage others", "", "viewer", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManage(tt.actorRole, tt.targetRole, tt.isSelf))
		})
	}
}

func Test_CanAssignRole(t *testing.T) {
	tests := []struct {
		name      string
		actorRole string
		newRole   string
		want      bool
	}{
		{"super admin assigns super admin", RoleSuperAdmin, RoleSuperAdmin, true},
		{"super admin assigns viewer", RoleSuperAdmin, "viewer", true},
		{"admin assigns admin", RoleAdmin, RoleAdmin, true},
		{"admin assigns viewer", RoleAdmin, "viewer", true},
		{"admin cannot assign super admin", RoleAdmin, RoleSuperAdmin, false},
		{"viewer cannot assign anything", "viewer", "viewer", false},
		{"unknown role cannot assign anything", "", "viewer", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAssignRole(tt.actorRole, tt.newRole))
		})
	}
}
