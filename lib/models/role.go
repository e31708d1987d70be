package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PermissionSet is the stored permission map of a role (iam.role.permissions
// JSONB column). A "*" key grants every permission.
type PermissionSet map[string]bool

// Value implements driver.Valuer for JSONB storage.
func (p PermissionSet) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (p *PermissionSet) Scan(src interface{}) error {
	if src == nil {
		*p = PermissionSet{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected type %T for permissions column", src)
	}
	return json.Unmarshal(data, p)
}

// Role represents a role in the iam.role table. The role ID is a stable name
// ("super_admin", "admin", ...) and is immutable once referenced by any
// account. Deactivated roles stay in the table but cannot be newly assigned.
type Role struct {
	RoleID      string        `json:"role_id"`               // Stable role name, primary key
	DisplayName string        `json:"display_name"`          // Human-readable name for the UI
	Description string        `json:"description,omitempty"` // Optional role description
	Permissions PermissionSet `json:"permissions"`           // Stored permission map
	IsActive    bool          `json:"is_active"`             // Assignable to new accounts
	CreatedAt   time.Time     `json:"created_at"`            // Creation timestamp
	UpdatedAt   time.Time     `json:"updated_at"`            // Last update timestamp
}

// RoleListResponse represents the response for listing roles
type RoleListResponse struct {
	Roles []Role `json:"roles"`
	Total int    `json:"total"`
}
