package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// AdminUser represents a row in the iam.admin_user table. The ID is the
// Cognito sub UUID, shared one-to-one with the identity provider. Rows are
// created and deleted only through the lifecycle manager, never directly.
type AdminUser struct {
	ID        string         `json:"id"`                   // Cognito sub UUID
	Email     string         `json:"email"`                // Unique, must match the Cognito email
	FullName  string         `json:"full_name"`            // Display name
	RoleID    string         `json:"role_id"`              // Referenced role name, required
	CreatedBy sql.NullString `json:"created_by,omitempty"` // Account that created this one
	LastLogin sql.NullTime   `json:"last_login,omitempty"` // Bumped on each successful authentication
	CreatedAt time.Time      `json:"created_at"`           // Creation timestamp
	UpdatedAt time.Time      `json:"updated_at"`           // Last update timestamp
}

// Activity status labels derived from the last-login timestamp.
// Never stored, always computed at read time.
const (
	ActivityActive       = "Active"
	ActivityRecent       = "Recently active"
	ActivityInactive     = "Inactive"
	ActivityLongInactive = "Long inactive"
	ActivityNever        = "Never logged in"
)

// Activity status thresholds.
const (
	activityActiveWithin   = 24 * time.Hour
	activityRecentWithin   = 7 * 24 * time.Hour
	activityInactiveWithin = 30 * 24 * time.Hour
)

// ActivityStatus classifies an account's authentication recency as of now.
func ActivityStatus(lastLogin sql.NullTime, now time.Time) string {
	if !lastLogin.Valid {
		return ActivityNever
	}
	since := now.Sub(lastLogin.Time)
	switch {
	case since <= activityActiveWithin:
		return ActivityActive
	case since <= activityRecentWithin:
		return ActivityRecent
	case since <= activityInactiveWithin:
		return ActivityInactive
	default:
		return ActivityLongInactive
	}
}

// AccountView is the directory projection row: account fields joined with
// role display fields plus the derived activity status. A dangling or
// missing role reference degrades to the "unknown" sentinel instead of
// failing the whole listing.
type AccountView struct {
	AdminUser
	RoleDisplayName string `json:"role_display_name"`
	RoleIsActive    bool   `json:"role_is_active"`
	ActivityStatus  string `json:"activity_status"`
}

// CreateAdminUserRequest represents the creation gateway payload.
type CreateAdminUserRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	FullName         string `json:"full_name" validate:"required,min=2,max=100"`
	RoleID           string `json:"role_id" validate:"required"`
	SendWelcomeEmail bool   `json:"send_welcome_email"`
}

// UpdateAdminUserRequest represents a partial profile update. Only supplied
// fields are changed.
type UpdateAdminUserRequest struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	RoleID   string `json:"role_id,omitempty"`
}

// CreatedUser is the user echo inside a successful gateway response.
type CreatedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GatewayResponse is the uniform creation gateway envelope.
type GatewayResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *CreatedUser `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// UserListResponse represents the response for listing admin users
type UserListResponse struct {
	Users []AccountView `json:"users"`
	Total int           `json:"total"`
}

// MarshalJSON serializes the projection row. Defined explicitly so the
// embedded AdminUser marshaler cannot shadow the role and activity fields.
func (v *AccountView) MarshalJSON() ([]byte, error) {
	userJSON, err := v.AdminUser.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(userJSON, &fields); err != nil {
		return nil, err
	}
	fields["role_display_name"] = v.RoleDisplayName
	fields["role_is_active"] = v.RoleIsActive
	fields["activity_status"] = v.ActivityStatus

	return json.Marshal(fields)
}

// MarshalJSON provides custom JSON serialization for AdminUser, rendering
// nullable columns as plain values or null.
func (u *AdminUser) MarshalJSON() ([]byte, error) {
	type AdminUserJSON struct {
		ID        string     `json:"id"`
		Email     string     `json:"email"`
		FullName  string     `json:"full_name"`
		RoleID    string     `json:"role_id"`
		CreatedBy *string    `json:"created_by"`
		LastLogin *time.Time `json:"last_login"`
		CreatedAt time.Time  `json:"created_at"`
		UpdatedAt time.Time  `json:"updated_at"`
	}

	userJSON := AdminUserJSON{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	if u.CreatedBy.Valid {
		userJSON.CreatedBy = &u.CreatedBy.String
	}
	if u.LastLogin.Valid {
		userJSON.LastLogin = &u.LastLogin.Time
	}

	return json.Marshal(userJSON)
}
