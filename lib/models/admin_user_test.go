package models

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func loginAt(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

func Test_ActivityStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		lastLogin sql.NullTime
		want      string
	}{
		{"never logged in", sql.NullTime{}, ActivityNever},
		{"one hour ago", loginAt(now.Add(-time.Hour)), ActivityActive},
		{"exactly 24 hours ago", loginAt(now.Add(-24 * time.Hour)), ActivityActive},
		{"two days ago", loginAt(now.Add(-48 * time.Hour)), ActivityRecent},
		{"exactly 7 days ago", loginAt(now.Add(-7 * 24 * time.Hour)), ActivityRecent},
		{"ten days ago", loginAt(now.Add(-10 * 24 * time.Hour)), ActivityInactive},
		{"exactly 30 days ago", loginAt(now.Add(-30 * 24 * time.Hour)), ActivityInactive},
		{"ninety days ago", loginAt(now.Add(-90 * 24 * time.Hour)), ActivityLongInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActivityStatus(tt.lastLogin, now))
		})
	}
}

func Test_AdminUser_MarshalJSON_NullableFields(t *testing.T) {
	//Arrange
	user := AdminUser{
		ID:       "11111111-2222-3333-4444-555555555555",
		Email:    "admin@example.com",
		FullName: "Test Admin",
		RoleID:   "admin",
	}

	//Act
	data, err := json.Marshal(&user)

	//Assert
	assert.NoError(t, err)
	var fields map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &fields))
	assert.Nil(t, fields["created_by"], "absent creator must render as null")
	assert.Nil(t, fields["last_login"], "never-logged-in must render as null")
	assert.Equal(t, "admin@example.com", fields["email"])
}

func Test_AccountView_MarshalJSON_IncludesProjectionFields(t *testing.T) {
	//Arrange
	lastLogin := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	view := AccountView{
		AdminUser: AdminUser{
			ID:        "11111111-2222-3333-4444-555555555555",
			Email:     "admin@example.com",
			FullName:  "Test Admin",
			RoleID:    "admin",
			LastLogin: loginAt(lastLogin),
		},
		RoleDisplayName: "Administrator",
		RoleIsActive:    true,
		ActivityStatus:  ActivityActive,
	}

	//Act
	data, err := json.Marshal(&view)

	//Assert
	assert.NoError(t, err)
	var fields map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "Administrator", fields["role_display_name"], "projection fields must not be shadowed by the embedded marshaler")
	assert.Equal(t, true, fields["role_is_active"])
	assert.Equal(t, ActivityActive, fields["activity_status"])
	assert.Equal(t, "admin", fields["role_id"])
	assert.NotNil(t, fields["last_login"])
}
