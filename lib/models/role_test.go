package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PermissionSet_Scan(t *testing.T) {
	//Arrange
	var permissions PermissionSet

	//Act
	err := permissions.Scan([]byte(`{"can_manage_users": true, "can_manage_roles": false}`))

	//Assert
	assert.NoError(t, err)
	assert.True(t, permissions["can_manage_users"])
	assert.False(t, permissions["can_manage_roles"])
}

func Test_PermissionSet_Scan_Null(t *testing.T) {
	//Arrange
	var permissions PermissionSet

	//Act
	err := permissions.Scan(nil)

	//Assert
	assert.NoError(t, err)
	assert.NotNil(t, permissions)
	assert.Empty(t, permissions)
}

func Test_PermissionSet_Scan_UnexpectedType(t *testing.T) {
	//Arrange
	var permissions PermissionSet

	//Act
	err := permissions.Scan(42)

	//Assert
	assert.Error(t, err)
}

func Test_PermissionSet_Value(t *testing.T) {
	//Arrange
	permissions := PermissionSet{"*": true}

	//Act
	value, err := permissions.Value()

	//Assert
	assert.NoError(t, err)
	assert.JSONEq(t, `{"*": true}`, string(value.([]byte)))
}

func Test_PermissionSet_Value_Nil(t *testing.T) {
	//Act
	value, err := PermissionSet(nil).Value()

	//Assert
	assert.NoError(t, err)
	assert.Equal(t, []byte("{}"), value)
}
