package data

import (
	"context"
	"database/sql"
	"fmt"
	"partyadmin/lib/apperrors"
	"partyadmin/lib/models"

	"github.com/sirupsen/logrus"
)

// RoleRepository defines the interface for the role registry. Role editing
// is an administrative operation performed at system setup; the API surface
// only reads.
type RoleRepository interface {
	// GetActiveRoles retrieves all active roles in name order, for
	// populating role selection UI. Deactivated roles are never included.
	GetActiveRoles(ctx context.Context) ([]models.Role, error)

	// GetRoleByID retrieves a specific role by its stable name, active or
	// not. Existing assignments to deactivated roles are grandfathered, so
	// lookups must still resolve them.
	GetRoleByID(ctx context.Context, roleID string) (*models.Role, error)
}

// RoleDao implements RoleRepository interface using PostgreSQL
type RoleDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// GetActiveRoles retrieves all active roles ordered by role name
func (dao *RoleDao) GetActiveRoles(ctx context.Context) ([]models.Role, error) {
	query := `
		SELECT role_id, display_name, COALESCE(description, ''), permissions, is_active, created_at, updated_at
		FROM iam.role
		WHERE is_active = TRUE
		ORDER BY role_id ASC
	`

	rows, err := dao.DB.QueryContext(ctx, query)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query roles")
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		err := rows.Scan(
			&role.RoleID,
			&role.DisplayName,
			&role.Description,
			&role.Permissions,
			&role.IsActive,
			&role.CreatedAt,
			&role.UpdatedAt,
		)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan role row")
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err = rows.Err(); err != nil {
		dao.Logger.WithError(err).Error("Error iterating role rows")
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}

	dao.Logger.WithField("count", len(roles)).Debug("Successfully retrieved active roles")

	return roles, nil
}

// GetRoleByID retrieves a specific role by its stable name
func (dao *RoleDao) GetRoleByID(ctx context.Context, roleID string) (*models.Role, error) {
	var role models.Role
	query := `
		SELECT role_id, display_name, COALESCE(description, ''), permissions, is_active, created_at, updated_at
		FROM iam.role
		WHERE role_id = $1
	`

	err := dao.DB.QueryRowContext(ctx, query, roleID).Scan(
		&role.RoleID,
		&role.DisplayName,
		&role.Description,
		&role.Permissions,
		&role.IsActive,
		&role.CreatedAt,
		&role.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		dao.Logger.WithField("role_id", roleID).Warn("Role not found")
		return nil, apperrors.NotFound("role not found")
	}

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"role_id": roleID,
			"error":   err.Error(),
		}).Error("Failed to get role")
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}
