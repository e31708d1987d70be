// Package data provides data access layer implementations for the admin
// roster. It contains repository interfaces and their PostgreSQL
// implementations, plus the SSM parameter repository used for configuration.
//
// All repositories follow the interface pattern for better testability and
// dependency injection throughout the application.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"partyadmin/lib/apperrors"
	"partyadmin/lib/authz"
	"partyadmin/lib/models"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// AdminUserRepository defines the contract for admin account directory
// operations, including the read-optimized roster projection.
type AdminUserRepository interface {
	// ListUsers retrieves the directory projection, most recently created
	// first. A dangling role reference degrades to the "unknown" sentinel
	// rather than failing the listing.
	ListUsers(ctx context.Context) ([]models.AccountView, error)

	// GetUserByID retrieves a single projection row by account ID.
	GetUserByID(ctx context.Context, id string) (*models.AccountView, error)

	// GetUserByEmail retrieves an account by email, used as the duplicate
	// pre-check before identity creation.
	GetUserByEmail(ctx context.Context, email string) (*models.AdminUser, error)

	// CreateUser inserts a directory record. A duplicate email surfaces as
	// a conflict error.
	CreateUser(ctx context.Context, user *models.AdminUser) error

	// UpdateUser applies a partial update; nil-valued fields are left
	// unchanged.
	UpdateUser(ctx context.Context, id string, email, fullName, roleID sql.NullString) error

	// DeleteUser removes a directory record. Called by the lifecycle
	// manager as the cascade consequence of identity deletion, never as an
	// independent first step.
	DeleteUser(ctx context.Context, id string) error

	// TouchLastLogin bumps the last-login timestamp after a successful
	// authentication.
	TouchLastLogin(ctx context.Context, id string) error
}

// AdminUserDao implements AdminUserRepository using PostgreSQL
type AdminUserDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// projectionColumns joins account rows with role display fields. LEFT JOIN
// plus COALESCE keeps a row with a dangling role reference in the result
// instead of dropping or failing it.
const projectionColumns = `
	SELECT u.id, u.email, u.full_name, u.role_id, u.created_by, u.last_login,
	       u.created_at, u.updated_at,
	       COALESCE(r.display_name, '` + authz.RoleUnknown + `') AS role_display_name,
	       COALESCE(r.is_active, FALSE) AS role_is_active
	FROM iam.admin_user u
	LEFT JOIN iam.role r ON u.role_id = r.role_id
`

// ListUsers retrieves the roster projection ordered by creation time descending
func (dao *AdminUserDao) ListUsers(ctx context.Context) ([]models.AccountView, error) {
	query := projectionColumns + ` ORDER BY u.created_at DESC`

	rows, err := dao.DB.QueryContext(ctx, query)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query admin users")
		return nil, fmt.Errorf("failed to query admin users: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var users []models.AccountView
	for rows.Next() {
		var view models.AccountView
		err := rows.Scan(
			&view.ID, &view.Email, &view.FullName, &view.RoleID,
			&view.CreatedBy, &view.LastLogin, &view.CreatedAt, &view.UpdatedAt,
			&view.RoleDisplayName, &view.RoleIsActive,
		)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan admin user row")
			return nil, fmt.Errorf("failed to scan admin user: %w", err)
		}
		view.ActivityStatus = models.ActivityStatus(view.LastLogin, now)
		users = append(users, view)
	}

	if err = rows.Err(); err != nil {
		dao.Logger.WithError(err).Error("Error iterating admin user rows")
		return nil, fmt.Errorf("error iterating admin users: %w", err)
	}

	dao.Logger.WithField("count", len(users)).Debug("Successfully retrieved admin users")

	return users, nil
}

// GetUserByID retrieves a single projection row by account ID
func (dao *AdminUserDao) GetUserByID(ctx context.Context, id string) (*models.AccountView, error) {
	var view models.AccountView
	query := projectionColumns + ` WHERE u.id = $1`

	err := dao.DB.QueryRowContext(ctx, query, id).Scan(
		&view.ID, &view.Email, &view.FullName, &view.RoleID,
		&view.CreatedBy, &view.LastLogin, &view.CreatedAt, &view.UpdatedAt,
		&view.RoleDisplayName, &view.RoleIsActive,
	)

	if err == sql.ErrNoRows {
		dao.Logger.WithField("user_id", id).Warn("Admin user not found")
		return nil, apperrors.NotFound("user not found")
	}

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"user_id": id,
			"error":   err.Error(),
		}).Error("Failed to get admin user")
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}

	view.ActivityStatus = models.ActivityStatus(view.LastLogin, time.Now())
	return &view, nil
}

// GetUserByEmail retrieves an account by its unique email
func (dao *AdminUserDao) GetUserByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	query := `
		SELECT id, email, full_name, role_id, created_by, last_login, created_at, updated_at
		FROM iam.admin_user
		WHERE email = $1
	`

	err := dao.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &user.RoleID,
		&user.CreatedBy, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("user not found")
	}

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"email": email,
			"error": err.Error(),
		}).Error("Failed to get admin user by email")
		return nil, fmt.Errorf("failed to get admin user by email: %w", err)
	}

	return &user, nil
}

// CreateUser inserts a new directory record
func (dao *AdminUserDao) CreateUser(ctx context.Context, user *models.AdminUser) error {
	err := dao.DB.QueryRowContext(ctx, `
		INSERT INTO iam.admin_user (id, email, full_name, role_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.FullName, user.RoleID, user.CreatedBy).Scan(
		&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			dao.Logger.WithField("email", user.Email).Warn("Duplicate email on admin user insert")
			return apperrors.Conflict("email already exists")
		}
		dao.Logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   user.Email,
			"error":   err.Error(),
		}).Error("Failed to create admin user")
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"role_id": user.RoleID,
	}).Info("Successfully created admin user")

	return nil
}

// UpdateUser applies a partial update via COALESCE so unsupplied fields keep
// their current values
func (dao *AdminUserDao) UpdateUser(ctx context.Context, id string, email, fullName, roleID sql.NullString) error {
	result, err := dao.DB.ExecContext(ctx, `
		UPDATE iam.admin_user
		SET email = COALESCE($2, email),
		    full_name = COALESCE($3, full_name),
		    role_id = COALESCE($4, role_id),
		    updated_at = NOW()
		WHERE id = $1
	`, id, email, fullName, roleID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			dao.Logger.WithField("user_id", id).Warn("Duplicate email on admin user update")
			return apperrors.Conflict("email already exists")
		}
		dao.Logger.WithFields(logrus.Fields{
			"user_id": id,
			"error":   err.Error(),
		}).Error("Failed to update admin user")
		return fmt.Errorf("failed to update admin user: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		dao.Logger.WithField("user_id", id).Warn("Admin user not found for update")
		return apperrors.NotFound("user not found")
	}

	dao.Logger.WithField("user_id", id).Info("Successfully updated admin user")

	return nil
}

// DeleteUser removes a directory record
func (dao *AdminUserDao) DeleteUser(ctx context.Context, id string) error {
	result, err := dao.DB.ExecContext(ctx, `
		DELETE FROM iam.admin_user WHERE id = $1
	`, id)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"user_id": id,
			"error":   err.Error(),
		}).Error("Failed to delete admin user")
		return fmt.Errorf("failed to delete admin user: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		dao.Logger.WithField("user_id", id).Warn("Admin user not found for deletion")
		return apperrors.NotFound("user not found")
	}

	dao.Logger.WithField("user_id", id).Info("Successfully deleted admin user")

	return nil
}

// TouchLastLogin bumps the last-login timestamp
func (dao *AdminUserDao) TouchLastLogin(ctx context.Context, id string) error {
	result, err := dao.DB.ExecContext(ctx, `
		UPDATE iam.admin_user SET last_login = NOW() WHERE id = $1
	`, id)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"user_id": id,
			"error":   err.Error(),
		}).Error("Failed to update last login")
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}

	return nil
}
