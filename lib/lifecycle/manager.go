// Package lifecycle orchestrates admin account mutations across the two
// systems of record: the identity provider (Cognito) and the directory
// store (PostgreSQL). The two cannot share a transaction, so multi-step
// operations run as sagas with explicit compensation.
//
// Consistency contract:
//   - Creation provisions the identity first, then the directory record.
//     If the directory insert fails the identity is deleted again, so no
//     identity ever exists without a directory entry.
//   - Deletion removes the identity first; directory removal is the cascade
//     consequence. A directory record must never outlive its identity.
//   - Partial outcomes that survive compensation are logged with
//     condition=inconsistent_state or condition=identity_orphan for
//     operator follow-up. There is no automatic reconciliation.
package lifecycle

import (
	"context"
	"database/sql"
	"partyadmin/lib/apperrors"
	"partyadmin/lib/authz"
	"partyadmin/lib/data"
	"partyadmin/lib/identity"
	"partyadmin/lib/models"
	"partyadmin/lib/notify"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Actor is the authenticated caller of a lifecycle operation. Role is the
// effective role name: empty when the caller's role row is missing or has
// been deactivated, which resolves to the least privileged interpretation.
type Actor struct {
	ID   string
	Role string
}

// Manager coordinates account mutations across identity provider and
// directory store.
type Manager struct {
	Identity identity.Provider
	Users    data.AdminUserRepository
	Roles    data.RoleRepository
	Notifier notify.Notifier // optional, may be nil
	Logger   *logrus.Logger

	validate *validator.Validate
}

// NewManager wires a lifecycle manager. Notifier may be nil when no welcome
// email channel is configured.
func NewManager(provider identity.Provider, users data.AdminUserRepository, roles data.RoleRepository, notifier notify.Notifier, logger *logrus.Logger) *Manager {
	return &Manager{
		Identity: provider,
		Users:    users,
		Roles:    roles,
		Notifier: notifier,
		Logger:   logger,
		validate: validator.New(),
	}
}

// ResolveActor loads the caller's account and role and resolves their
// permission grant. A caller without a directory record has no
// administrative standing at all. A missing or deactivated role fails
// closed to the least privileged interpretation.
func (m *Manager) ResolveActor(ctx context.Context, accountID string) (Actor, authz.Grant, error) {
	user, err := m.Users.GetUserByID(ctx, accountID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return Actor{}, nil, apperrors.Unauthorized("no administrative standing")
		}
		return Actor{}, nil, err
	}

	roleName := ""
	var stored map[string]bool
	role, err := m.Roles.GetRoleByID(ctx, user.RoleID)
	if err == nil && role.IsActive {
		roleName = role.RoleID
		stored = role.Permissions
	} else if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		return Actor{}, nil, err
	}

	return Actor{ID: user.ID, Role: roleName}, authz.Resolve(roleName, stored), nil
}

// CreateAccount runs the account creation saga. Preconditions are checked
// in order with the first failure winning: payload shape and email syntax,
// email not already registered, role exists and is active, actor permitted
// to assign the role. Side effects: identity creation, directory insert
// with compensation, then the optional welcome notification.
func (m *Manager) CreateAccount(ctx context.Context, req *models.CreateAdminUserRequest, actor Actor) (*models.AdminUser, error) {
	if err := m.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validationMessage(err))
	}

	if _, err := m.Users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("email already exists")
	} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, apperrors.External("failed to check existing email", err)
	}

	role, err := m.Roles.GetRoleByID(ctx, req.RoleID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Validation("role not found")
		}
		return nil, err
	}
	if !role.IsActive {
		return nil, apperrors.Validation("role is not assignable")
	}

	if !authz.CanAssignRole(actor.Role, role.RoleID) {
		m.Logger.WithFields(logrus.Fields{
			"actor_id":   actor.ID,
			"actor_role": actor.Role,
			"role_id":    role.RoleID,
		}).Warn("Actor not permitted to assign role")
		return nil, apperrors.Forbidden("not permitted to assign this role")
	}

	// Saga step 1: identity provider record.
	identityID, err := m.Identity.CreateIdentity(ctx, req.Email, req.FullName, req.Password)
	if err != nil {
		return nil, apperrors.External("failed to create user account", err)
	}

	user := &models.AdminUser{
		ID:        identityID,
		Email:     req.Email,
		FullName:  req.FullName,
		RoleID:    role.RoleID,
		CreatedBy: sql.NullString{String: actor.ID, Valid: actor.ID != ""},
	}

	// Saga step 2: directory record. On failure the identity must be
	// compensated or an unmanageable orphan account remains.
	if err := m.Users.CreateUser(ctx, user); err != nil {
		m.compensateIdentity(ctx, identityID, req.Email)
		if apperrors.IsKind(err, apperrors.KindConflict) {
			return nil, err
		}
		return nil, apperrors.External("failed to create user", err)
	}

	m.Logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"email":      user.Email,
		"role_id":    user.RoleID,
		"created_by": actor.ID,
	}).Info("Successfully created admin account")

	// Welcome notification is best effort and never rolls back creation.
	if req.SendWelcomeEmail && m.Notifier != nil {
		if err := m.Notifier.SendWelcomeEmail(ctx, user.Email, user.FullName); err != nil {
			m.Logger.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Warn("Welcome email failed, account creation unaffected")
		}
	}

	return user, nil
}

// compensateIdentity deletes an identity after a failed directory insert.
// One retry; if both attempts fail the orphan is logged for operator
// follow-up, since a silent leak produces an unmanageable account.
func (m *Manager) compensateIdentity(ctx context.Context, identityID, email string) {
	err := m.Identity.DeleteIdentity(ctx, identityID)
	if err != nil {
		err = m.Identity.DeleteIdentity(ctx, identityID)
	}
	if err != nil {
		m.Logger.WithFields(logrus.Fields{
			"condition":   "identity_orphan",
			"identity_id": identityID,
			"email":       email,
			"error":       err.Error(),
		}).Error("Failed to compensate identity after directory insert failure")
		return
	}

	m.Logger.WithFields(logrus.Fields{
		"identity_id": identityID,
		"email":       email,
	}).Info("Compensated identity after directory insert failure")
}

// UpdateAccount applies a partial profile update. An email change must land
// in both stores; when the identity provider update fails after the
// directory write, the divergence is logged as inconsistent_state and
// surfaced to the caller.
func (m *Manager) UpdateAccount(ctx context.Context, id string, req *models.UpdateAdminUserRequest, actor Actor) error {
	if err := m.validate.Struct(req); err != nil {
		return apperrors.Validation(validationMessage(err))
	}

	target, err := m.Users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanManage(actor.Role, target.RoleID, actor.ID == id) {
		m.Logger.WithFields(logrus.Fields{
			"actor_id":    actor.ID,
			"actor_role":  actor.Role,
			"target_id":   id,
			"target_role": target.RoleID,
		}).Warn("Actor not permitted to manage target account")
		return apperrors.Forbidden("not permitted to manage this account")
	}

	if req.RoleID != "" && req.RoleID != target.RoleID {
		role, err := m.Roles.GetRoleByID(ctx, req.RoleID)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				return apperrors.Validation("role not found")
			}
			return err
		}
		if !role.IsActive {
			return apperrors.Validation("role is not assignable")
		}
		if !authz.CanAssignRole(actor.Role, role.RoleID) {
			return apperrors.Forbidden("not permitted to assign this role")
		}
	}

	patch := func(v string) sql.NullString {
		return sql.NullString{String: v, Valid: v != ""}
	}
	if err := m.Users.UpdateUser(ctx, id, patch(req.Email), patch(req.FullName), patch(req.RoleID)); err != nil {
		return err
	}

	if req.Email != "" && req.Email != target.Email {
		if err := m.Identity.UpdateEmail(ctx, id, req.Email); err != nil {
			m.Logger.WithFields(logrus.Fields{
				"condition": "inconsistent_state",
				"user_id":   id,
				"new_email": req.Email,
				"old_email": target.Email,
				"error":     err.Error(),
			}).Error("Directory email updated but identity provider update failed")
			return apperrors.External("email updated in directory only, account is now inconsistent", err)
		}
	}

	m.Logger.WithFields(logrus.Fields{
		"user_id":  id,
		"actor_id": actor.ID,
	}).Info("Successfully updated admin account")

	return nil
}

// DeleteAccount removes an account from both stores. Identity goes first;
// the directory record is removed as the cascade consequence, so a
// directory record can never outlive its identity.
func (m *Manager) DeleteAccount(ctx context.Context, id string, actor Actor) error {
	if actor.ID == id {
		return apperrors.Forbidden("cannot delete your own account")
	}

	target, err := m.Users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanManage(actor.Role, target.RoleID, false) {
		m.Logger.WithFields(logrus.Fields{
			"actor_id":    actor.ID,
			"actor_role":  actor.Role,
			"target_id":   id,
			"target_role": target.RoleID,
		}).Warn("Actor not permitted to delete target account")
		return apperrors.Forbidden("not permitted to delete this account")
	}

	if err := m.Identity.DeleteIdentity(ctx, id); err != nil {
		return apperrors.External("failed to delete user account", err)
	}

	// Cascade: the identity is gone, the directory record follows.
	if err := m.Users.DeleteUser(ctx, id); err != nil {
		m.Logger.WithFields(logrus.Fields{
			"condition": "inconsistent_state",
			"user_id":   id,
			"error":     err.Error(),
		}).Error("Identity deleted but directory record removal failed")
		return apperrors.External("account partially deleted, directory record remains", err)
	}

	m.Logger.WithFields(logrus.Fields{
		"user_id":  id,
		"actor_id": actor.ID,
	}).Info("Successfully deleted admin account")

	return nil
}

// validationMessage flattens validator errors into one short user-facing
// message naming the first offending field.
func validationMessage(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		field := strings.ToLower(first.Field())
		switch first.Tag() {
		case "required":
			return field + " is required"
		case "email":
			return "email must be a valid email address"
		case "min":
			return field + " is too short"
		case "max":
			return field + " is too long"
		}
		return field + " is invalid"
	}
	return "invalid request"
}
