package main

import (
	"context"
	"encoding/json"
	"net/http"
	"partyadmin/lib/api"
	"partyadmin/lib/apperrors"
	"partyadmin/lib/auth"
	"partyadmin/lib/authz"
	"partyadmin/lib/data"
	"partyadmin/lib/lifecycle"
	"partyadmin/lib/models"
	"partyadmin/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Handler struct contains all dependencies for the Lambda function
type Handler struct {
	Lifecycle *lifecycle.Manager
	Users     data.AdminUserRepository
	Logger    *logrus.Logger
}

func (h *Handler) handleRoutes(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	method := request.HTTPMethod
	pathParams := request.PathParameters

	switch {
	case method == http.MethodPost && request.Resource == "/admin-users":
		return h.createUser(ctx, request), nil
	case method == http.MethodGet && request.Resource == "/admin-users":
		return h.listUsers(ctx, request), nil
	case method == http.MethodGet && request.Resource == "/admin-users/{id}":
		return h.getUser(ctx, request, pathParams["id"]), nil
	case method == http.MethodPut && request.Resource == "/admin-users/{id}":
		return h.updateUser(ctx, request, pathParams["id"]), nil
	case method == http.MethodDelete && request.Resource == "/admin-users/{id}":
		return h.deleteUser(ctx, request, pathParams["id"]), nil
	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", h.Logger), nil
	}
}

// createUser is the privileged creation gateway: the only path that mints
// new identities. Trust is re-derived from scratch on every call: the
// caller is re-resolved from the directory and permissions re-computed, so
// no client-supplied role claim is ever honored. The response envelope
// collapses authentication and authorization failures into a generic 400
// per the API contract; logs keep the distinct failure kind.
func (h *Handler) createUser(ctx context.Context, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	correlationID := uuid.New().String()

	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		h.Logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"kind":           apperrors.KindUnauthorized,
			"error":          err.Error(),
		}).Warn("Create user rejected: no valid bearer credential")
		return api.GatewayFailureResponse("Authentication required", h.Logger)
	}

	actor, grant, err := h.Lifecycle.ResolveActor(ctx, claims.AccountID)
	if err != nil {
		h.Logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"caller_id":      claims.AccountID,
			"kind":           apperrors.KindOf(err),
			"error":          err.Error(),
		}).Warn("Create user rejected: caller has no administrative standing")
		return api.GatewayFailureResponse(apperrors.Message(err), h.Logger)
	}

	if !grant.Has(authz.PermManageUsers) {
		h.Logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"caller_id":      actor.ID,
			"caller_role":    actor.Role,
			"kind":           apperrors.KindForbidden,
		}).Warn("Create user rejected: caller lacks user management permission")
		return api.GatewayFailureResponse("Not permitted to create users", h.Logger)
	}

	var createRequest models.CreateAdminUserRequest
	if err := json.Unmarshal([]byte(request.Body), &createRequest); err != nil {
		h.Logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"error":          err.Error(),
		}).Error("Invalid request body for create user")
		return api.GatewayFailureResponse("Invalid request body", h.Logger)
	}

	user, err := h.Lifecycle.CreateAccount(ctx, &createRequest, actor)
	if err != nil {
		h.Logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"caller_id":      actor.ID,
			"email":          createRequest.Email,
			"kind":           apperrors.KindOf(err),
			"error":          err.Error(),
		}).Error("Failed to create admin account")
		return api.GatewayFailureResponse(apperrors.Message(err), h.Logger)
	}

	h.Logger.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"user_id":        user.ID,
		"email":          user.Email,
		"created_by":     actor.ID,
	}).Info("Admin account created via gateway")

	message := util.ConditionalString(createRequest.SendWelcomeEmail,
		"User created successfully. Welcome email sent.",
		"User created successfully.")

	return api.GatewaySuccessResponse(message, &models.CreatedUser{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		RoleID:    user.RoleID,
		CreatedAt: user.CreatedAt,
	}, h.Logger)
}

// listUsers handles GET /admin-users
func (h *Handler) listUsers(ctx context.Context, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		h.Logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Unauthorized", h.Logger)
	}

	// Any account with administrative standing may read the roster.
	if _, _, err := h.Lifecycle.ResolveActor(ctx, claims.AccountID); err != nil {
		return api.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err), h.Logger)
	}

	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		h.Logger.WithError(err).Error("Failed to list admin users")
		return api.ErrorResponse(http.StatusInternalServerError, "Failed to retrieve users", h.Logger)
	}

	response := models.UserListResponse{
		Users: users,
		Total: len(users),
	}

	return api.SuccessResponse(http.StatusOK, response, h.Logger)
}

// getUser handles GET /admin-users/{id}
func (h *Handler) getUser(ctx context.Context, request events.APIGatewayProxyRequest, userID string) events.APIGatewayProxyResponse {
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		h.Logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Unauthorized", h.Logger)
	}

	if _, _, err := h.Lifecycle.ResolveActor(ctx, claims.AccountID); err != nil {
		return api.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err), h.Logger)
	}

	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		return api.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err), h.Logger)
	}

	return api.SuccessResponse(http.StatusOK, user, h.Logger)
}

// updateUser handles PUT /admin-users/{id}
func (h *Handler) updateUser(ctx context.Context, request events.APIGatewayProxyRequest, userID string) events.APIGatewayProxyResponse {
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		h.Logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Unauthorized", h.Logger)
	}

	actor, _, err := h.Lifecycle.ResolveActor(ctx, claims.AccountID)
	if err != nil {
		return api.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err), h.Logger)
	}

	var updateRequest models.UpdateAdminUserRequest
	if err := json.Unmarshal([]byte(request.Body), &updateRequest); err != nil {
		h.Logger.WithError(err).Error("Invalid request body for update user")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", h.Logger)
	}

	if err := h.Lifecycle.UpdateAccount(ctx, userID, &updateRequest, actor); err != nil {
		h.Logger.WithFields(logrus.Fields{
			"user_id": userID,
			"kind":    apperrors.KindOf(err),
			"error":   err.Error(),
		}).Error("Failed to update admin account")
		return api.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err), h.Logger)
	}

	updated, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		h.Logger.WithError(err).Error("Failed to get updated user")
		return api.ErrorResponse(http.StatusInternalServerError, "User updated but failed to retrieve updated data", h.Logger)
	}

	return api.SuccessResponse(http.StatusOK, updated, h.Logger)
}

// deleteUser handles DELETE /admin-users/{id}
func (h *Handler) deleteUser(ctx context.Context, request events.APIGatewayProxyRequest, userID string) events.APIGatewayProxyResponse {
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		h.Logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Unauthorized", h.Logger)
	}

	actor, _, err := h.Lifecycle.ResolveActor(ctx, claims.AccountID)
	if err != nil {
		return api.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err), h.Logger)
	}

	if err := h.Lifecycle.DeleteAccount(ctx, userID, actor); err != nil {
		h.Logger.WithFields(logrus.Fields{
			"user_id": userID,
			"kind":    apperrors.KindOf(err),
			"error":   err.Error(),
		}).Error("Failed to delete admin account")
		return api.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err), h.Logger)
	}

	return api.SuccessResponse(http.StatusOK, map[string]string{"message": "User deleted successfully"}, h.Logger)
}
