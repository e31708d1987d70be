package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"partyadmin/lib/apperrors"
	"partyadmin/lib/auth"
	"partyadmin/lib/authz"
	"partyadmin/lib/clients"
	"partyadmin/lib/constants"
	"partyadmin/lib/data"
	"partyadmin/lib/lifecycle"
	"partyadmin/lib/util"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger        *logrus.Logger
	isLocal       bool
	ssmRepository data.SSMRepository
	ssmParams     map[string]string
	sqlDB         *sql.DB
	resolver      *lifecycle.Manager // used for actor/grant resolution only
)

// Handler serves the permission query interfaces. Results are resolved
// fresh from the directory on every call and never cached; a stale grant
// here would let the UI show controls the authoritative layer rejects.
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"resource":  request.Resource,
	}).Info("Permissions request received")

	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Failed to get claims from authorizer context")
		return util.CreateErrorResponse(http.StatusUnauthorized, "Unauthorized: Missing claims"), nil
	}

	if request.HTTPMethod != http.MethodGet {
		return util.CreateErrorResponse(http.StatusMethodNotAllowed, "Method not allowed"), nil
	}

	if targetID := request.PathParameters["targetId"]; targetID != "" {
		return handleCanManage(ctx, claims.AccountID, targetID), nil
	}

	return handleGetPermissions(ctx, claims.AccountID, request.QueryStringParameters["account_id"]), nil
}

// handleGetPermissions handles GET /permissions?account_id=...
// The account_id defaults to the caller. Reading another account's grant
// requires the caller to be permitted to manage that account.
func handleGetPermissions(ctx context.Context, callerID, accountID string) events.APIGatewayProxyResponse {
	actor, grant, err := resolver.ResolveActor(ctx, callerID)
	if err != nil {
		return util.CreateErrorResponse(apperrors.StatusCode(err), apperrors.Message(err))
	}

	subjectID := callerID
	if accountID != "" && accountID != callerID {
		subjectID = accountID

		target, err := resolver.Users.GetUserByID(ctx, subjectID)
		if err != nil {
			return util.CreateErrorResponse(apperrors.StatusCode(err), apperrors.Message(err))
		}
		if !authz.CanManage(actor.Role, target.RoleID, false) {
			logger.WithFields(logrus.Fields{
				"caller_id": callerID,
				"target_id": subjectID,
			}).Warn("Caller not permitted to read target permissions")
			return util.CreateErrorResponse(http.StatusForbidden, "Not permitted to view this account's permissions")
		}

		_, grant, err = resolver.ResolveActor(ctx, subjectID)
		if err != nil {
			return util.CreateErrorResponse(apperrors.StatusCode(err), apperrors.Message(err))
		}
	}

	return util.CreateSuccessResponse(http.StatusOK, map[string]interface{}{
		"account_id":  subjectID,
		"permissions": grant,
	})
}

// handleCanManage handles GET /permissions/can-manage/{targetId}
func handleCanManage(ctx context.Context, callerID, targetID string) events.APIGatewayProxyResponse {
	actor, _, err := resolver.ResolveActor(ctx, callerID)
	if err != nil {
		return util.CreateErrorResponse(apperrors.StatusCode(err), apperrors.Message(err))
	}

	target, err := resolver.Users.GetUserByID(ctx, targetID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return util.CreateErrorResponse(http.StatusNotFound, "User not found")
		}
		return util.CreateErrorResponse(apperrors.StatusCode(err), apperrors.Message(err))
	}

	canManage := authz.CanManage(actor.Role, target.RoleID, actor.ID == target.ID)

	return util.CreateSuccessResponse(http.StatusOK, map[string]interface{}{
		"target_id":  targetID,
		"can_manage": canManage,
	})
}

func main() {
	lambda.Start(Handler)
}

func init() {
	var err error

	isLocal = parseIsLocal()

	// Logger setup
	logger = setupLogger(isLocal)

	// Initialize AWS SSM Parameter Store client for configuration management
	ssmClient := clients.NewSSMClient(isLocal)
	ssmRepository = &data.SSMDao{
		SSM:    ssmClient,
		Logger: logger,
	}

	// Retrieve configuration parameters from SSM Parameter Store
	ssmParams, err = ssmRepository.GetParameters()
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error while getting SSM params from parameter store")
	}

	// Initialize PostgreSQL database connection
	err = setupPostgresSQLClient(ssmParams)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error setting up PostgreSQL client")
	}

	// This Lambda only resolves actors and grants; no identity provider or
	// notifier is wired.
	resolver = lifecycle.NewManager(
		nil,
		&data.AdminUserDao{DB: sqlDB, Logger: logger},
		&data.RoleDao{DB: sqlDB, Logger: logger},
		nil,
		logger,
	)

	logger.WithField("operation", "init").Info("Permissions Management Lambda initialization completed successfully")
}

func parseIsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	return isLocal
}

func setupLogger(isLocal bool) *logrus.Logger {
	logger := logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: isLocal})
	return logger
}

func setupPostgresSQLClient(ssmParams map[string]string) error {
	var err error

	sqlDB, err = clients.NewPostgresSQLClient(
		ssmParams[constants.DATABASE_RDS_ENDPOINT],
		ssmParams[constants.DATABASE_PORT],
		ssmParams[constants.DATABASE_NAME],
		ssmParams[constants.DATABASE_USERNAME],
		ssmParams[constants.DATABASE_PASSWORD],
		ssmParams[constants.SSL_MODE],
	)
	if err != nil {
		return fmt.Errorf("error creating PostgreSQL client: %w", err)
	}

	return nil
}
