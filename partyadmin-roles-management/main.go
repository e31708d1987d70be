package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"partyadmin/lib/apperrors"
	"partyadmin/lib/auth"
	"partyadmin/lib/clients"
	"partyadmin/lib/constants"
	"partyadmin/lib/data"
	"partyadmin/lib/models"
	"partyadmin/lib/util"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger         *logrus.Logger
	isLocal        bool
	ssmRepository  data.SSMRepository
	ssmParams      map[string]string
	sqlDB          *sql.DB
	roleRepository data.RoleRepository
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
	}).Info("Roles management request received")

	// Role listing is read-only and available to any authenticated admin
	// account; it feeds the role selection UI. Role editing is a setup-time
	// operation with no API path.
	if _, err := auth.ExtractClaimsFromRequest(request); err != nil {
		logger.WithError(err).Error("Failed to get claims from authorizer context")
		return util.CreateErrorResponse(http.StatusUnauthorized, "Unauthorized: Missing claims"), nil
	}

	if request.HTTPMethod != http.MethodGet {
		return util.CreateErrorResponse(http.StatusMethodNotAllowed, "Method not allowed"), nil
	}

	if roleID := request.PathParameters["roleId"]; roleID != "" {
		return handleGetRole(ctx, roleID), nil
	}

	return handleGetActiveRoles(ctx), nil
}

// handleGetRole handles GET /roles/{roleId}
func handleGetRole(ctx context.Context, roleID string) events.APIGatewayProxyResponse {
	role, err := roleRepository.GetRoleByID(ctx, roleID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return util.CreateErrorResponse(http.StatusNotFound, "Role not found")
		}
		logger.WithError(err).Error("Failed to get role")
		return util.CreateErrorResponse(http.StatusInternalServerError, "Failed to retrieve role")
	}

	return util.CreateSuccessResponse(http.StatusOK, role)
}

// handleGetActiveRoles handles GET /roles
func handleGetActiveRoles(ctx context.Context) events.APIGatewayProxyResponse {
	roles, err := roleRepository.GetActiveRoles(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to get active roles")
		return util.CreateErrorResponse(http.StatusInternalServerError, "Failed to retrieve roles")
	}

	response := models.RoleListResponse{
		Roles: roles,
		Total: len(roles),
	}

	return util.CreateSuccessResponse(http.StatusOK, response)
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

	roleRepository = &data.RoleDao{DB: sqlDB, Logger: logger}

	logger.WithField("operation", "init").Info("Roles Management Lambda initialization completed successfully")
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
