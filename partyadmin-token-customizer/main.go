// Package main implements the AWS Cognito Pre-Token Generation V2.0 Lambda
// trigger.
//
// It enriches ID and access tokens with the caller's directory profile and
// resolved permission grant. The front-end uses these claims only to show or
// hide controls; every mutation path re-resolves the caller from the
// directory, so the claims carry no authority of their own and a stale
// token cannot escalate anything.
//
// Error handling is graceful throughout: if the directory is unavailable the
// event is returned unchanged and the user still authenticates with plain
// Cognito claims.
package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"partyadmin/lib/apperrors"
	"partyadmin/lib/authz"
	"partyadmin/lib/clients"
	"partyadmin/lib/constants"
	"partyadmin/lib/data"
	"partyadmin/lib/util"
	"strconv"
	"strings"

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
	userRepository data.AdminUserRepository
	roleRepository data.RoleRepository
)

// Handler processes the Cognito Pre Token Generation V2.0 trigger event
func Handler(ctx context.Context, event events.CognitoEventUserPoolsPreTokenGenV2_0) (events.CognitoEventUserPoolsPreTokenGenV2_0, error) {
	if !isValidTriggerSourceV2(event.TriggerSource) {
		logger.WithFields(logrus.Fields{
			"trigger_source": event.TriggerSource,
			"operation":      "Handler",
		}).Warn("Invalid trigger source for V2.0, returning event unchanged")
		return event, nil
	}

	// event.UserName contains the user's Cognito sub UUID, which doubles as
	// the directory record's primary key.
	accountID := event.UserName
	if accountID == "" {
		logger.WithField("operation", "Handler").Error("Username (account ID) is empty in event")
		return event, errors.New("username cannot be empty")
	}

	user, err := userRepository.GetUserByID(ctx, accountID)
	if err != nil {
		// Not every pool user is an admin account; members without a
		// directory record authenticate with plain Cognito claims.
		level := logrus.ErrorLevel
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			level = logrus.DebugLevel
		}
		logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"operation":  "Handler",
			"error":      err.Error(),
		}).Log(level, "No admin directory record, proceeding without custom claims")
		return event, nil
	}

	// Resolve the grant the same way the API Lambdas do: a missing or
	// deactivated role fails closed to the least privileged interpretation.
	roleName := ""
	var stored map[string]bool
	if role, err := roleRepository.GetRoleByID(ctx, user.RoleID); err == nil && role.IsActive {
		roleName = role.RoleID
		stored = role.Permissions
	}
	grant := authz.Resolve(roleName, stored)

	encodedGrant, err := encodeGrant(grant)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"operation":  "Handler",
			"error":      err.Error(),
		}).Error("Failed to encode permission grant, proceeding without custom claims")
		return event, nil
	}

	claimsToAdd := map[string]interface{}{
		"account_id":  user.ID,
		"email":       user.Email,
		"full_name":   user.FullName,
		"role":        roleName,
		"role_id":     user.RoleID,
		"permissions": encodedGrant, // Base64 encoded JSON grant for UI gating
	}

	event.Response.ClaimsAndScopeOverrideDetails = events.ClaimsAndScopeOverrideDetailsV2_0{
		// ID Token Configuration (used by the admin front-end)
		IDTokenGeneration: events.IDTokenGenerationV2_0{
			ClaimsToAddOrOverride: claimsToAdd,
			ClaimsToSuppress:      []string{},
		},
		// Access Token Configuration (used by the API Lambdas; identity
		// claims only carry who the caller is, never what they may do)
		AccessTokenGeneration: events.AccessTokenGenerationV2_0{
			ClaimsToAddOrOverride: claimsToAdd,
			ClaimsToSuppress:      []string{},
			ScopesToAdd:           []string{},
			ScopesToSuppress:      []string{},
		},
		GroupOverrideDetails: events.GroupConfigurationV2_0{
			GroupsToOverride:   groupsForRole(roleName),
			IAMRolesToOverride: []string{},
			PreferredRole:      nil,
		},
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.WithFields(logrus.Fields{
			"account_id": user.ID,
			"email":      user.Email,
			"role":       roleName,
			"operation":  "Handler",
		}).Debug("Successfully added custom claims to token")
	}

	return event, nil
}

// isValidTriggerSourceV2 validates Cognito trigger sources for V2.0
// compatibility. Responding to a V1.0 trigger with the V2.0 response format
// breaks authentication.
func isValidTriggerSourceV2(triggerSource string) bool {
	return strings.HasPrefix(triggerSource, "TokenGeneration_")
}

// encodeGrant serializes a permission grant as Base64 JSON to keep the
// token compact.
func encodeGrant(grant authz.Grant) (string, error) {
	payload, err := json.Marshal(grant)
	if err != nil {
		return "", fmt.Errorf("failed to marshal grant: %w", err)
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// groupsForRole maps the distinguished role names to Cognito groups.
func groupsForRole(roleName string) []string {
	switch roleName {
	case authz.RoleSuperAdmin, authz.RoleAdmin:
		return []string{roleName}
	default:
		return []string{}
	}
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

	userRepository = &data.AdminUserDao{DB: sqlDB, Logger: logger}
	roleRepository = &data.RoleDao{DB: sqlDB, Logger: logger}

	logger.WithField("operation", "init").Info("Token Customizer Lambda initialization completed successfully")
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
