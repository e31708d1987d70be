// Package main implements the AWS Cognito Post-Authentication Lambda trigger.
//
// Each successful sign-in bumps the account's last-login timestamp in the
// directory. The roster screen derives the activity status ("Active",
// "Recently active", ...) from that timestamp at read time; nothing else
// depends on this trigger.
//
// Error Handling:
//   - Never return an error that would block the Cognito authentication
//     flow; a missed bump only makes the roster slightly stale.
//   - All failures are logged with a correlation ID for debugging.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"partyadmin/lib/apperrors"
	"partyadmin/lib/clients"
	"partyadmin/lib/constants"
	"partyadmin/lib/data"
	"partyadmin/lib/util"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
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
)

// Handler processes the Cognito Post-Authentication trigger event.
// event.UserName carries the user's Cognito sub UUID, which is also the
// directory record's primary key.
func Handler(ctx context.Context, event events.CognitoEventUserPoolsPostAuthentication) (events.CognitoEventUserPoolsPostAuthentication, error) {
	correlationID := uuid.New().String()

	accountID := event.UserName
	if accountID == "" {
		logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"operation":      "Handler",
		}).Error("Username (account ID) is empty in event")
		return event, nil // Never block the authentication flow
	}

	err := userRepository.TouchLastLogin(ctx, accountID)
	if err != nil {
		// Accounts that authenticate without a directory record (e.g. a
		// member whose admin record was removed mid-session) are expected;
		// log and move on.
		level := logrus.ErrorLevel
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			level = logrus.WarnLevel
		}
		logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"account_id":     accountID,
			"operation":      "Handler",
			"error":          err.Error(),
		}).Log(level, "Failed to update last login, authentication unaffected")
		return event, nil
	}

	logger.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"account_id":     accountID,
		"operation":      "Handler",
	}).Debug("Updated last login after successful authentication")

	return event, nil
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

	logger.WithField("operation", "init").Info("Auth Sync Lambda initialization completed successfully")
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
