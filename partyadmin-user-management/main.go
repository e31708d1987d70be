package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"partyadmin/lib/clients"
	"partyadmin/lib/constants"
	"partyadmin/lib/data"
	"partyadmin/lib/identity"
	"partyadmin/lib/lifecycle"
	"partyadmin/lib/notify"
	"partyadmin/lib/util"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger        *logrus.Logger
	isLocal       bool
	ssmRepository data.SSMRepository
	ssmParams     map[string]string
	sqlDB         *sql.DB
	cognitoClient *cognitoidentityprovider.Client
	userPoolID    string
	handler       *Handler
)

func LambdaHandler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "LambdaHandler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"resource":  request.Resource,
	}).Info("Admin user management request received")

	return handler.handleRoutes(ctx, request)
}

func main() {
	lambda.Start(LambdaHandler)
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

	// Initialize Cognito client
	cognitoClient = clients.NewCognitoIdentityProviderClient(isLocal)

	// Get User Pool ID from SSM parameters
	userPoolID = ssmParams[constants.COGNITO_USER_POOL_ID]
	if userPoolID == "" {
		logger.Fatal("COGNITO_USER_POOL_ID not found in SSM parameters")
	}

	userRepository := &data.AdminUserDao{DB: sqlDB, Logger: logger}
	roleRepository := &data.RoleDao{DB: sqlDB, Logger: logger}
	provider := &identity.CognitoProvider{
		Client:     cognitoClient,
		UserPoolID: userPoolID,
		Logger:     logger,
	}

	// Welcome email channel is optional; without an API key the gateway
	// still runs, creations just skip the notification.
	var notifier notify.Notifier
	if apiKey := ssmParams[constants.RESEND_API_KEY]; apiKey != "" {
		notifier, err = notify.NewResendNotifier(
			apiKey,
			ssmParams[constants.EMAIL_FROM_ADDRESS],
			ssmParams[constants.EMAIL_FROM_NAME],
			logger,
		)
		if err != nil {
			logger.WithField("error", err.Error()).Warn("Welcome email notifier disabled")
			notifier = nil
		}
	} else {
		logger.WithField("operation", "init").Warn("RESEND_API_KEY not configured, welcome emails disabled")
	}

	handler = &Handler{
		Lifecycle: lifecycle.NewManager(provider, userRepository, roleRepository, notifier, logger),
		Users:     userRepository,
		Logger:    logger,
	}

	logger.WithField("operation", "init").Info("Admin User Management Lambda initialization completed successfully")
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

	// Create PostgreSQL client using RDS connection parameters from SSM
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

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.WithField("operation", "setupPostgresSQLClient").Debug("PostgreSQL client initialized successfully")
	}
	return nil
}
