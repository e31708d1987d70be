package constants

const (
	ALLOWED_ORIGINS       = "/partyadmin/ALLOWED_ORIGINS"
	DATABASE_RDS_ENDPOINT = "/partyadmin/DATABASE_RDS_ENDPOINT"
	DATABASE_PORT         = "/partyadmin/DATABASE_PORT"
	DATABASE_NAME         = "/partyadmin/DATABASE_NAME"
	DATABASE_USERNAME     = "/partyadmin/DATABASE_USERNAME"
	DATABASE_PASSWORD     = "/partyadmin/DATABASE_PASSWORD"
	SSL_MODE              = "/partyadmin/SSL_MODE"
	COGNITO_USER_POOL_ID  = "/partyadmin/COGNITO_USER_POOL_ID"
	COGNITO_CLIENT_ID     = "/partyadmin/COGNITO_CLIENT_ID"
	RESEND_API_KEY        = "/partyadmin/RESEND_API_KEY"
	EMAIL_FROM_ADDRESS    = "/partyadmin/EMAIL_FROM_ADDRESS"
	EMAIL_FROM_NAME       = "/partyadmin/EMAIL_FROM_NAME"
	DRIVER_NAME           = "postgres"
)
