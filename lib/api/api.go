package api

import (
	"encoding/json"
	"net/http"
	"partyadmin/lib/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
}

// SuccessResponse creates a successful API Gateway response
func SuccessResponse(statusCode int, data interface{}, logger *logrus.Logger) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal response data")
		return ErrorResponse(http.StatusInternalServerError, "Internal server error", logger)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    corsHeaders,
	}
}

// ErrorResponse creates an error API Gateway response
func ErrorResponse(statusCode int, message string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	errorData := map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  statusCode,
	}

	body, err := json.Marshal(errorData)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal error response")
		body = []byte(`{"error":true,"message":"Internal server error","status":500}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    corsHeaders,
	}
}

// GatewaySuccessResponse creates the creation gateway success envelope.
// The gateway contract is status 200 with {success: true, message, user}.
func GatewaySuccessResponse(message string, user *models.CreatedUser, logger *logrus.Logger) events.APIGatewayProxyResponse {
	envelope := models.GatewayResponse{
		Success: true,
		Message: message,
		User:    user,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal gateway response")
		return GatewayFailureResponse("Internal server error", logger)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    corsHeaders,
	}
}

// GatewayFailureResponse creates the creation gateway failure envelope.
// Every validation, authorization, and business failure collapses to
// status 400 with {success: false, error}; internal logs keep the precise
// failure kind.
func GatewayFailureResponse(message string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	envelope := models.GatewayResponse{
		Success: false,
		Error:   message,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal gateway failure response")
		body = []byte(`{"success":false,"error":"Internal server error"}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusBadRequest,
		Body:       string(body),
		Headers:    corsHeaders,
	}
}
