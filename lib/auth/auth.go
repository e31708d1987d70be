package auth

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// Claims represents the bearer-token claims extracted from the API Gateway
// authorizer context. Only the identity claims are trusted from the token;
// role and permissions are always re-resolved from the directory, so a
// stale or tampered role claim has no authority.
type Claims struct {
	AccountID string `json:"sub"`
	Email     string `json:"email"`
}

// ExtractClaimsFromRequest extracts and parses bearer claims from an API Gateway request
func ExtractClaimsFromRequest(request events.APIGatewayProxyRequest) (*Claims, error) {
	// Get claims from authorizer context
	var claimsMap map[string]interface{}
	var ok bool

	// Try different possible claim locations in the authorizer context
	if authClaims, exists := request.RequestContext.Authorizer["claims"]; exists {
		claimsMap, ok = authClaims.(map[string]interface{})
	}

	// If claims not found, try direct access to authorizer (some API Gateway configurations)
	if !ok {
		claimsMap = request.RequestContext.Authorizer
		ok = (claimsMap != nil)
	}

	if !ok || claimsMap == nil {
		return nil, fmt.Errorf("claims not found in authorizer context")
	}

	// Extract account ID (sub)
	accountID, ok := claimsMap["sub"].(string)
	if !ok || accountID == "" {
		return nil, fmt.Errorf("sub not found or invalid in claims")
	}

	// Extract email
	email, ok := claimsMap["email"].(string)
	if !ok {
		return nil, fmt.Errorf("email not found or invalid in claims")
	}

	return &Claims{
		AccountID: accountID,
		Email:     email,
	}, nil
}

// ToJSON converts claims to JSON string for logging
func (c *Claims) ToJSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}
