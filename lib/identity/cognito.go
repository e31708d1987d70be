package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
)

// CognitoProvider implements Provider against an AWS Cognito user pool.
type CognitoProvider struct {
	Client     *cognitoidentityprovider.Client
	UserPoolID string
	Logger     *logrus.Logger
}

// CreateIdentity creates a Cognito user with a confirmed email and sets the
// supplied password as permanent. The invitation email is suppressed; the
// caller decides separately whether to send a welcome notification.
func (p *CognitoProvider) CreateIdentity(ctx context.Context, email, fullName, password string) (string, error) {
	input := &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:    aws.String(p.UserPoolID),
		Username:      aws.String(email),
		MessageAction: types.MessageActionTypeSuppress,
		UserAttributes: []types.AttributeType{
			{
				Name:  aws.String("email"),
				Value: aws.String(email),
			},
			{
				Name:  aws.String("name"),
				Value: aws.String(fullName),
			},
			{
				Name:  aws.String("email_verified"),
				Value: aws.String("true"),
			},
			{
				Name:  aws.String("custom:managed_admin"),
				Value: aws.String("true"),
			},
		},
	}

	result, err := p.Client.AdminCreateUser(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to create identity: %w", err)
	}

	// Extract the Cognito user ID (sub) from the response
	var cognitoID string
	for _, attr := range result.User.Attributes {
		if *attr.Name == "sub" {
			cognitoID = *attr.Value
			break
		}
	}

	if cognitoID == "" {
		return "", fmt.Errorf("failed to get identity ID from response")
	}

	// Make the supplied password permanent so the account skips the
	// FORCE_CHANGE_PASSWORD state. If this fails the half-created identity
	// is removed so the caller never sees an orphan.
	_, err = p.Client.AdminSetUserPassword(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(email),
		Password:   aws.String(password),
		Permanent:  true,
	})
	if err != nil {
		if delErr := p.DeleteIdentity(ctx, email); delErr != nil {
			p.Logger.WithFields(logrus.Fields{
				"email": email,
				"error": delErr.Error(),
			}).Error("Failed to clean up identity after password setup failure")
		}
		return "", fmt.Errorf("failed to set identity password: %w", err)
	}

	p.Logger.WithFields(logrus.Fields{
		"cognito_id": cognitoID,
		"email":      email,
	}).Info("Successfully created identity")

	return cognitoID, nil
}

// UpdateEmail updates the email attribute on an existing identity, keeping
// it verified so the account does not drop into a re-confirmation flow.
func (p *CognitoProvider) UpdateEmail(ctx context.Context, id, email string) error {
	input := &cognitoidentityprovider.AdminUpdateUserAttributesInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(id),
		UserAttributes: []types.AttributeType{
			{
				Name:  aws.String("email"),
				Value: aws.String(email),
			},
			{
				Name:  aws.String("email_verified"),
				Value: aws.String("true"),
			},
		},
	}

	_, err := p.Client.AdminUpdateUserAttributes(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to update identity email: %w", err)
	}

	p.Logger.WithFields(logrus.Fields{
		"cognito_id": id,
		"email":      email,
	}).Info("Successfully updated identity email")

	return nil
}

// DeleteIdentity removes an identity from the user pool
func (p *CognitoProvider) DeleteIdentity(ctx context.Context, id string) error {
	input := &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(id),
	}

	_, err := p.Client.AdminDeleteUser(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}

	return nil
}
