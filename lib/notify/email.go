// Package notify sends account emails through Resend. Notifications are a
// best-effort side channel: a send failure is logged and never rolls back
// the account mutation that triggered it.
package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Notifier defines the interface for account notifications
type Notifier interface {
	// SendWelcomeEmail sends a welcome email to a newly created admin account
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// ResendNotifier implements Notifier using Resend
type ResendNotifier struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	logger    *logrus.Logger
}

// NewResendNotifier creates a new Resend-backed notifier
func NewResendNotifier(apiKey, fromEmail, fromName string, logger *logrus.Logger) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if fromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &ResendNotifier{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}, nil
}

// SendWelcomeEmail sends a welcome email to a newly created admin account
func (n *ResendNotifier) SendWelcomeEmail(ctx context.Context, to, name string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail),
		To:      []string{to},
		Subject: "Your administrator account is ready",
		Html:    welcomeEmailTemplate(name),
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		n.logger.WithFields(logrus.Fields{
			"to":    to,
			"error": err.Error(),
		}).Warn("Failed to send welcome email")
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"to":       to,
		"email_id": sent.Id,
	}).Info("Welcome email sent")

	return nil
}

func welcomeEmailTemplate(name string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Welcome, %s</h2>
			<p>An administrator account has been created for you in the member
			management portal. Sign in with your email address and the password
			you were given.</p>
			<p>If you did not expect this email, contact your administrator.</p>
		</div>
	`, name)
}
