// Package identity wraps the external identity provider. The directory
// store owns the roster; this package owns the matching authentication
// records. The two are kept consistent by the lifecycle manager's sagas.
package identity

import "context"

// Provider is the identity-provider port used by the lifecycle manager.
// Implementations must be safe for concurrent use.
type Provider interface {
	// CreateIdentity provisions an authentication record with a confirmed
	// email, the supplied permanent password, and managed-admin metadata.
	// Returns the provider-assigned account ID. No invitation message is
	// sent by the provider; welcome notifications are a separate channel.
	CreateIdentity(ctx context.Context, email, fullName, password string) (string, error)

	// UpdateEmail changes the email on an existing authentication record,
	// keeping it confirmed.
	UpdateEmail(ctx context.Context, id, email string) error

	// DeleteIdentity removes an authentication record. Used both for
	// account deletion and as the compensation step when directory
	// creation fails.
	DeleteIdentity(ctx context.Context, id string) error
}
