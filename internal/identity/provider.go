// Package identity wraps the hosted identity provider. The provider owns
// authentication credentials; the directory owns profile and role.
package identity

import "context"

// Record is the provider-side view of an account.
type Record struct {
	UID         string
	Email       string
	DisplayName string
}

// Token is the result of a successful credential exchange.
type Token struct {
	UID     string
	IDToken string
}

// RecordUpdate carries a partial provider-side change. Nil fields are left
// untouched.
type RecordUpdate struct {
	Email       *string
	Password    *string
	DisplayName *string
}

// Provider exchanges credentials for identities and manages provider-side
// accounts. Implementations: Client (hosted REST API) and Local (in-process,
// development and tests).
type Provider interface {
	// SignIn verifies email/password and returns a short-lived ID token.
	SignIn(ctx context.Context, email, password string) (Token, error)
	// VerifyIDToken resolves an ID token into the account it belongs to.
	VerifyIDToken(ctx context.Context, idToken string) (Record, error)
	// CreateUser registers provider-side credentials for a new account.
	CreateUser(ctx context.Context, email, password, displayName string) (Record, error)
	// UpdateUser applies a partial change to the provider-side account.
	UpdateUser(ctx context.Context, uid string, upd RecordUpdate) error
	// DeleteUser removes the provider-side account.
	DeleteUser(ctx context.Context, uid string) error
}
