package ports

import "context"

// SignupResult echoes the accepted signup. It never carries the code.
type SignupResult struct {
	Username string
	Email    string
}

// AuthService runs the passwordless signup and token exchange.
type AuthService interface {
	// RequestCode provisions (or re-provisions) a confirmation code for the
	// username/email pair and mails it.
	RequestCode(ctx context.Context, username, email string) (*SignupResult, error)
	// ExchangeCode consumes the pending code and returns a bearer token.
	ExchangeCode(ctx context.Context, username, code string) (string, error)
}
