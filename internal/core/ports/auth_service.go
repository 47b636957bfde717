package ports

import "context"

// SignupInput carries the fields accepted by the public signup endpoint.
// Shape validation (name lengths, email format, password length) happens at
// the transport layer before the service is called.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	RoleID    string
	Active    bool
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) error
	// Login verifies the credentials and returns a signed session token
	// bound to the user's id with a fixed expiry.
	Login(ctx context.Context, email, password string) (string, error)
}
