// internal/user/domain.go
package user

import "errors"

// User represents a registered account. The password hash and salt never
// leave this package through the JSON surface.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Roles        string `json:"roles"`
	PasswordHash string `json:"-"`
	Salt         string `json:"-"`
}

var (
	// ErrNotFound signals that no user exists for the given key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate signals that the username or email is already taken.
	ErrDuplicate = errors.New("username or email already exists")
	// ErrInvalidCredentials signals a failed login. Deliberately vague.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation signals malformed registration input.
	ErrValidation = errors.New("validation failed")
)
