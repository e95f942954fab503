// internal/user/service.go
package user

import "context"

// Service defines the interface for the user account service.
type Service interface {
	Register(ctx context.Context, username, email, password string) (User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetAll(ctx context.Context, page, size int) ([]User, error)
}
