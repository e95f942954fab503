// internal/user/implementation.go
package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// service implements the Service interface.
type service struct {
	db          *sql.DB
	logger      *zap.Logger
	rateLimiter *rate.Limiter
}

// NewService creates a new user service instance. Registration and login
// share one limiter so credential-stuffing bursts are rejected early.
func NewService(db *sql.DB, logger *zap.Logger) Service {
	return &service{
		db:          db,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

// Register creates a new account with a hashed credential.
func (s *service) Register(ctx context.Context, username, email, password string) (User, error) {
	if !s.rateLimiter.Allow() {
		return User{}, fmt.Errorf("register: rate limit exceeded")
	}
	if username == "" || email == "" || password == "" {
		return User{}, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := User{
		Username:     username,
		Email:        email,
		Roles:        "USER",
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, salt, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, u.Username, u.Email, u.PasswordHash, u.Salt, u.Roles).Scan(&u.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return User{}, ErrDuplicate
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Login verifies credentials against the stored hash.
func (s *service) Login(ctx context.Context, usernameOrEmail, password string) (User, error) {
	if !s.rateLimiter.Allow() {
		return User{}, fmt.Errorf("login: rate limit exceeded")
	}

	u, err := s.findByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("query user: %w", err)
	}

	ok, err := verifyPassword(password, u.Salt, u.PasswordHash)
	if err != nil {
		return User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) findByUsernameOrEmail(ctx context.Context, key string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, salt, roles
		FROM users
		WHERE username = $1 OR email = $1
	`, key).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt, &u.Roles)
	return u, err
}

// GetByID retrieves a user by their ID.
func (s *service) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, roles
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.Roles)
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// GetAll returns one page of users ordered by id.
func (s *service) GetAll(ctx context.Context, page, size int) ([]User, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, roles
		FROM users
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, page*size, size)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Roles); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}
