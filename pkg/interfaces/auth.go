package interfaces

import (
	"context"

	"github.com/ChaliniM/Healthcare/pkg/types"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	CreateUser(ctx context.Context, user *types.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
}

// AuthService defines the authentication gate. Authentication failures are
// a single Rejected kind: callers cannot tell an unknown username from a
// wrong password.
type AuthService interface {
	Authenticate(ctx context.Context, creds *types.Credentials) (*types.Principal, error)
	IssueToken(principal *types.Principal) (*types.AuthToken, error)
	ValidateToken(token string) (*types.Principal, error)
	CreateUser(ctx context.Context, username, password string, role types.UserRole) (*types.User, error)
}

// PasswordManager abstracts credential storage and comparison so the demo
// plaintext mode and the hardened bcrypt mode are interchangeable
type PasswordManager interface {
	HashPassword(password string) (string, error)
	VerifyPassword(stored, password string) bool
}
