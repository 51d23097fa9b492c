package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/ChaliniM/Healthcare/pkg/database"
	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// UserRepository implements user data persistence
type UserRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, log *logger.Logger) interfaces.UserRepository {
	return &UserRepository{
		db:     db,
		logger: log,
	}
}

// CreateUser creates a new user. The username is the only unique field in
// the whole schema.
func (r *UserRepository) CreateUser(ctx context.Context, user *types.User) (int64, error) {
	query := `INSERT INTO users (username, password, role) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Password, user.Role)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, types.NewValidationError("USERNAME_EXISTS", "username already exists")
		}
		r.logger.WithError(err).Error("Failed to create user")
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user id: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"user_id":  id,
		"username": user.Username,
	}).Info("User created successfully")
	return id, nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	query := `SELECT id, username, password, role FROM users WHERE username = ?`

	user := &types.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Password, &user.Role,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, "user not found")
		}
		r.logger.WithError(err).Error("Failed to get user")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
