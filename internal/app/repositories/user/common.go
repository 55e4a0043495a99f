package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/db"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/dberrors"
	"github.com/taskgrade/backend/internal/pkg/logger"
)

var userColumns = []string{"id", "email", "password_hash", "full_name", "contact_number", "role", "created_at"}

// CommonRepository handles the users table shared by every role
type CommonRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewRepository creates a new CommonRepository
func NewRepository(database *db.PostgresDB) *CommonRepository {
	return &CommonRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateUser inserts a user; a duplicate email, compared case-insensitively, is a conflict
func (r *CommonRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	sql, args, err := r.sb.Insert("users").
		Columns("id", "email", "password_hash", "full_name", "contact_number", "role").
		Values(user.ID, user.Email, user.PasswordHash, user.FullName, user.ContactNumber, user.Role).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&user.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") ||
			dberrors.IsDuplicateConstraintError(err, "users_email_lower_idx") {
			logger.Warn().Str("email", user.Email).Msg("Attempted to create user with duplicate email")
			return apperrors.NewConflictError("email already registered")
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// GetUserByEmail looks the email up exactly as given
func (r *CommonRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, squirrel.Eq{"email": email})
}

// GetUserByEmailFold looks the email up case-insensitively
func (r *CommonRepository) GetUserByEmailFold(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, squirrel.Expr("lower(email) = lower(?)", email))
}

func (r *CommonRepository) getUser(ctx context.Context, pred squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(pred).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user := &models.User{}
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.ContactNumber, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error executing get user query")
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return user, nil
}

// EmailExists checks case-insensitively whether an email is registered
func (r *CommonRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// CountUsers returns the number of users
func (r *CommonRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Conn(ctx).QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}
