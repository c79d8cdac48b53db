package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shoply/checkout/internal/models"
	"github.com/shoply/checkout/internal/repository/postgres"
)

const (
	insertUserQuery = `
						INSERT INTO users (login, password_hash)
						VALUES ($1, $2)
						RETURNING id, login, password_hash, created_at
`
	selectUserByLoginQuery = `
						SELECT id, login, password_hash, created_at FROM users
						WHERE login = $1
`
)

// UserRepository implements UserRepository interface
type UserRepository struct {
	db *postgres.DB
}

// NewUserRepository creates new UserRepository instance
func NewUserRepository(db *postgres.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts new user to database
func (ur *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := ur.db.QueryRow(ctx, insertUserQuery, user.Login, user.PasswordHash).
		Scan(&user.ID, &user.Login, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errCode := ur.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return user, nil
}

// GetUserByLogin returns user by login
func (ur *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	user := models.User{}
	err := ur.db.QueryRow(ctx, selectUserByLoginQuery, login).
		Scan(&user.ID, &user.Login, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &user, nil
}
