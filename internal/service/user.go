package service

import (
	"context"
	"errors"

	"github.com/shoply/checkout/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is interface for interacting with user-related data
type UserRepository interface {
	// CreateUser inserts new user to database
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns user by login
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

// UserService handles registration and authentication
type UserService struct {
	repo  UserRepository
	token TokenService
}

// NewUserService creates new UserService instance
func NewUserService(repo UserRepository, token TokenService) *UserService {
	return &UserService{
		repo:  repo,
		token: token,
	}
}

// Register creates new user and returns auth token
func (us *UserService) Register(ctx context.Context, login, password string) (string, error) {
	if login == "" || password == "" {
		return "", models.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user, err := us.repo.CreateUser(ctx, &models.User{
		Login:        login,
		PasswordHash: string(hash),
	})
	if err != nil {
		return "", err
	}

	return us.token.CreateToken(user)
}

// Login authenticates user and returns auth token
func (us *UserService) Login(ctx context.Context, login, password string) (string, error) {
	if login == "" || password == "" {
		return "", models.ErrValidation
	}

	user, err := us.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return us.token.CreateToken(user)
}
