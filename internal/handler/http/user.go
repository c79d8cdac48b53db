package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shoply/checkout/internal/models"
)

type UserService interface {
	// Register creates new user and returns auth token
	Register(ctx context.Context, login, password string) (string, error)
	// Login authenticates user and returns auth token
	Login(ctx context.Context, login, password string) (string, error)
}

// UserHandler represents HTTP handler for user-related requests
type UserHandler struct {
	svc UserService
}

// NewUserHandler creates new UserHandler instance
func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

// RegisterUser registers new user
// 200 — user is registered and authenticated;
// 400 — invalid request format;
// 409 — login is already taken;
// 500 — internal error.
func (uh *UserHandler) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := uh.svc.Register(r.Context(), req.Login, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "bad request", http.StatusBadRequest)
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "login already taken", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		setAuthCookie(w, token)
		w.WriteHeader(http.StatusOK)
	}
}

// LoginUser authenticates user
// 200 — user is authenticated;
// 400 — invalid request format;
// 401 — invalid login or password;
// 500 — internal error.
func (uh *UserHandler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := uh.svc.Login(r.Context(), req.Login, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "bad request", http.StatusBadRequest)
			case errors.Is(err, models.ErrInvalidCredentials):
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		setAuthCookie(w, token)
		w.WriteHeader(http.StatusOK)
	}
}
