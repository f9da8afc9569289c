package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"onlineshop/internal/domain"
)

var validate = validator.New()

// RegisterInput is the signup form. Validation runs locally before any
// request is sent.
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what a successful login or registration yields.
type AuthResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Register creates an account and returns the issued token plus identity.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("validate register form: %w", err)
	}
	env, err := c.do(ctx, http.MethodPost, "/auth/register", in, false, "Register failed")
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(env)
}

// Login exchanges credentials for a token plus identity.
func (c *Client) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("validate login form: %w", err)
	}
	env, err := c.do(ctx, http.MethodPost, "/auth/login", in, false, "Login failed")
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(env)
}

// Me fetches the identity bound to the current token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/user/me", nil, true, "Fetch me failed")
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// Users lists all accounts. Admin only.
func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/user", nil, true, "Fetch users failed")
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := json.Unmarshal(env.Data, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func decodeAuthResult(env envelope) (*AuthResult, error) {
	var res AuthResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		return nil, fmt.Errorf("decode auth result: %w", err)
	}
	if res.Token == "" {
		return nil, &Error{Message: "no token in response"}
	}
	return &res, nil
}
