package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"onlineshop/internal/domain"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authPayload is the data block of a successful login or registration.
type authPayload struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func registerHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, http.StatusBadRequest, "Invalid registration payload")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Register failed")
			return
		}

		user, err := deps.Users.Create(c.Request.Context(), domain.User{
			ID:           uuid.NewString(),
			Username:     strings.TrimSpace(req.Username),
			Email:        strings.TrimSpace(strings.ToLower(req.Email)),
			PasswordHash: string(hashed),
			Role:         domain.RoleUser,
		})
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				respondErr(c, http.StatusConflict, "Username or email already taken")
				return
			}
			respondErr(c, http.StatusInternalServerError, "Register failed")
			return
		}

		token, err := issueToken(deps.JWTSecret, *user, deps.TokenTTL)
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Register failed")
			return
		}
		respond(c, http.StatusCreated, "User registered successfully", authPayload{
			Token:    token,
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		})
	}
}

func loginHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondErr(c, http.StatusBadRequest, "Invalid login payload")
			return
		}

		user, err := deps.Users.GetByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respondErr(c, http.StatusUnauthorized, "Invalid username or password")
				return
			}
			respondErr(c, http.StatusInternalServerError, "Login failed")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			respondErr(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}

		token, err := issueToken(deps.JWTSecret, *user, deps.TokenTTL)
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Login failed")
			return
		}
		respond(c, http.StatusOK, "Login successful", authPayload{
			Token:    token,
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, http.StatusOK, "OK", currentUser(c))
	}
}

func listUsersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := deps.Users.List(c.Request.Context())
		if err != nil {
			respondErr(c, http.StatusInternalServerError, "Fetch users failed")
			return
		}
		respond(c, http.StatusOK, "OK", users)
	}
}
