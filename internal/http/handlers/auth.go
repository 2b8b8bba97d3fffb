package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wakesup1/fintrack/internal/config"
	"github.com/wakesup1/fintrack/internal/domain/user"
	"github.com/wakesup1/fintrack/internal/http/middlewares"
	"github.com/wakesup1/fintrack/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
}

type TokenIssuer interface {
	GenerateToken(userID, email string) (string, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        TokenIssuer
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwt,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email := user.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	if name == "" {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{
			{Field: "name", Rule: "required", Message: "is required"},
		}})
		return
	}

	if !user.ValidEmail(email) {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{
			{Field: "email", Rule: "email", Message: "must be a valid email address"},
		}})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, email, hash, name)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "User with this email already exists.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Email)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  u.ToView(),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for the store lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, user.NormalizeEmail(req.Email))
	if err != nil {
		// unknown email and bad password answer identically
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.ID, foundUser.Email)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  foundUser.ToView(),
	})
}

// Me returns the profile of the token's owner. RequireAuth has already
// verified the token by the time this runs.
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": u.ToView(),
	})
}
