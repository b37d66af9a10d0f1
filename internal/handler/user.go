package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ridehail/internal/auth"
	"ridehail/internal/domain"
	"ridehail/internal/repository"
	"ridehail/internal/service"
)

// TokenIssuer signs bearer tokens for newly registered accounts.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}

// UserHandler handles HTTP requests for riders.
type UserHandler struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository, tokens TokenIssuer) *UserHandler {
	return &UserHandler{userRepo: userRepo, tokens: tokens}
}

// RegisterRequest is the HTTP request body for rider registration.
type RegisterRequest struct {
	Name  string `json:"name" binding:"required,min=3"`
	Phone string `json:"phone" binding:"required,e164"`
}

// UserRegisterResponse is the HTTP response for rider registration.
type UserRegisterResponse struct {
	User  service.UserView `json:"user"`
	Token string           `json:"token"`
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// Check if user already exists
	existing, err := h.userRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "phone already registered"})
		return
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, auth.RoleRider)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, UserRegisterResponse{
		User:  service.NewUserView(user),
		Token: token,
	})
}
