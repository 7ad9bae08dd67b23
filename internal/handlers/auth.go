package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/stackitdev/stackit/internal/auth"
	"github.com/stackitdev/stackit/internal/models"
	"github.com/stackitdev/stackit/internal/services"
	"github.com/stackitdev/stackit/pkg/errors"
	"github.com/stackitdev/stackit/pkg/response"
)

// AuthHandler manages registration, login and the authenticated profile.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

func NewAuthHandler(users *services.UserService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=255"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Register(requestContext(c), services.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"tokens": tokenResponse{AccessToken: token, TokenType: "Bearer"},
		"user":   publicUser(user),
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" {
		response.Error(c, errors.NewBadRequest("identifier is required"))
		return
	}

	user, err := h.users.Authenticate(requestContext(c), req.Identifier, req.Password)
	if err != nil {
		// Normalise auth errors to 401
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: token, TokenType: "Bearer"},
		"user":   publicUser(user),
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, publicUser(user))
}

func publicUser(user *models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
		"avatar":    user.Avatar,
		"is_active": user.IsActive,
	}
}
