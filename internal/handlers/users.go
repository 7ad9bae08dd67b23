package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stackitdev/stackit/internal/services"
	"github.com/stackitdev/stackit/pkg/response"
)

// UserHandler exposes the user directory and profile maintenance.
type UserHandler struct {
	users     *services.UserService
	questions *services.QuestionService
}

func NewUserHandler(users *services.UserService, questions *services.QuestionService) *UserHandler {
	return &UserHandler{users: users, questions: questions}
}

type updateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=1024"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(requestContext(c), services.ListUsersInput{
		Limit:  parseIntQuery(c, "limit", 25),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		payload = append(payload, publicUser(&users[i]))
	}
	response.Success(c, http.StatusOK, payload)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, publicUser(user))
}

// GET /api/users/by-username/:username
func (h *UserHandler) GetByUsername(c *gin.Context) {
	user, err := h.users.GetByUsername(requestContext(c), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, publicUser(user))
}

// GET /api/users/:id/questions
func (h *UserHandler) Questions(c *gin.Context) {
	ctx := requestContext(c)

	if _, err := h.users.Get(ctx, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	questions, err := h.questions.ListByAuthor(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Update(requestContext(c), c.Param("id"), services.UpdateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Avatar:   req.Avatar,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, publicUser(user))
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
