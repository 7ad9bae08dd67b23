package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stackitdev/stackit/internal/services"
	"github.com/stackitdev/stackit/pkg/response"
)

// AnswerHandler exposes answer CRUD and the acceptance workflow. Creation is
// open; editing, deletion and acceptance run behind the auth middleware and
// act as the authenticated user.
type AnswerHandler struct {
	answers *services.AnswerService
	votes   *services.VoteService
}

func NewAnswerHandler(answers *services.AnswerService, votes *services.VoteService) *AnswerHandler {
	return &AnswerHandler{answers: answers, votes: votes}
}

type createAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	AuthorID   string `json:"author_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

type updateAnswerRequest struct {
	Content string `json:"content" validate:"required"`
}

// POST /api/answers
func (h *AnswerHandler) Create(c *gin.Context) {
	var req createAnswerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	answer, err := h.answers.Create(requestContext(c), services.CreateAnswerInput{
		QuestionID: req.QuestionID,
		AuthorID:   req.AuthorID,
		Content:    req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, answer)
}

// GET /api/answers
func (h *AnswerHandler) List(c *gin.Context) {
	answers, err := h.answers.List(requestContext(c), services.ListAnswersInput{
		Limit:  parseIntQuery(c, "limit", 25),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answers)
}

// GET /api/answers/:id
func (h *AnswerHandler) Get(c *gin.Context) {
	answer, err := h.answers.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answer)
}

// GET /api/answers/:id/votes
func (h *AnswerHandler) Votes(c *gin.Context) {
	ctx := requestContext(c)

	votes, err := h.votes.ListByAnswer(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	counts, err := h.votes.CountForAnswer(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"votes": votes, "counts": counts})
}

// PUT /api/answers/:id
func (h *AnswerHandler) Update(c *gin.Context) {
	var req updateAnswerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	answer, err := h.answers.Update(requestContext(c), currentUserID(c), c.Param("id"), services.UpdateAnswerInput{
		Content: req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answer)
}

// DELETE /api/answers/:id
func (h *AnswerHandler) Delete(c *gin.Context) {
	if err := h.answers.Delete(requestContext(c), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/answers/:id/accept
func (h *AnswerHandler) Accept(c *gin.Context) {
	answer, err := h.answers.Accept(requestContext(c), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answer)
}

// POST /api/answers/:id/unaccept
func (h *AnswerHandler) Unaccept(c *gin.Context) {
	answer, err := h.answers.Unaccept(requestContext(c), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answer)
}
