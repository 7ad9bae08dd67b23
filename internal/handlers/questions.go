package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stackitdev/stackit/internal/services"
	"github.com/stackitdev/stackit/pkg/errors"
	"github.com/stackitdev/stackit/pkg/response"
)

// QuestionHandler exposes question CRUD, search and per-question answers.
type QuestionHandler struct {
	questions *services.QuestionService
	answers   *services.AnswerService
	votes     *services.VoteService
}

func NewQuestionHandler(questions *services.QuestionService, answers *services.AnswerService, votes *services.VoteService) *QuestionHandler {
	return &QuestionHandler{questions: questions, answers: answers, votes: votes}
}

type createQuestionRequest struct {
	AuthorID string   `json:"author_id" validate:"required"`
	Title    string   `json:"title" validate:"required,min=3,max=255"`
	Content  string   `json:"content" validate:"required"`
	Images   []string `json:"images"`
	Tags     []string `json:"tags" validate:"max=10"`
}

type updateQuestionRequest struct {
	Title   *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Content *string  `json:"content"`
	Images  []string `json:"images"`
	Tags    []string `json:"tags" validate:"omitempty,max=10"`
}

// POST /api/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var req createQuestionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	question, err := h.questions.Create(requestContext(c), services.CreateQuestionInput{
		AuthorID: req.AuthorID,
		Title:    req.Title,
		Content:  req.Content,
		Images:   req.Images,
		Tags:     req.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, question)
}

// GET /api/questions
func (h *QuestionHandler) List(c *gin.Context) {
	questions, err := h.questions.List(requestContext(c), services.ListQuestionsInput{
		Limit:  parseIntQuery(c, "limit", 25),
		Offset: parseIntQuery(c, "offset", 0),
		Tag:    c.Query("tag"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// GET /api/questions/search
func (h *QuestionHandler) Search(c *gin.Context) {
	questions, err := h.questions.Search(requestContext(c), c.Query("q"),
		parseIntQuery(c, "limit", 25), parseIntQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// GET /api/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	question, err := h.questions.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, question)
}

// GET /api/questions/:id/answers
func (h *QuestionHandler) Answers(c *gin.Context) {
	ctx := requestContext(c)

	if _, err := h.questions.Get(ctx, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	answers, err := h.answers.ListByQuestion(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, answers)
}

// GET /api/questions/:id/votes
func (h *QuestionHandler) Votes(c *gin.Context) {
	ctx := requestContext(c)

	votes, err := h.votes.ListByQuestion(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	counts, err := h.votes.CountForQuestion(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"votes": votes, "counts": counts})
}

// PUT /api/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	var req updateQuestionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.Content != nil && *req.Content == "" {
		response.Error(c, errors.NewBadRequest("question content cannot be empty"))
		return
	}

	question, err := h.questions.Update(requestContext(c), c.Param("id"), services.UpdateQuestionInput{
		Title:   req.Title,
		Content: req.Content,
		Images:  req.Images,
		Tags:    req.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, question)
}

// DELETE /api/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	if err := h.questions.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
