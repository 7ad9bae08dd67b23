package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stackitdev/stackit/internal/models"
	"github.com/stackitdev/stackit/internal/services"
	"github.com/stackitdev/stackit/pkg/response"
)

// VoteHandler exposes vote casting and retraction. Both act as the
// authenticated user; the voter id never comes from the payload.
type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type castVoteRequest struct {
	QuestionID *string `json:"question_id"`
	AnswerID   *string `json:"answer_id"`
	Direction  string  `json:"direction" validate:"required,oneof=up down"`
}

type retractVoteRequest struct {
	QuestionID *string `json:"question_id"`
	AnswerID   *string `json:"answer_id"`
}

// POST /api/votes
func (h *VoteHandler) Cast(c *gin.Context) {
	var req castVoteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	vote, created, err := h.votes.Cast(requestContext(c), services.CastVoteInput{
		VoterID:    currentUserID(c),
		QuestionID: req.QuestionID,
		AnswerID:   req.AnswerID,
		Direction:  models.VoteDirection(req.Direction),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"vote": vote, "created": created})
}

// DELETE /api/votes
func (h *VoteHandler) Retract(c *gin.Context) {
	var req retractVoteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.votes.Retract(requestContext(c), currentUserID(c), req.QuestionID, req.AnswerID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"retracted": true})
}

// GET /api/votes/:id
func (h *VoteHandler) Get(c *gin.Context) {
	vote, err := h.votes.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vote)
}

// DELETE /api/votes/:id
func (h *VoteHandler) RetractByID(c *gin.Context) {
	if err := h.votes.RetractByID(requestContext(c), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"retracted": true})
}

// GET /api/votes/mine
func (h *VoteHandler) Mine(c *gin.Context) {
	votes, err := h.votes.ListByVoter(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, votes)
}
