package services

import (
	"github.com/stackitdev/stackit/internal/models"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
)

// Guard is the single place ownership authorization rules live. The CRUD
// surface is deliberately asymmetric: only the answer mutations below carry
// an ownership check, everything else is open, matching the platform's
// observed behaviour. Self-voting is likewise allowed and never guarded.
type Guard struct{}

// CanEditAnswer permits only the answer's author to edit it.
func (Guard) CanEditAnswer(actorID string, answer *models.Answer) bool {
	return answer != nil && actorID != "" && actorID == answer.AuthorID
}

// CanDeleteAnswer permits only the answer's author to delete it.
func (Guard) CanDeleteAnswer(actorID string, answer *models.Answer) bool {
	return answer != nil && actorID != "" && actorID == answer.AuthorID
}

// CanAcceptAnswer permits only the parent question's author to accept.
func (Guard) CanAcceptAnswer(actorID string, question *models.Question) bool {
	return question != nil && actorID != "" && actorID == question.AuthorID
}

// CanUnacceptAnswer mirrors CanAcceptAnswer.
func (Guard) CanUnacceptAnswer(actorID string, question *models.Question) bool {
	return Guard{}.CanAcceptAnswer(actorID, question)
}

// require converts a predicate result into the canonical forbidden error.
func (Guard) require(allowed bool) error {
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}
