package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/models"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
	"github.com/stackitdev/stackit/pkg/metrics"
)

// CreateAnswerInput carries the fields needed to answer a question.
type CreateAnswerInput struct {
	QuestionID string
	AuthorID   string
	Content    string
}

// UpdateAnswerInput carries the editable fields of an answer.
type UpdateAnswerInput struct {
	Content string
}

// ListAnswersInput defines pagination for answer listings.
type ListAnswersInput struct {
	Limit  int
	Offset int
}

// AnswerService manages answers and the acceptance workflow. Acceptance
// keeps two invariants: at most one accepted answer per question, and the
// question's answered flag mirrors whether an accepted answer exists.
type AnswerService struct {
	db            *gorm.DB
	guard         Guard
	notifications *NotificationService
}

// NewAnswerService constructs an AnswerService. The notification service is
// optional; without it mutations skip fan-out.
func NewAnswerService(db *gorm.DB, notifications *NotificationService) (*AnswerService, error) {
	if db == nil {
		return nil, errors.New("answer service: db is required")
	}
	return &AnswerService{db: db, notifications: notifications}, nil
}

// Create stores a new answer and notifies the question author and any
// mentioned users.
func (s *AnswerService) Create(ctx context.Context, input CreateAnswerInput) (*models.Answer, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewBadRequest("answer content is required")
	}
	if strings.TrimSpace(input.AuthorID) == "" {
		return nil, errors.New("answer service: author id is required")
	}

	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", input.QuestionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("answer service: load question: %w", err)
	}

	answer := &models.Answer{
		QuestionID: question.ID,
		AuthorID:   input.AuthorID,
		Content:    input.Content,
	}
	if err := s.db.WithContext(ctx).Create(answer).Error; err != nil {
		return nil, fmt.Errorf("answer service: create answer: %w", err)
	}

	if s.notifications != nil {
		s.notifications.NotifyAnswerCreated(ctx, question.ID, answer.ID, answer.AuthorID)
		s.notifications.NotifyMentions(ctx, answer.Content, answer.AuthorID, &question.ID, &answer.ID)
	}

	return answer, nil
}

// Get loads an answer with its author.
func (s *AnswerService) Get(ctx context.Context, id string) (*models.Answer, error) {
	ctx = ensureContext(ctx)

	var answer models.Answer
	if err := s.db.WithContext(ctx).
		Preload("Author").
		First(&answer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("answer service: load answer: %w", err)
	}
	return &answer, nil
}

// List returns answers across all questions, newest first.
func (s *AnswerService) List(ctx context.Context, input ListAnswersInput) ([]models.Answer, error) {
	ctx = ensureContext(ctx)

	var answers []models.Answer
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Limit(clampLimit(input.Limit, 25, 100)).
		Offset(clampOffset(input.Offset)).
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("answer service: list answers: %w", err)
	}
	return answers, nil
}

// ListByQuestion returns a question's answers, accepted answer first, then
// newest first.
func (s *AnswerService) ListByQuestion(ctx context.Context, questionID string) ([]models.Answer, error) {
	ctx = ensureContext(ctx)

	var answers []models.Answer
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("question_id = ?", questionID).
		Order("is_accepted DESC").
		Order("created_at DESC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("answer service: list answers: %w", err)
	}
	return answers, nil
}

// Update edits an answer's content. Only the answer author may edit.
func (s *AnswerService) Update(ctx context.Context, actorID, answerID string, input UpdateAnswerInput) (*models.Answer, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewBadRequest("answer content is required")
	}

	answer, err := s.loadAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.require(s.guard.CanEditAnswer(actorID, answer)); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(answer).Update("content", input.Content).Error; err != nil {
		return nil, fmt.Errorf("answer service: update answer: %w", err)
	}
	answer.Content = input.Content

	if s.notifications != nil {
		s.notifications.NotifyMentions(ctx, answer.Content, answer.AuthorID, &answer.QuestionID, &answer.ID)
	}

	return answer, nil
}

// Delete removes an answer. Only the answer author may delete. Deleting an
// accepted answer clears the question's answered flag.
func (s *AnswerService) Delete(ctx context.Context, actorID, answerID string) error {
	ctx = ensureContext(ctx)

	answer, err := s.loadAnswer(ctx, answerID)
	if err != nil {
		return err
	}
	if err := s.guard.require(s.guard.CanDeleteAnswer(actorID, answer)); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("answer_id = ?", answer.ID).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("answer service: delete answer votes: %w", err)
		}
		if err := tx.Delete(&models.Answer{}, "id = ?", answer.ID).Error; err != nil {
			return fmt.Errorf("answer service: delete answer: %w", err)
		}
		if answer.IsAccepted {
			if err := tx.Model(&models.Question{}).
				Where("id = ?", answer.QuestionID).
				Update("is_answered", false).Error; err != nil {
				return fmt.Errorf("answer service: clear answered flag: %w", err)
			}
		}
		return nil
	})
}

// Accept marks an answer as the question's accepted answer. Only the
// question author may accept. If another answer is currently accepted it is
// unaccepted in the same transaction; accepting an already accepted answer
// is a no-op.
func (s *AnswerService) Accept(ctx context.Context, actorID, answerID string) (*models.Answer, error) {
	ctx = ensureContext(ctx)

	answer, err := s.loadAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}

	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", answer.QuestionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("answer service: load question: %w", err)
	}
	if err := s.guard.require(s.guard.CanAcceptAnswer(actorID, &question)); err != nil {
		return nil, err
	}

	if answer.IsAccepted {
		return answer, nil
	}

	switched := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Answer{}).
			Where("question_id = ? AND is_accepted = ? AND id <> ?", question.ID, true, answer.ID).
			Update("is_accepted", false)
		if result.Error != nil {
			return fmt.Errorf("answer service: unaccept previous answer: %w", result.Error)
		}
		switched = result.RowsAffected > 0

		if err := tx.Model(&models.Answer{}).
			Where("id = ?", answer.ID).
			Update("is_accepted", true).Error; err != nil {
			return fmt.Errorf("answer service: accept answer: %w", err)
		}
		if err := tx.Model(&models.Question{}).
			Where("id = ?", question.ID).
			Update("is_answered", true).Error; err != nil {
			return fmt.Errorf("answer service: set answered flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	answer.IsAccepted = true

	transition := "accepted"
	if switched {
		transition = "switched"
	}
	metrics.AcceptTransitions.WithLabelValues(transition).Inc()

	if s.notifications != nil {
		s.notifications.NotifyAccepted(ctx, answer.ID, actorID)
	}

	return answer, nil
}

// Unaccept clears an answer's accepted mark along with the question's
// answered flag. Only the question author may unaccept; unaccepting an
// answer that is not accepted is a no-op.
func (s *AnswerService) Unaccept(ctx context.Context, actorID, answerID string) (*models.Answer, error) {
	ctx = ensureContext(ctx)

	answer, err := s.loadAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}

	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", answer.QuestionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("answer service: load question: %w", err)
	}
	if err := s.guard.require(s.guard.CanUnacceptAnswer(actorID, &question)); err != nil {
		return nil, err
	}

	if !answer.IsAccepted {
		return answer, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).
			Where("id = ?", answer.ID).
			Update("is_accepted", false).Error; err != nil {
			return fmt.Errorf("answer service: unaccept answer: %w", err)
		}
		if err := tx.Model(&models.Question{}).
			Where("id = ?", question.ID).
			Update("is_answered", false).Error; err != nil {
			return fmt.Errorf("answer service: clear answered flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	answer.IsAccepted = false

	metrics.AcceptTransitions.WithLabelValues("unaccepted").Inc()
	return answer, nil
}

func (s *AnswerService) loadAnswer(ctx context.Context, id string) (*models.Answer, error) {
	var answer models.Answer
	if err := s.db.WithContext(ctx).First(&answer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("answer service: load answer: %w", err)
	}
	return &answer, nil
}
