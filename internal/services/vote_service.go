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

// CastVoteInput identifies the voter, the single target and the direction.
// Exactly one of QuestionID and AnswerID must be set.
type CastVoteInput struct {
	VoterID    string
	QuestionID *string
	AnswerID   *string
	Direction  models.VoteDirection
}

// VoteCounts tallies a target's votes by direction.
type VoteCounts struct {
	Up   int64 `json:"up"`
	Down int64 `json:"down"`
}

// VoteService manages per-user votes on questions and answers. A (voter,
// target) pair holds at most one vote; casting again in another direction
// updates the existing row in place.
type VoteService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewVoteService constructs a VoteService. The notification service is
// optional; without it vote creation skips fan-out.
func NewVoteService(db *gorm.DB, notifications *NotificationService) (*VoteService, error) {
	if db == nil {
		return nil, errors.New("vote service: db is required")
	}
	return &VoteService{db: db, notifications: notifications}, nil
}

// Cast records or updates the voter's vote on a target. The returned flag
// reports whether a new vote row was created; direction changes return the
// updated vote with the flag unset and trigger no notification.
func (s *VoteService) Cast(ctx context.Context, input CastVoteInput) (*models.Vote, bool, error) {
	ctx = ensureContext(ctx)

	if err := s.validateTarget(input.QuestionID, input.AnswerID); err != nil {
		return nil, false, err
	}
	if !input.Direction.Valid() {
		return nil, false, apperrors.NewBadRequest(fmt.Sprintf("invalid vote direction %q", input.Direction))
	}
	if err := s.voterExists(ctx, input.VoterID); err != nil {
		return nil, false, err
	}
	if err := s.targetExists(ctx, input.QuestionID, input.AnswerID); err != nil {
		return nil, false, err
	}

	vote, created, err := s.upsert(ctx, input)
	if err != nil && isUniqueConstraintError(err) {
		// Lost a race against a concurrent first vote by the same voter.
		// One retry lands on the update path; a second failure means the
		// store keeps contradicting itself and the caller gets a conflict.
		vote, created, err = s.upsert(ctx, input)
		if err != nil && isUniqueConstraintError(err) {
			return nil, false, apperrors.ErrConflict
		}
	}
	if err != nil {
		return nil, false, err
	}

	outcome := "updated"
	if created {
		outcome = "created"
		if s.notifications != nil {
			s.notifications.NotifyVote(ctx, vote)
		}
	}
	metrics.VotesCast.WithLabelValues(s.targetKind(input.QuestionID), outcome).Inc()

	return vote, created, nil
}

func (s *VoteService) upsert(ctx context.Context, input CastVoteInput) (*models.Vote, bool, error) {
	var (
		vote    models.Vote
		created bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("voter_id = ?", input.VoterID)
		query = s.scopeTarget(query, input.QuestionID, input.AnswerID)

		err := query.First(&vote).Error
		switch {
		case err == nil:
			if vote.Direction == input.Direction {
				return nil
			}
			if err := tx.Model(&vote).Update("direction", input.Direction).Error; err != nil {
				return fmt.Errorf("vote service: update direction: %w", err)
			}
			vote.Direction = input.Direction
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote = models.Vote{
				VoterID:    input.VoterID,
				QuestionID: input.QuestionID,
				AnswerID:   input.AnswerID,
				Direction:  input.Direction,
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			created = true
			return nil
		default:
			return fmt.Errorf("vote service: load vote: %w", err)
		}
	})
	if err != nil {
		return nil, false, err
	}
	return &vote, created, nil
}

// Retract removes the voter's vote on a target if one exists.
func (s *VoteService) Retract(ctx context.Context, voterID string, questionID, answerID *string) error {
	ctx = ensureContext(ctx)

	if err := s.validateTarget(questionID, answerID); err != nil {
		return err
	}

	query := s.db.WithContext(ctx).Where("voter_id = ?", voterID)
	query = s.scopeTarget(query, questionID, answerID)

	result := query.Delete(&models.Vote{})
	if result.Error != nil {
		return fmt.Errorf("vote service: retract vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	metrics.VotesCast.WithLabelValues(s.targetKind(questionID), "retracted").Inc()
	return nil
}

// RetractByID removes a vote by id. Votes are only retractable by their
// caster; anyone else sees the vote as missing.
func (s *VoteService) RetractByID(ctx context.Context, voterID, voteID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND voter_id = ?", voteID, voterID).
		Delete(&models.Vote{})
	if result.Error != nil {
		return fmt.Errorf("vote service: retract vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Get loads a vote by id.
func (s *VoteService) Get(ctx context.Context, id string) (*models.Vote, error) {
	ctx = ensureContext(ctx)

	var vote models.Vote
	if err := s.db.WithContext(ctx).First(&vote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("vote service: load vote: %w", err)
	}
	return &vote, nil
}

// ListByQuestion returns all votes on a question.
func (s *VoteService) ListByQuestion(ctx context.Context, questionID string) ([]models.Vote, error) {
	return s.list(ctx, "question_id = ?", questionID)
}

// ListByAnswer returns all votes on an answer.
func (s *VoteService) ListByAnswer(ctx context.Context, answerID string) ([]models.Vote, error) {
	return s.list(ctx, "answer_id = ?", answerID)
}

// ListByVoter returns all votes cast by a user.
func (s *VoteService) ListByVoter(ctx context.Context, voterID string) ([]models.Vote, error) {
	return s.list(ctx, "voter_id = ?", voterID)
}

// CountForQuestion tallies a question's votes by direction.
func (s *VoteService) CountForQuestion(ctx context.Context, questionID string) (*VoteCounts, error) {
	return s.count(ctx, "question_id = ?", questionID)
}

// CountForAnswer tallies an answer's votes by direction.
func (s *VoteService) CountForAnswer(ctx context.Context, answerID string) (*VoteCounts, error) {
	return s.count(ctx, "answer_id = ?", answerID)
}

func (s *VoteService) list(ctx context.Context, cond, value string) ([]models.Vote, error) {
	ctx = ensureContext(ctx)

	var votes []models.Vote
	if err := s.db.WithContext(ctx).
		Where(cond, value).
		Order("created_at DESC").
		Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("vote service: list votes: %w", err)
	}
	return votes, nil
}

func (s *VoteService) count(ctx context.Context, cond, value string) (*VoteCounts, error) {
	ctx = ensureContext(ctx)

	counts := &VoteCounts{}
	base := s.db.WithContext(ctx).Model(&models.Vote{}).Where(cond, value)

	if err := base.Session(&gorm.Session{}).
		Where("direction = ?", models.VoteUp).
		Count(&counts.Up).Error; err != nil {
		return nil, fmt.Errorf("vote service: count up votes: %w", err)
	}
	if err := base.Session(&gorm.Session{}).
		Where("direction = ?", models.VoteDown).
		Count(&counts.Down).Error; err != nil {
		return nil, fmt.Errorf("vote service: count down votes: %w", err)
	}
	return counts, nil
}

func (s *VoteService) validateTarget(questionID, answerID *string) error {
	hasQuestion := questionID != nil && strings.TrimSpace(*questionID) != ""
	hasAnswer := answerID != nil && strings.TrimSpace(*answerID) != ""
	if hasQuestion == hasAnswer {
		return apperrors.NewBadRequest("exactly one of question_id and answer_id must be set")
	}
	return nil
}

// voterExists resolves the voter against the user table. A bearer token can
// outlive its account, so the id must be checked here rather than trusted
// from the claims.
func (s *VoteService) voterExists(ctx context.Context, voterID string) error {
	if strings.TrimSpace(voterID) == "" {
		return apperrors.ErrUnauthorized
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", voterID).Count(&count).Error; err != nil {
		return fmt.Errorf("vote service: resolve voter: %w", err)
	}
	if count == 0 {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func (s *VoteService) targetExists(ctx context.Context, questionID, answerID *string) error {
	var (
		count int64
		err   error
	)
	if questionID != nil {
		err = s.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", *questionID).Count(&count).Error
	} else {
		err = s.db.WithContext(ctx).Model(&models.Answer{}).Where("id = ?", *answerID).Count(&count).Error
	}
	if err != nil {
		return fmt.Errorf("vote service: resolve target: %w", err)
	}
	if count == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *VoteService) scopeTarget(query *gorm.DB, questionID, answerID *string) *gorm.DB {
	if questionID != nil {
		return query.Where("question_id = ?", *questionID)
	}
	return query.Where("answer_id = ?", *answerID)
}

func (s *VoteService) targetKind(questionID *string) string {
	if questionID != nil {
		return "question"
	}
	return "answer"
}
