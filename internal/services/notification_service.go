package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/models"
	"github.com/stackitdev/stackit/internal/notifications"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
	"github.com/stackitdev/stackit/pkg/logger"
	"github.com/stackitdev/stackit/pkg/metrics"
)

// ListNotificationsInput defines filters for querying user notifications.
type ListNotificationsInput struct {
	UserID string
	Limit  int
	Offset int
}

// NotificationService persists recipient notifications and implements the
// fan-out rules for answer, mention, vote and accept events. Fan-out is
// best-effort: a failed or suppressed notification never surfaces to the
// action that triggered it.
type NotificationService struct {
	db  *gorm.DB
	hub *notifications.Hub
	log *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB, hub *notifications.Hub) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{
		db:  db,
		hub: hub,
		log: logger.WithModule("notifications"),
	}, nil
}

// ListForUser returns notifications for the supplied user ordered by recency.
func (s *NotificationService) ListForUser(ctx context.Context, input ListNotificationsInput) ([]models.Notification, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("notification service: user id is required")
	}

	limit := clampLimit(input.Limit, 25, 100)

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(clampOffset(input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	return rows, nil
}

// UnreadCount reports how many unread notifications the user has.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notification service: unread count: %w", err)
	}
	return count, nil
}

// MarkRead sets the notification read flag for a recipient.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("notification service: mark read: %w", err)
	}

	notification.IsRead = true
	notification.ReadAt = &now

	s.broadcast(userID, "notification.read", &notification)
	return &notification, nil
}

// MarkAllRead marks every unread notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return fmt.Errorf("notification service: mark all read: %w", err)
	}

	s.broadcast(userID, "notification.read_all", nil)
	return nil
}

// Delete removes a notification owned by the supplied recipient.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("notification service: delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	s.broadcast(userID, "notification.deleted", nil)
	return nil
}

// NotifyAnswerCreated tells a question's author that someone answered.
// Suppressed when the answerer is the question author, or when either the
// question or the answer author no longer resolves.
func (s *NotificationService) NotifyAnswerCreated(ctx context.Context, questionID, answerID, answerAuthorID string) {
	ctx = ensureContext(ctx)
	kind := models.NotificationAnswer

	question, ok := s.resolveQuestion(ctx, kind, questionID)
	if !ok {
		return
	}
	if question.AuthorID == answerAuthorID {
		s.suppressed(kind)
		return
	}
	author, ok := s.resolveUser(ctx, kind, answerAuthorID)
	if !ok {
		return
	}

	s.create(ctx, models.Notification{
		UserID:            question.AuthorID,
		Type:              kind,
		Title:             "New Answer",
		Message:           fmt.Sprintf("%s answered your question: %s", author.Username, question.Title),
		RelatedQuestionID: &question.ID,
		RelatedAnswerID:   &answerID,
		RelatedUserID:     &author.ID,
	})
}

// NotifyMentions notifies every distinct resolved @username in content,
// excluding the content's author. Each user receives at most one mention
// notification per text regardless of how often they are mentioned.
func (s *NotificationService) NotifyMentions(ctx context.Context, content, authorID string, questionID, answerID *string) {
	ctx = ensureContext(ctx)
	kind := models.NotificationMention

	author, ok := s.resolveUser(ctx, kind, authorID)
	if !ok {
		return
	}

	place := "answer"
	if questionID != nil && answerID == nil {
		place = "question"
	}

	seen := make(map[string]struct{})
	for username := range Mentions(content) {
		var mentioned models.User
		err := s.db.WithContext(ctx).Where("username = ?", username).First(&mentioned).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.absorb(kind, "resolve mentioned user", err)
			}
			continue
		}
		if mentioned.ID == author.ID {
			s.suppressed(kind)
			continue
		}
		if _, dup := seen[mentioned.ID]; dup {
			continue
		}
		seen[mentioned.ID] = struct{}{}

		s.create(ctx, models.Notification{
			UserID:            mentioned.ID,
			Type:              kind,
			Title:             "You were mentioned",
			Message:           fmt.Sprintf("%s mentioned you in a %s", author.Username, place),
			RelatedQuestionID: questionID,
			RelatedAnswerID:   answerID,
			RelatedUserID:     &author.ID,
		})
	}
}

// NotifyVote tells a target's author about a newly created vote. The caller
// only invokes this for vote creation, never for direction changes.
func (s *NotificationService) NotifyVote(ctx context.Context, vote *models.Vote) {
	ctx = ensureContext(ctx)
	kind := models.NotificationVote
	if vote == nil {
		return
	}

	var (
		targetAuthorID string
		targetKind     string
	)
	switch {
	case vote.QuestionID != nil:
		question, ok := s.resolveQuestion(ctx, kind, *vote.QuestionID)
		if !ok {
			return
		}
		targetAuthorID = question.AuthorID
		targetKind = "question"
	case vote.AnswerID != nil:
		answer, ok := s.resolveAnswer(ctx, kind, *vote.AnswerID)
		if !ok {
			return
		}
		targetAuthorID = answer.AuthorID
		targetKind = "answer"
	default:
		return
	}

	if targetAuthorID == vote.VoterID {
		s.suppressed(kind)
		return
	}

	voter, ok := s.resolveUser(ctx, kind, vote.VoterID)
	if !ok {
		return
	}

	s.create(ctx, models.Notification{
		UserID:            targetAuthorID,
		Type:              kind,
		Title:             "New Vote",
		Message:           fmt.Sprintf("%s voted on your %s", voter.Username, targetKind),
		RelatedQuestionID: vote.QuestionID,
		RelatedAnswerID:   vote.AnswerID,
		RelatedUserID:     &vote.VoterID,
	})
}

// NotifyAccepted tells an answer's author that their answer was accepted.
// Suppressed when the accepting actor wrote the answer themselves.
func (s *NotificationService) NotifyAccepted(ctx context.Context, answerID, actorID string) {
	ctx = ensureContext(ctx)
	kind := models.NotificationAccept

	answer, ok := s.resolveAnswer(ctx, kind, answerID)
	if !ok {
		return
	}
	if answer.AuthorID == actorID {
		s.suppressed(kind)
		return
	}
	actor, ok := s.resolveUser(ctx, kind, actorID)
	if !ok {
		return
	}

	s.create(ctx, models.Notification{
		UserID:            answer.AuthorID,
		Type:              kind,
		Title:             "Answer Accepted",
		Message:           fmt.Sprintf("%s accepted your answer", actor.Username),
		RelatedQuestionID: &answer.QuestionID,
		RelatedAnswerID:   &answer.ID,
		RelatedUserID:     &actor.ID,
	})
}

func (s *NotificationService) create(ctx context.Context, notification models.Notification) {
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		s.absorb(notification.Type, "persist notification", err)
		return
	}

	metrics.NotificationsFanout.WithLabelValues(string(notification.Type), "created").Inc()
	s.broadcast(notification.UserID, "notification.created", &notification)
}

func (s *NotificationService) resolveQuestion(ctx context.Context, kind models.NotificationType, id string) (*models.Question, bool) {
	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.suppressed(kind)
		} else {
			s.absorb(kind, "resolve question", err)
		}
		return nil, false
	}
	return &question, true
}

func (s *NotificationService) resolveAnswer(ctx context.Context, kind models.NotificationType, id string) (*models.Answer, bool) {
	var answer models.Answer
	if err := s.db.WithContext(ctx).First(&answer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.suppressed(kind)
		} else {
			s.absorb(kind, "resolve answer", err)
		}
		return nil, false
	}
	return &answer, true
}

func (s *NotificationService) resolveUser(ctx context.Context, kind models.NotificationType, id string) (*models.User, bool) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.suppressed(kind)
		} else {
			s.absorb(kind, "resolve user", err)
		}
		return nil, false
	}
	return &user, true
}

func (s *NotificationService) suppressed(kind models.NotificationType) {
	metrics.NotificationsFanout.WithLabelValues(string(kind), "suppressed").Inc()
}

func (s *NotificationService) absorb(kind models.NotificationType, op string, err error) {
	metrics.NotificationsFanout.WithLabelValues(string(kind), "failed").Inc()
	s.log.Warn("fan-out absorbed",
		zap.String("kind", string(kind)),
		zap.String("op", op),
		zap.Error(err),
	)
}

func (s *NotificationService) broadcast(userID, event string, notification *models.Notification) {
	if s.hub == nil {
		return
	}

	message := notifications.Event{Event: event}
	if notification != nil {
		message.Notification = notification
		message.NotificationID = notification.ID
	}
	if count, err := s.UnreadCount(context.Background(), userID); err == nil {
		message.UnreadCount = &count
	}

	s.hub.Broadcast(userID, message)
}
