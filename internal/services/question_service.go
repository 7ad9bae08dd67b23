package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/models"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
)

// CreateQuestionInput carries the fields needed to post a question.
type CreateQuestionInput struct {
	AuthorID string
	Title    string
	Content  string
	Images   []string
	Tags     []string
}

// UpdateQuestionInput carries the editable question fields. Nil pointers
// leave the corresponding field untouched; a non-nil Tags slice replaces the
// full tag set.
type UpdateQuestionInput struct {
	Title   *string
	Content *string
	Images  []string
	Tags    []string
}

// ListQuestionsInput defines filters and pagination for question listings.
type ListQuestionsInput struct {
	Limit  int
	Offset int
	Tag    string
}

// QuestionService manages questions and their tag associations. The
// answered flag on a question is owned by the acceptance workflow and never
// mutated here.
type QuestionService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewQuestionService constructs a QuestionService. The notification service
// is optional; without it mentions in question bodies fan out nowhere.
func NewQuestionService(db *gorm.DB, notifications *NotificationService) (*QuestionService, error) {
	if db == nil {
		return nil, errors.New("question service: db is required")
	}
	return &QuestionService{db: db, notifications: notifications}, nil
}

// Create stores a new question, attaching tags by name (creating unknown
// tags on the fly) and notifying any mentioned users.
func (s *QuestionService) Create(ctx context.Context, input CreateQuestionInput) (*models.Question, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewBadRequest("question title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewBadRequest("question content is required")
	}
	if strings.TrimSpace(input.AuthorID) == "" {
		return nil, errors.New("question service: author id is required")
	}

	images, err := encodeImages(input.Images)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: input.AuthorID,
		Images:   images,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("question service: create question: %w", err)
		}
		return s.replaceTags(tx, question, input.Tags)
	})
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.NotifyMentions(ctx, question.Content, question.AuthorID, &question.ID, nil)
	}

	return s.Get(ctx, question.ID)
}

// Get loads a question with its author, tags and answers.
func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	ctx = ensureContext(ctx)

	var question models.Question
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_accepted DESC").Order("created_at DESC")
		}).
		Preload("Answers.Author").
		First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("question service: load question: %w", err)
	}
	return &question, nil
}

// List returns questions newest first, optionally filtered by tag name.
func (s *QuestionService) List(ctx context.Context, input ListQuestionsInput) ([]models.Question, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Model(&models.Question{}).
		Preload("Author").
		Preload("Tags")

	if tag := strings.TrimSpace(input.Tag); tag != "" {
		query = query.
			Joins("JOIN question_tags ON question_tags.question_id = questions.id").
			Joins("JOIN tags ON tags.id = question_tags.tag_id").
			Where("tags.name = ?", tag)
	}

	var questions []models.Question
	if err := query.
		Order("questions.created_at DESC").
		Limit(clampLimit(input.Limit, 25, 100)).
		Offset(clampOffset(input.Offset)).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("question service: list questions: %w", err)
	}
	return questions, nil
}

// Search returns questions whose title or content contains the query,
// newest first.
func (s *QuestionService) Search(ctx context.Context, query string, limit, offset int) ([]models.Question, error) {
	ctx = ensureContext(ctx)

	term := strings.TrimSpace(query)
	if term == "" {
		return s.List(ctx, ListQuestionsInput{Limit: limit, Offset: offset})
	}

	pattern := "%" + term + "%"
	var questions []models.Question
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(clampLimit(limit, 25, 100)).
		Offset(clampOffset(offset)).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("question service: search questions: %w", err)
	}
	return questions, nil
}

// ListByAuthor returns a user's questions, newest first.
func (s *QuestionService) ListByAuthor(ctx context.Context, authorID string) ([]models.Question, error) {
	ctx = ensureContext(ctx)

	var questions []models.Question
	if err := s.db.WithContext(ctx).
		Preload("Tags").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("question service: list questions by author: %w", err)
	}
	return questions, nil
}

// Update edits a question's content fields and tag set. The answered flag
// is left alone regardless of input.
func (s *QuestionService) Update(ctx context.Context, id string, input UpdateQuestionInput) (*models.Question, error) {
	ctx = ensureContext(ctx)

	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("question service: load question: %w", err)
	}

	updates := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.NewBadRequest("question title cannot be empty")
		}
		updates["title"] = *input.Title
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, apperrors.NewBadRequest("question content cannot be empty")
		}
		updates["content"] = *input.Content
	}
	if input.Images != nil {
		images, err := encodeImages(input.Images)
		if err != nil {
			return nil, err
		}
		updates["images"] = images
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&question).Updates(updates).Error; err != nil {
				return fmt.Errorf("question service: update question: %w", err)
			}
		}
		if input.Tags != nil {
			if err := s.replaceTags(tx, &question, input.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifications != nil && input.Content != nil {
		s.notifications.NotifyMentions(ctx, *input.Content, question.AuthorID, &question.ID, nil)
	}

	return s.Get(ctx, question.ID)
}

// Delete removes a question together with its answers, votes and tag links.
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("question service: load question: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answerIDs []string
		if err := tx.Model(&models.Answer{}).
			Where("question_id = ?", question.ID).
			Pluck("id", &answerIDs).Error; err != nil {
			return fmt.Errorf("question service: collect answers: %w", err)
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.Vote{}).Error; err != nil {
				return fmt.Errorf("question service: delete answer votes: %w", err)
			}
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("question service: delete question votes: %w", err)
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
			return fmt.Errorf("question service: delete answers: %w", err)
		}
		if err := tx.Model(&question).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("question service: clear tags: %w", err)
		}
		if err := tx.Delete(&models.Question{}, "id = ?", question.ID).Error; err != nil {
			return fmt.Errorf("question service: delete question: %w", err)
		}
		return nil
	})
}

// replaceTags sets the question's tag associations to exactly the supplied
// names, creating tags that do not exist yet. Blank and duplicate names are
// ignored.
func (s *QuestionService) replaceTags(tx *gorm.DB, question *models.Question, names []string) error {
	if names == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(names))
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		var tag models.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return fmt.Errorf("question service: ensure tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}

	if err := tx.Model(question).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("question service: replace tags: %w", err)
	}
	return nil
}

func encodeImages(images []string) (datatypes.JSON, error) {
	if images == nil {
		return nil, nil
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("question service: encode images: %w", err)
	}
	return datatypes.JSON(raw), nil
}
