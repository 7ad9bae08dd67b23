package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/models"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
)

// CreateTagInput carries the fields needed to create a tag.
type CreateTagInput struct {
	Name        string
	Description string
}

// UpdateTagInput carries the editable tag fields.
type UpdateTagInput struct {
	Description *string
}

// TagService manages the tag catalogue.
type TagService struct {
	db *gorm.DB
}

// NewTagService constructs a TagService.
func NewTagService(db *gorm.DB) (*TagService, error) {
	if db == nil {
		return nil, errors.New("tag service: db is required")
	}
	return &TagService{db: db}, nil
}

// Create stores a new tag. Name collisions surface as conflicts.
func (s *TagService) Create(ctx context.Context, input CreateTagInput) (*models.Tag, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("tag name is required")
	}

	tag := &models.Tag{Name: name, Description: input.Description}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("tag service: create tag: %w", err)
	}
	return tag, nil
}

// Get loads a tag by id.
func (s *TagService) Get(ctx context.Context, id string) (*models.Tag, error) {
	ctx = ensureContext(ctx)

	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("tag service: load tag: %w", err)
	}
	return &tag, nil
}

// GetByName loads a tag by its unique name.
func (s *TagService) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	ctx = ensureContext(ctx)

	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("tag service: load tag: %w", err)
	}
	return &tag, nil
}

// List returns all tags ordered by name.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	ctx = ensureContext(ctx)

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("tag service: list tags: %w", err)
	}
	return tags, nil
}

// Update edits a tag's description. Names are immutable once created so
// question associations stay stable.
func (s *TagService) Update(ctx context.Context, id string, input UpdateTagInput) (*models.Tag, error) {
	ctx = ensureContext(ctx)

	tag, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Description == nil {
		return tag, nil
	}

	if err := s.db.WithContext(ctx).Model(tag).Update("description", *input.Description).Error; err != nil {
		return nil, fmt.Errorf("tag service: update tag: %w", err)
	}
	tag.Description = *input.Description
	return tag, nil
}

// Delete removes a tag and its question associations.
func (s *TagService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	tag, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(tag).Association("Questions").Clear(); err != nil {
			return fmt.Errorf("tag service: clear question links: %w", err)
		}
		if err := tx.Delete(&models.Tag{}, "id = ?", tag.ID).Error; err != nil {
			return fmt.Errorf("tag service: delete tag: %w", err)
		}
		return nil
	})
}
