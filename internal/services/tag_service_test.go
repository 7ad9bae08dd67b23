package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackitdev/stackit/internal/database/testutil"
	"github.com/stackitdev/stackit/internal/models"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
)

func TestTagServiceCRUD(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewTagService(db)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateTagInput{
		Name:        "go",
		Description: "the Go programming language",
	})
	require.NoError(t, err)
	require.Equal(t, "go", created.Name)

	_, err = svc.Create(context.Background(), CreateTagInput{Name: "go"})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Create(context.Background(), CreateTagInput{Name: "  "})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	byName, err := svc.GetByName(context.Background(), "go")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	_, err = svc.GetByName(context.Background(), "rust")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	description := "updated"
	updated, err := svc.Update(context.Background(), created.ID, UpdateTagInput{Description: &description})
	require.NoError(t, err)
	require.Equal(t, "updated", updated.Description)

	_, err = svc.Create(context.Background(), CreateTagInput{Name: "sql"})
	require.NoError(t, err)

	tags, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "go", tags[0].Name)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), apperrors.ErrNotFound)
}

func TestTagDeleteClearsQuestionLinks(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	tags, err := NewTagService(db)
	require.NoError(t, err)
	questions, err := NewQuestionService(db, nil)
	require.NoError(t, err)

	author := seedUser(t, db, "author")
	question, err := questions.Create(context.Background(), CreateQuestionInput{
		AuthorID: author.ID,
		Title:    "Tagged",
		Content:  "body",
		Tags:     []string{"ephemeral"},
	})
	require.NoError(t, err)
	require.Len(t, question.Tags, 1)

	require.NoError(t, tags.Delete(context.Background(), question.Tags[0].ID))

	reloaded, err := questions.Get(context.Background(), question.ID)
	require.NoError(t, err)
	require.Empty(t, reloaded.Tags)

	var count int64
	require.NoError(t, db.Model(&models.Question{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
