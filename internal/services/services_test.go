package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedQuestion(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Question {
	t.Helper()

	question := &models.Question{
		Title:    title,
		Content:  "question body",
		AuthorID: author.ID,
	}
	require.NoError(t, db.Create(question).Error)
	return question
}

func seedAnswer(t *testing.T, db *gorm.DB, question *models.Question, author *models.User) *models.Answer {
	t.Helper()

	answer := &models.Answer{
		QuestionID: question.ID,
		AuthorID:   author.ID,
		Content:    "answer body",
	}
	require.NoError(t, db.Create(answer).Error)
	return answer
}
