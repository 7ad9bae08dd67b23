package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackitdev/stackit/internal/database/testutil"
	"github.com/stackitdev/stackit/internal/models"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
)

func TestAnswerServiceRequiresDB(t *testing.T) {
	_, err := NewAnswerService(nil, nil)
	require.Error(t, err)
}

func TestCreateAnswer(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	notifier, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewAnswerService(db, notifier)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	mentioned := seedUser(t, db, "mentor")
	question := seedQuestion(t, db, asker, "Needs answering")

	answer, err := svc.Create(context.Background(), CreateAnswerInput{
		QuestionID: question.ID,
		AuthorID:   answerer.ID,
		Content:    "with help from @mentor",
	})
	require.NoError(t, err)
	require.False(t, answer.IsAccepted)

	var askerRows []models.Notification
	require.NoError(t, db.Where("user_id = ?", asker.ID).Find(&askerRows).Error)
	require.Len(t, askerRows, 1)
	require.Equal(t, models.NotificationAnswer, askerRows[0].Type)

	var mentionRows []models.Notification
	require.NoError(t, db.Where("user_id = ?", mentioned.ID).Find(&mentionRows).Error)
	require.Len(t, mentionRows, 1)
	require.Equal(t, models.NotificationMention, mentionRows[0].Type)
}

func TestCreateAnswerValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAnswerService(db, nil)
	require.NoError(t, err)

	answerer := seedUser(t, db, "answerer")

	t.Run("empty content", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateAnswerInput{
			QuestionID: "whatever",
			AuthorID:   answerer.ID,
			Content:    "   ",
		})
		require.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("missing question", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateAnswerInput{
			QuestionID: "no-such-question",
			AuthorID:   answerer.ID,
			Content:    "hello",
		})
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUpdateAnswerGuardsAuthor(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAnswerService(db, nil)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	intruder := seedUser(t, db, "intruder")
	question := seedQuestion(t, db, asker, "Edit rules")
	answer := seedAnswer(t, db, question, answerer)

	_, err = svc.Update(context.Background(), intruder.ID, answer.ID, UpdateAnswerInput{Content: "hijacked"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// The question author owns the question, not the answer.
	_, err = svc.Update(context.Background(), asker.ID, answer.ID, UpdateAnswerInput{Content: "still not yours"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.Update(context.Background(), answerer.ID, answer.ID, UpdateAnswerInput{Content: "revised"})
	require.NoError(t, err)
	require.Equal(t, "revised", updated.Content)
}

func TestDeleteAnswerGuardsAuthor(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAnswerService(db, nil)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	question := seedQuestion(t, db, asker, "Delete rules")
	answer := seedAnswer(t, db, question, answerer)

	require.ErrorIs(t, svc.Delete(context.Background(), asker.ID, answer.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), answerer.ID, answer.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), answerer.ID, answer.ID), apperrors.ErrNotFound)
}

func TestDeleteAcceptedAnswerClearsAnsweredFlag(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAnswerService(db, nil)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	question := seedQuestion(t, db, asker, "Accepted then deleted")
	answer := seedAnswer(t, db, question, answerer)

	_, err = svc.Accept(context.Background(), asker.ID, answer.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), answerer.ID, answer.ID))

	var fresh models.Question
	require.NoError(t, db.First(&fresh, "id = ?", question.ID).Error)
	require.False(t, fresh.IsAnswered)
}

func TestAcceptAnswer(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	notifier, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewAnswerService(db, notifier)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	question := seedQuestion(t, db, asker, "Accept me")
	answer := seedAnswer(t, db, question, answerer)

	accepted, err := svc.Accept(context.Background(), asker.ID, answer.ID)
	require.NoError(t, err)
	require.True(t, accepted.IsAccepted)

	var fresh models.Question
	require.NoError(t, db.First(&fresh, "id = ?", question.ID).Error)
	require.True(t, fresh.IsAnswered)

	var rows []models.Notification
	require.NoError(t, db.Where("user_id = ?", answerer.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, models.NotificationAccept, rows[0].Type)
}

func TestAcceptGuardsQuestionAuthor(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAnswerService(db, nil)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	question := seedQuestion(t, db, asker, "Not yours to accept")
	answer := seedAnswer(t, db, question, answerer)

	// Even the answer's own author cannot accept it.
	_, err = svc.Accept(context.Background(), answerer.ID, answer.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAcceptSwitchesAcceptedAnswer(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAnswerService(db, nil)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	first := seedUser(t, db, "first")
	second := seedUser(t, db, "second")
	question := seedQuestion(t, db, asker, "Changed my mind")
	answerA := seedAnswer(t, db, question, first)
	answerB := seedAnswer(t, db, question, second)

	_, err = svc.Accept(context.Background(), asker.ID, answerA.ID)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), asker.ID, answerB.ID)
	require.NoError(t, err)

	var freshA, freshB models.Answer
	require.NoError(t, db.First(&freshA, "id = ?", answerA.ID).Error)
	require.NoError(t, db.First(&freshB, "id = ?", answerB.ID).Error)
	require.False(t, freshA.IsAccepted)
	require.True(t, freshB.IsAccepted)

	var fresh models.Question
	require.NoError(t, db.First(&fresh, "id = ?", question.ID).Error)
	require.True(t, fresh.IsAnswered)
}

func TestAcceptIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	notifier, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewAnswerService(db, notifier)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	question := seedQuestion(t, db, asker, "Twice accepted")
	answer := seedAnswer(t, db, question, answerer)

	_, err = svc.Accept(context.Background(), asker.ID, answer.ID)
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), asker.ID, answer.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", answerer.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUnacceptAnswer(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAnswerService(db, nil)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	question := seedQuestion(t, db, asker, "Take it back")
	answer := seedAnswer(t, db, question, answerer)

	_, err = svc.Accept(context.Background(), asker.ID, answer.ID)
	require.NoError(t, err)

	_, err = svc.Unaccept(context.Background(), answerer.ID, answer.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	unaccepted, err := svc.Unaccept(context.Background(), asker.ID, answer.ID)
	require.NoError(t, err)
	require.False(t, unaccepted.IsAccepted)

	var fresh models.Question
	require.NoError(t, db.First(&fresh, "id = ?", question.ID).Error)
	require.False(t, fresh.IsAnswered)

	// Unaccepting an answer that is not accepted is a no-op.
	_, err = svc.Unaccept(context.Background(), asker.ID, answer.ID)
	require.NoError(t, err)
}

func TestListByQuestionOrdersAcceptedFirst(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAnswerService(db, nil)
	require.NoError(t, err)

	asker := seedUser(t, db, "asker")
	answerer := seedUser(t, db, "answerer")
	question := seedQuestion(t, db, asker, "Ordering")
	seedAnswer(t, db, question, answerer)
	accepted := seedAnswer(t, db, question, answerer)
	seedAnswer(t, db, question, answerer)

	_, err = svc.Accept(context.Background(), asker.ID, accepted.ID)
	require.NoError(t, err)

	answers, err := svc.ListByQuestion(context.Background(), question.ID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	require.Equal(t, accepted.ID, answers[0].ID)
	require.True(t, answers[0].IsAccepted)
}
