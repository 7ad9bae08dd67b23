package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackitdev/stackit/internal/database/testutil"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
)

func TestUserServiceRequiresDB(t *testing.T) {
	_, err := NewUserService(nil)
	require.Error(t, err)
}

func TestRegisterUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "gopher",
		Email:    "Gopher@Example.com",
		Password: "correct horse",
		FullName: "Go Gopher",
	})
	require.NoError(t, err)
	require.Equal(t, "gopher", user.Username)
	require.Equal(t, "gopher@example.com", user.Email)
	require.NotEqual(t, "correct horse", user.Password)
	require.True(t, user.IsActive)
}

func TestRegisterUserValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterUserInput{Email: "a@b.c", Password: "longenough"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Register(context.Background(), RegisterUserInput{Username: "x", Password: "longenough"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Register(context.Background(), RegisterUserInput{Username: "x", Email: "a@b.c", Password: "short"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	input := RegisterUserInput{Username: "taken", Email: "taken@example.com", Password: "longenough"}
	_, err = svc.Register(context.Background(), input)
	require.NoError(t, err)

	input.Email = "other@example.com"
	_, err = svc.Register(context.Background(), input)
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterUserInput{
		Username: "loginuser",
		Email:    "login@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	t.Run("by username", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "loginuser", "sup3rsecret")
		require.NoError(t, err)
		require.Equal(t, "loginuser", user.Username)
	})

	t.Run("by email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "login@example.com", "sup3rsecret")
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "loginuser", "wrong")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody", "sup3rsecret")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestAuthenticateInactiveUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "dormant",
		Email:    "dormant@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = svc.Authenticate(context.Background(), "dormant", "sup3rsecret")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUpdateUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "profile",
		Email:    "profile@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	fullName := "Full Name"
	password := "newpassword"
	updated, err := svc.Update(context.Background(), user.ID, UpdateUserInput{
		FullName: &fullName,
		Password: &password,
	})
	require.NoError(t, err)
	require.Equal(t, "Full Name", updated.FullName)

	_, err = svc.Authenticate(context.Background(), "profile", "newpassword")
	require.NoError(t, err)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterUserInput{
		Username: "first", Email: "first@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "second", Email: "second@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)

	email := "first@example.com"
	_, err = svc.Update(context.Background(), second.ID, UpdateUserInput{Email: &email})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGetAndListUsers(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	created := seedUser(t, db, "zeta")
	seedUser(t, db, "alpha")

	byID, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "zeta", byID.Username)

	byName, err := svc.GetByUsername(context.Background(), "alpha")
	require.NoError(t, err)
	require.Equal(t, "alpha", byName.Username)

	_, err = svc.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	users, err := svc.List(context.Background(), ListUsersInput{})
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "alpha", users[0].Username)
}

func TestDeleteUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	user := seedUser(t, db, "goner")
	require.NoError(t, svc.Delete(context.Background(), user.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), user.ID), apperrors.ErrNotFound)
}
