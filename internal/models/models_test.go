package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBaseModelAssignsUUID(t *testing.T) {
	var m BaseModel
	require.NoError(t, m.BeforeCreate(nil))

	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
}

func TestBaseModelKeepsExplicitID(t *testing.T) {
	m := BaseModel{ID: "fixed-id"}
	require.NoError(t, m.BeforeCreate(nil))
	require.Equal(t, "fixed-id", m.ID)
}

func TestVoteDirectionValid(t *testing.T) {
	require.True(t, VoteUp.Valid())
	require.True(t, VoteDown.Valid())
	require.False(t, VoteDirection("sideways").Valid())
	require.False(t, VoteDirection("").Valid())
}
