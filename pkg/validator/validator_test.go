package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type castVotePayload struct {
	QuestionID string `json:"question_id" validate:"omitempty,uuid4"`
	Direction  string `json:"direction" validate:"required,oneof=up down"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&castVotePayload{Direction: "sideways"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 1)
	require.Equal(t, "direction", failures[0].Field)
	require.Equal(t, "oneof", failures[0].Tag)
}

func TestValidateStructPasses(t *testing.T) {
	require.NoError(t, ValidateStruct(&castVotePayload{Direction: "up"}))
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidationErrors{{Field: "direction", Tag: "oneof", Param: "up down"}}
	require.Contains(t, err.Error(), "direction failed on oneof=up down")
}
