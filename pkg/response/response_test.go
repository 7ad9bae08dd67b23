package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/stackitdev/stackit/pkg/errors"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestSuccessEnvelope(t *testing.T) {
	c, rec := newTestContext(t)

	Success(c, http.StatusOK, gin.H{"id": "q-1"})

	require.Equal(t, http.StatusOK, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Nil(t, body.Error)
}

func TestErrorUsesAppErrorStatus(t *testing.T) {
	c, rec := newTestContext(t)

	Error(c, appErrors.ErrForbidden)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestErrorHidesInternalDetails(t *testing.T) {
	c, rec := newTestContext(t)

	Error(c, errors.New("pq: connection reset"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection reset")
}
