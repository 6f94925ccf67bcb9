package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"product-catalog/pkg/envelope"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomString(t *testing.T) {
	t.Parallel()

	a, err := RandomString(80)
	require.NoError(t, err)
	b, err := RandomString(80)
	require.NoError(t, err)

	assert.Len(t, a, 80)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[A-Za-z0-9]+$`, a)
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jane@example.com", SanitizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "Desk lamp", SanitizeString(" <b>Desk lamp</b>\x00 "))
	assert.Equal(t, "line one\nline two", SanitizeText("<p>line one\nline two</p>"))
	assert.Equal(t, "A & B", SanitizeString("A & B"))
}

func TestRespond_UsesEnvelopeStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, envelope.NotFound[envelope.None]("No result is found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "No result is found", body["message"])
	assert.Nil(t, body["payload"])
	assert.Equal(t, float64(404), body["status"])
}

func TestErrorResponse_Aborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponse(c, http.StatusTooManyRequests, "slow down")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"slow down","payload":null,"status":429}`, w.Body.String())
}
