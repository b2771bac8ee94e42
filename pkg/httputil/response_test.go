package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]any{"config": map[string]any{"snapshot": true}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["config"])
}

func TestWriteErrorDefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("boom"), map[string]any{"build": map[string]any{"id": "abc"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "boom", body["error"])
	assert.NotNil(t, body["build"])
}

func TestWriteErrorDeclaredStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewAPIError(http.StatusUnprocessableEntity, "bad %s", "config"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "bad config", decode(t, rec)["error"])
}

func TestStatusOfWrappedError(t *testing.T) {
	err := fmt.Errorf("applying config: %w", NewAPIError(http.StatusBadRequest, "no"))
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}
