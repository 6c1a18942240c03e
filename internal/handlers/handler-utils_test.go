package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapHandler_WritesErrorEnvelope(t *testing.T) {
	h := WrapHandler(func(w http.ResponseWriter, r *http.Request) *app_error.AppError {
		return app_error.NewValidationError("Room ID is required.", "roomId")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIdKey, "req-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body dtos.Response[any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body.RequestID)
	require.NotNil(t, body.Errors)
	assert.Equal(t, http.StatusBadRequest, body.Errors.Code)
	assert.Equal(t, "roomId", body.Errors.Field)
	assert.Equal(t, "Room ID is required.", body.Errors.Message)
}

func TestWrapHandler_SuccessLeavesResponseAlone(t *testing.T) {
	h := WrapHandler(func(w http.ResponseWriter, r *http.Request) *app_error.AppError {
		WriteJSON(w, http.StatusCreated, CreateResponse("ok", 42, RequestID(r)))
		return nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body dtos.Response[int]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 42, body.Data)
	assert.Equal(t, "unknown", body.RequestID)
	assert.Nil(t, body.Errors)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}`))
	assert.Nil(t, DecodeJSON(req, &v))
	assert.Equal(t, "alice", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := DecodeJSON(req, &v)
	require.NotNil(t, err)
	assert.Equal(t, "Request body is required.", err.Message)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	err = DecodeJSON(req, &v)
	require.NotNil(t, err)
	assert.True(t, err.Is(app_error.KindValidation))
}
