package handlers

import (
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/middleware"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

func WrapHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			reqID := RequestID(r)
			event := log.Warn()
			if err.Code >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.Err(err).Str("kind", string(err.Kind)).Msg(fmt.Sprintf("error occur, request id: %s", reqID))
			WriteJSON(w, err.Code, dtos.Response[any]{
				Message: "Error occur",
				Errors: &dtos.ErrorResponse{
					Code:    err.Code,
					Field:   err.Field,
					Message: err.Message,
				},
				RequestID: reqID,
			})
		}
	}
}

func CreateResponse[T any](message string, data T, requestId string) dtos.Response[T] {
	return dtos.Response[T]{
		Message:   message,
		Data:      data,
		RequestID: requestId,
	}
}

func RequestID(r *http.Request) string {
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		return "unknown"
	}
	return reqID
}

// DecodeJSON reads a JSON body into v.
func DecodeJSON(r *http.Request, v any) *app_error.AppError {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err == io.EOF {
			return app_error.NewValidationError("Request body is required.", "body")
		}
		return app_error.NewValidationError("Invalid JSON", "body")
	}
	return nil
}
