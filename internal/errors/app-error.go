package app_error

import (
	"encoding/json"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindStore        Kind = "store"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindBlobNotFound Kind = "blob_not_found"
	KindBlob         Kind = "blob"
	KindInternal     Kind = "internal"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	Err     error  `json:"-"`
}

func (e AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e AppError) Unwrap() error {
	return e.Err
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

// Is reports whether e is of the given kind. Safe on a nil receiver.
func (e *AppError) Is(kind Kind) bool {
	return e != nil && e.Kind == kind
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Message: msg,
		Field:   field,
		Kind:    KindInternal,
	}
}

func NewValidationError(msg, field string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg, Field: field, Kind: KindValidation}
}

func NewStoreError(msg, field string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: msg, Field: field, Kind: KindStore, Err: err}
}

func NewNotFoundError(msg, field string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: msg, Field: field, Kind: KindNotFound}
}

func NewConflictError(msg, field string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: msg, Field: field, Kind: KindConflict}
}

func NewBlobNotFoundError(name string, err error) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: "blob not found", Field: name, Kind: KindBlobNotFound, Err: err}
}

func NewBlobError(msg, name string, err error) *AppError {
	return &AppError{Code: http.StatusBadGateway, Message: msg, Field: name, Kind: KindBlob, Err: err}
}
