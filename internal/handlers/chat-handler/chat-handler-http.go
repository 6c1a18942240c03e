package chat_handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers"
	chat_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/chat-case"
	upload_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/upload-case"
)

const multipartMemory = 32 << 20

type ChatHandler struct {
	Service        chat_service.ChatServiceContract
	Upload         upload_service.UploadServiceContract
	MaxUploadBytes int64
}

func NewChatHandler(service chat_service.ChatServiceContract, upload upload_service.UploadServiceContract, maxUploadBytes int64) *ChatHandler {
	return &ChatHandler{
		Service:        service,
		Upload:         upload,
		MaxUploadBytes: maxUploadBytes,
	}
}

// SendMessage runs the same ingest as the socket event. Errors go back to
// this caller only.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.SendMessageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		return err
	}

	msg, err := h.Service.SendMessage(r.Context(), req)
	if err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusCreated, handlers.CreateResponse("message sent successfully", msg, handlers.RequestID(r)))
	return nil
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	req := chat_dto.ListMessagesRequest{RoomID: r.URL.Query().Get("roomId")}

	messages, err := h.Service.ListMessages(r.Context(), req)
	if err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("messages fetch successfully", messages, handlers.RequestID(r)))
	return nil
}

// UploadFile expects a multipart form with file, roomId and optional
// expiryHours fields.
func (h *ChatHandler) UploadFile(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return app_error.NewAppError(http.StatusRequestEntityTooLarge, "File is too large.", "file")
		}
		return app_error.NewValidationError("Invalid multipart form.", "body")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return app_error.NewValidationError("File is required.", "file")
	}
	defer file.Close()

	var expiryHours int
	if raw := strings.TrimSpace(r.FormValue("expiryHours")); raw != "" {
		expiryHours, err = strconv.Atoi(raw)
		if err != nil {
			return app_error.NewValidationError("expiryHours must be a whole number.", "expiryHours")
		}
	}

	resp, appErr := h.Upload.Upload(r.Context(), chat_dto.UploadRequest{
		RoomID:       r.FormValue("roomId"),
		OriginalName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		ExpiryHours:  expiryHours,
	}, file)
	if appErr != nil {
		return appErr
	}

	handlers.WriteJSON(w, http.StatusCreated, handlers.CreateResponse("file uploaded successfully", resp, handlers.RequestID(r)))
	return nil
}
