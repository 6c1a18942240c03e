package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers"
	chat_handler "github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers/chat-handler"
	chat_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/chat-case"
	upload_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/upload-case"
)

func ChatRouter(r chi.Router, chat chat_service.ChatServiceContract, upload upload_service.UploadServiceContract, maxUploadBytes int64) {
	chatHandler := chat_handler.NewChatHandler(chat, upload, maxUploadBytes)

	r.Get("/api/v1/messages", handlers.WrapHandler(chatHandler.ListMessages)) // receive query param roomId
	r.Post("/api/v1/messages", handlers.WrapHandler(chatHandler.SendMessage))
	r.Post("/api/v1/upload", handlers.WrapHandler(chatHandler.UploadFile))
}
