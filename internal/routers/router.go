package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	hub_handler "github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers/hub-handler"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/middleware"
	chat_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/chat-case"
	room_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/room-case"
	upload_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/upload-case"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/websocket"
)

type Dependencies struct {
	Chat      chat_service.ChatServiceContract
	Rooms     room_service.RoomServiceContract
	Upload    upload_service.UploadServiceContract
	Hub       *websocket.Hub
	WS        *websocket.WebSocketHandler
	Scheduler hub_handler.SweepTrigger

	ClientOrigin   string
	MaxUploadBytes int64
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Use(middleware.WithCORS(deps.ClientOrigin))

	RoomRouter(r, deps.Rooms)
	ChatRouter(r, deps.Chat, deps.Upload, deps.MaxUploadBytes)
	HubRouter(r, deps.Hub, deps.Scheduler)

	if deps.WS != nil {
		r.Get("/ws", deps.WS.HandleWS)
	}
	return r
}
