package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers"
	room_handler "github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers/room-handler"
	room_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/room-case"
)

func RoomRouter(r chi.Router, rooms room_service.RoomServiceContract) {
	roomHandler := room_handler.NewRoomHandler(rooms)

	r.Post("/api/v1/rooms", handlers.WrapHandler(roomHandler.CreateRoom))
	r.Get("/api/v1/rooms/{code}", handlers.WrapHandler(roomHandler.GetRoom))
	r.Post("/api/v1/rooms/{code}/members", handlers.WrapHandler(roomHandler.JoinRoom))
	r.Delete("/api/v1/rooms/{code}/members/{clientId}", handlers.WrapHandler(roomHandler.LeaveRoom))
}
