package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers"
	hub_handler "github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers/hub-handler"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/websocket"
)

func HubRouter(r chi.Router, wsHub *websocket.Hub, scheduler hub_handler.SweepTrigger) {
	hubHandler := hub_handler.NewHubHandler(wsHub, scheduler)

	// Health stats
	r.Get("/api/v1/health", hubHandler.HandleHealth)
	r.Get("/api/v1/stats", handlers.WrapHandler(hubHandler.HandleGetStats))
	r.Get("/api/v1/rooms/{code}/stats", handlers.WrapHandler(hubHandler.HandleGetRoomStats))

	r.Post("/api/v1/sweeps", handlers.WrapHandler(hubHandler.HandleTriggerSweep))
}
