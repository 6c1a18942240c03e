package room_handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers"
	room_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/room-case"
)

type RoomHandler struct {
	Service room_service.RoomServiceContract
}

func NewRoomHandler(service room_service.RoomServiceContract) *RoomHandler {
	return &RoomHandler{Service: service}
}

func toResponse(room *entity.Room) chat_dto.RoomResponse {
	members := room.Members
	if members == nil {
		members = []string{}
	}
	return chat_dto.RoomResponse{
		Code:      room.Code,
		Creator:   room.Creator,
		Members:   members,
		CreatedAt: room.CreatedAt,
		ExpiresAt: room.ExpiresAt,
	}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.CreateRoomRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		return err
	}

	room, err := h.Service.CreateRoom(r.Context(), req)
	if err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusCreated, handlers.CreateResponse("room created", toResponse(room), handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	room, err := h.Service.GetRoom(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("room fetch successfully", toResponse(room), handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.JoinRoomRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		return err
	}

	room, err := h.Service.Join(r.Context(), chi.URLParam(r, "code"), req.ClientID)
	if err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("joined room", toResponse(room), handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	if err := h.Service.Leave(r.Context(), chi.URLParam(r, "code"), chi.URLParam(r, "clientId")); err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("left room", "OK", handlers.RequestID(r)))
	return nil
}
