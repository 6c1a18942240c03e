package websocket

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	chat_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/chat-case"
	room_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/room-case"
	"github.com/rs/zerolog/log"
)

type WebSocketHandler struct {
	hub      *Hub
	chat     chat_service.ChatServiceContract
	rooms    room_service.RoomServiceContract
	upgrader websocket.Upgrader

	MaxConnections int
}

func NewWebSocketHandler(hub *Hub, chat chat_service.ChatServiceContract, rooms room_service.RoomServiceContract, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		chat:  chat,
		rooms: rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigin),
		},
	}
}

// HandleWS upgrades the request and serves the socket until it closes.
// Optional query parameters: clientId names the caller, roomId joins a room
// right away.
func (h *WebSocketHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	if h.MaxConnections > 0 && h.hub.ConnectionCount() >= h.MaxConnections {
		log.Warn().Str("ip", getClientIP(r)).Int("max", h.MaxConnections).Msg("ws: connection limit reached")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("ip", getClientIP(r)).Msg("ws: upgrade failed")
		return
	}

	query := r.URL.Query()
	client := newClient(h.hub.ctx, uuid.NewString(), strings.TrimSpace(query.Get("clientId")), conn)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	go client.writePump()

	if roomID := query.Get("roomId"); roomID != "" {
		h.joinRoom(client, chat_dto.WSRoomData{RoomID: roomID})
	}

	client.readPump(h.dispatch)
}

func (h *WebSocketHandler) dispatch(c *Client, raw []byte) {
	var in chat_dto.WSIncomingMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		h.sendError(c, "", app_error.NewValidationError("Invalid message format.", "event"))
		return
	}

	switch in.Event {
	case chat_dto.EventJoinRoom:
		data, appErr := decodeRoomData(in.Data)
		if appErr != nil {
			h.sendError(c, "", appErr)
			return
		}
		h.joinRoom(c, data)

	case chat_dto.EventLeaveRoom:
		data, appErr := decodeRoomData(in.Data)
		if appErr != nil {
			h.sendError(c, "", appErr)
			return
		}
		h.leaveRoom(c, data)

	case chat_dto.EventSendMessage:
		var req chat_dto.SendMessageRequest
		if err := json.Unmarshal(in.Data, &req); err != nil {
			h.sendError(c, "", app_error.NewValidationError("Invalid message payload.", "data"))
			return
		}
		if _, appErr := h.chat.SendMessage(c.ctx, req); appErr != nil {
			h.sendError(c, entity.NormalizeRoomCode(req.RoomID), appErr)
		}

	default:
		h.sendError(c, "", app_error.NewValidationError("Unknown event.", "event"))
	}
}

// decodeRoomData accepts {"roomId": ...} or a bare room id string.
func decodeRoomData(raw []byte) (chat_dto.WSRoomData, *app_error.AppError) {
	var data chat_dto.WSRoomData
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		data.RoomID = bare
	} else if err := json.Unmarshal(raw, &data); err != nil {
		return data, app_error.NewValidationError("Invalid room payload.", "data")
	}

	data.RoomID = entity.NormalizeRoomCode(data.RoomID)
	data.ClientID = strings.TrimSpace(data.ClientID)
	if data.RoomID == "" {
		return data, app_error.NewValidationError("Room ID is required.", "roomId")
	}
	return data, nil
}

// joinRoom records membership when the caller is identified, then
// subscribes the socket. A failed membership update leaves the socket out.
func (h *WebSocketHandler) joinRoom(c *Client, data chat_dto.WSRoomData) {
	roomID := entity.NormalizeRoomCode(data.RoomID)
	clientID := data.ClientID
	if clientID == "" {
		clientID = c.ClientID()
	}

	if clientID != "" {
		if _, appErr := h.rooms.Join(c.ctx, roomID, clientID); appErr != nil {
			h.sendError(c, roomID, appErr)
			return
		}
		c.adoptIdentity(clientID)
	}
	h.hub.Join(roomID, c)
}

func (h *WebSocketHandler) leaveRoom(c *Client, data chat_dto.WSRoomData) {
	h.hub.Leave(data.RoomID, c)

	clientID := data.ClientID
	if clientID == "" {
		clientID = c.ClientID()
	}
	if clientID == "" {
		return
	}
	if appErr := h.rooms.Leave(c.ctx, data.RoomID, clientID); appErr != nil {
		h.sendError(c, data.RoomID, appErr)
	}
}

func (h *WebSocketHandler) sendError(c *Client, roomID string, appErr *app_error.AppError) {
	log.Debug().Str("connID", c.ID).Str("roomID", roomID).Str("error", appErr.Message).Msg("ws: rejecting client request")
	h.hub.SendEvent(c, chat_dto.EventErrorMessage, roomID, chat_dto.WSError{
		Error: appErr.Message,
		Field: appErr.Field,
	})
}
