package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/rs/zerolog/log"
)

// Hub is the room broadcast channel. A client may be joined to several
// rooms; delivery is to currently joined, connected clients only.
type Hub struct {
	// Room management
	rooms       map[string]map[*Client]struct{}
	clientRooms map[*Client]map[string]struct{}
	mu          sync.RWMutex

	// Hub lifecycle
	ctx    context.Context
	cancel context.CancelFunc

	// Metrics
	stats   HubStats
	statsMu sync.Mutex

	cleanupTicker *time.Ticker
}

type HubStats struct {
	TotalRooms       int       `json:"total_rooms"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessageSent      int64     `json:"message_sent"`
	SlowConsumers    int64     `json:"slow_consumers"`
	LastReset        time.Time `json:"last_reset"`
}

type RoomStats struct {
	RoomID      string `json:"room_id"`
	Exists      bool   `json:"exists"`
	Connections int    `json:"connections"`
	UniqueUsers int    `json:"unique_users"`
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	hub := &Hub{
		rooms:         make(map[string]map[*Client]struct{}),
		clientRooms:   make(map[*Client]map[string]struct{}),
		ctx:           ctx,
		cancel:        cancel,
		stats:         HubStats{LastReset: time.Now()},
		cleanupTicker: time.NewTicker(1 * time.Minute),
	}

	go hub.cleanupRoutine()

	return hub
}

// Register tracks a connected client that has not joined any room yet.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clientRooms[client] = make(map[string]struct{})
	h.mu.Unlock()

	h.updateStats(func(stats *HubStats) {
		stats.TotalConnections++
	})
	log.Info().Str("connID", client.ID).Str("clientID", client.ClientID()).Msg("ws: client connected")
}

// Unregister removes a client from every room it joined.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	joined := h.clientRooms[client]
	delete(h.clientRooms, client)
	for roomID := range joined {
		h.removeLocked(roomID, client)
	}
	h.mu.Unlock()

	for roomID := range joined {
		h.broadcastUserStatus(roomID, client, false)
	}
	log.Info().Str("connID", client.ID).Int("rooms", len(joined)).Msg("ws: client disconnected")
}

// Join subscribes client to roomID. Joining twice is a no-op.
func (h *Hub) Join(roomID string, client *Client) {
	h.mu.Lock()
	joined, ok := h.clientRooms[client]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, already := joined[roomID]; already {
		h.mu.Unlock()
		return
	}
	joined[roomID] = struct{}{}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	size := len(h.rooms[roomID])
	h.mu.Unlock()

	h.broadcastUserStatus(roomID, client, true)
	log.Debug().Str("roomID", roomID).Str("connID", client.ID).Int("roomSize", size).Msg("ws: client joined room")
}

// Leave unsubscribes client from roomID. Leaving a room not joined is a no-op.
func (h *Hub) Leave(roomID string, client *Client) {
	h.mu.Lock()
	joined, ok := h.clientRooms[client]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := joined[roomID]; !member {
		h.mu.Unlock()
		return
	}
	delete(joined, roomID)
	h.removeLocked(roomID, client)
	h.mu.Unlock()

	h.broadcastUserStatus(roomID, client, false)
}

func (h *Hub) removeLocked(roomID string, client *Client) {
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastToRoom sends an event to every client joined to roomID, the
// sender included. Sends never block, so per-client order follows call order.
func (h *Hub) BroadcastToRoom(roomID, event string, payload any) {
	h.broadcastToRoomInternal(roomID, event, payload, nil)
}

func (h *Hub) broadcastToRoomInternal(roomID, event string, payload any, except *Client) {
	data, err := encodeEvent(event, roomID, payload)
	if err != nil {
		log.Error().Err(err).Str("roomID", roomID).Msg("ws: failed to marshal broadcast message")
		return
	}

	// snapshot, send outside the lock
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for client := range h.rooms[roomID] {
		if client != except {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, client := range targets {
		if h.deliver(client, data) {
			sent++
		}
	}

	h.updateStats(func(stats *HubStats) {
		stats.MessageSent += int64(sent)
	})
	log.Debug().Str("roomID", roomID).Str("event", event).Int("targets", sent).Msg("ws: broadcast completed")
}

// SendEvent delivers an event to one client only.
func (h *Hub) SendEvent(client *Client, event, roomID string, payload any) {
	data, err := encodeEvent(event, roomID, payload)
	if err != nil {
		log.Error().Err(err).Str("connID", client.ID).Msg("ws: failed to marshal event")
		return
	}
	if h.deliver(client, data) {
		h.updateStats(func(stats *HubStats) {
			stats.MessageSent++
		})
	}
}

func (h *Hub) deliver(client *Client, data []byte) bool {
	if client.enqueue(data) {
		return true
	}
	if client.IsClientActive() {
		log.Warn().Str("connID", client.ID).Msg("ws: slow consumer, dropping connection")
		h.updateStats(func(stats *HubStats) {
			stats.SlowConsumers++
		})
		go client.Close()
	}
	return false
}

// RemoveRoom tells the room's clients it is gone and unsubscribes them.
func (h *Hub) RemoveRoom(roomID, reason string) {
	h.BroadcastToRoom(roomID, chat_dto.EventRoomDeleted, chat_dto.WSRoomDeleted{RoomID: roomID, Reason: reason})

	h.mu.Lock()
	for client := range h.rooms[roomID] {
		if joined, ok := h.clientRooms[client]; ok {
			delete(joined, roomID)
		}
	}
	delete(h.rooms, roomID)
	h.mu.Unlock()
}

// Utility methods

func (h *Hub) IsJoined(roomID string, client *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][client]
	return ok
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientRooms)
}

func (h *Hub) GetRoomStats(roomID string) RoomStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := RoomStats{RoomID: roomID}
	clients, ok := h.rooms[roomID]
	if !ok {
		return stats
	}

	users := make(map[string]struct{})
	for client := range clients {
		if id := client.ClientID(); id != "" {
			users[id] = struct{}{}
		}
	}
	stats.Exists = true
	stats.Connections = len(clients)
	stats.UniqueUsers = len(users)
	return stats
}

func (h *Hub) GetHubStats() HubStats {
	h.mu.RLock()
	rooms, clients := len(h.rooms), len(h.clientRooms)
	h.mu.RUnlock()

	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	h.stats.TotalRooms = rooms
	h.stats.TotalClients = clients
	return h.stats
}

func (h *Hub) broadcastUserStatus(roomID string, client *Client, online bool) {
	status := "offline"
	if online {
		status = "online"
	}
	h.broadcastToRoomInternal(roomID, chat_dto.EventUserStatus, chat_dto.WSUserStatus{
		ClientID: client.ClientID(),
		Status:   status,
	}, client)
}

func (h *Hub) updateStats(fn func(*HubStats)) {
	h.statsMu.Lock()
	fn(&h.stats)
	h.statsMu.Unlock()
}

func (h *Hub) cleanupRoutine() {
	defer h.cleanupTicker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.cleanupTicker.C:
			h.performCleanup()
		}
	}
}

// performCleanup closes clients that stopped answering pings.
func (h *Hub) performCleanup() {
	threshold := time.Now().Add(-2 * pongWait)

	var stale []*Client
	h.mu.RLock()
	for client := range h.clientRooms {
		if !client.IsClientActive() || client.GetLastSeen().Before(threshold) {
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		log.Info().Str("connID", client.ID).Msg("ws: cleaning up inactive client")
		client.Close()
	}
}

// Close gracefully shuts down the hub
func (h *Hub) Close() {
	log.Info().Msg("ws: shutting down hub")
	h.cancel()

	h.mu.RLock()
	all := make([]*Client, 0, len(h.clientRooms))
	for client := range h.clientRooms {
		all = append(all, client)
	}
	h.mu.RUnlock()

	for _, client := range all {
		client.Close()
	}
	log.Info().Int("clients", len(all)).Msg("ws: hub shutdown completed")
}
