package hub_handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/dtos/chat_dto"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/handlers"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/websocket"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/worker"
)

type SweepTrigger interface {
	TriggerAsync(ctx context.Context) bool
	Stats() worker.SchedulerStats
}

type HubHandler struct {
	Hub       *websocket.Hub
	Scheduler SweepTrigger
}

func NewHubHandler(hub *websocket.Hub, scheduler SweepTrigger) *HubHandler {
	return &HubHandler{
		Hub:       hub,
		Scheduler: scheduler,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "study-sphere",
	})
}

type statsResponse struct {
	Hub     websocket.HubStats     `json:"hub"`
	Sweeper *worker.SchedulerStats `json:"sweeper,omitempty"`
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	resp := statsResponse{Hub: h.Hub.GetHubStats()}
	if h.Scheduler != nil {
		stats := h.Scheduler.Stats()
		resp.Sweeper = &stats
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get websocket stats", resp, handlers.RequestID(r)))
	return nil
}

func (h *HubHandler) HandleGetRoomStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Hub.GetRoomStats(entity.NormalizeRoomCode(chi.URLParam(r, "code")))

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get websocket room stats", stats, handlers.RequestID(r)))
	return nil
}

// HandleTriggerSweep starts a sweep outside the timer. The sweep outlives
// the request; the scheduler still cancels it on Stop. 409 means another
// sweep holds the state here or the lease elsewhere.
func (h *HubHandler) HandleTriggerSweep(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	if h.Scheduler == nil {
		return app_error.NewAppError(http.StatusServiceUnavailable, "Sweeper is not running.", "sweep")
	}
	if !h.Scheduler.TriggerAsync(context.WithoutCancel(r.Context())) {
		return app_error.NewConflictError("A sweep is already running.", "sweep")
	}

	handlers.WriteJSON(w, http.StatusAccepted, handlers.CreateResponse("sweep started", chat_dto.SweepTriggerResponse{Started: true}, handlers.RequestID(r)))
	return nil
}
