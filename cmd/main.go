package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kellalakshmisrharsha/study-sphere-backend/config"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/entity"
	blob_repo "github.com/kellalakshmisrharsha/study-sphere-backend/internal/repo/blob"
	chat_repo "github.com/kellalakshmisrharsha/study-sphere-backend/internal/repo/chat"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/routers"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/sweeper"
	chat_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/chat-case"
	room_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/room-case"
	upload_service "github.com/kellalakshmisrharsha/study-sphere-backend/internal/use-case/upload-case"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/utils"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/websocket"
	"github.com/kellalakshmisrharsha/study-sphere-backend/internal/worker"
	"github.com/kellalakshmisrharsha/study-sphere-backend/state"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const roomCacheTTL = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize the application
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	conf := config.Conf

	if level, err := zerolog.ParseLevel(conf.App.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	state, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer state.Close()

	if err := prepareStore(ctx, state); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare record store")
	}

	chatRepo := chat_repo.NewChatRepo(state)
	blobRepo := blob_repo.NewBlobRepo(state)

	wsHub := websocket.NewHub()
	log.Info().Msg("Websocket hub initialized")

	roomCache := utils.NewCache[entity.Room](state.Redis, "room:", roomCacheTTL)
	roomService := room_service.NewRoomService(chatRepo, roomCache, time.Duration(conf.SWEEPER.RoomTTLHours)*time.Hour)
	chatService := chat_service.NewChatService(chatRepo, wsHub, conf.STORAGE.MaxExpiryHours)
	uploadService := upload_service.NewUploadService(blobRepo, chatRepo, conf.STORAGE.MaxExpiryHours)

	wsHandler := websocket.NewWebSocketHandler(wsHub, chatService, roomService, conf.App.ClientOrigin)
	wsHandler.MaxConnections = conf.WEBSOCKET.MaxConnections
	log.Info().Msg("Websocket handler initialized")

	sw := sweeper.NewSweeper(chatRepo, blobRepo, sweeper.Options{
		ExpiredRooms:   conf.SWEEPER.ExpiredRooms,
		EmptyRooms:     conf.SWEEPER.EmptyRooms,
		EmptyRoomGrace: conf.SWEEPER.EmptyRoomGrace,
	})
	sw.OnRoomDeleted = func(ctx context.Context, room *entity.Room, reason string) {
		wsHub.RemoveRoom(room.Code, reason)
		roomService.Evict(ctx, room.Code)
	}

	var lease worker.Lease
	if state.Redis != nil {
		lease = worker.NewRedisLease(state.Redis, worker.DefaultLeaseKey, conf.SWEEPER.LeaseTTL)
	}
	scheduler := worker.NewSweepScheduler(sw, conf.SWEEPER.Interval, lease)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start sweep scheduler")
	}

	r := routers.NewRouter(routers.Dependencies{
		Chat:           chatService,
		Rooms:          roomService,
		Upload:         uploadService,
		Hub:            wsHub,
		WS:             wsHandler,
		Scheduler:      scheduler,
		ClientOrigin:   conf.App.ClientOrigin,
		MaxUploadBytes: conf.STORAGE.MaxUploadBytes,
	})

	// no WriteTimeout: websocket connections are long lived
	server := &http.Server{
		Addr:        conf.App.Port,
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// serve the application
	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")
	// gracefully shutdown the application
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop()
	wsHub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("Server exited gracefully.")
	}
}

// prepareStore creates the indexes or tables the chosen record store needs.
func prepareStore(ctx context.Context, appState *state.AppState) error {
	if appState.Mongo != nil {
		return chat_repo.NewMongoChatRepo(appState.MongoDB()).EnsureIndexes(ctx)
	}
	return chat_repo.NewSQLChatRepo(appState.DB).AutoMigrate()
}
