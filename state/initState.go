package state

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/kellalakshmisrharsha/study-sphere-backend/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

type AppState struct {
	Ctx       context.Context
	Cancel    context.CancelFunc
	DB        *gorm.DB
	Mongo     *mongo.Client
	MongoName string
	Redis     *redis.Client
	Blob      *azblob.Client
	Container string
}

func (a *AppState) MongoDB() *mongo.Database {
	return a.Mongo.Database(a.MongoName)
}

// InitAppState opens the record store selected by DATABASE.DRIVER, the blob
// container and, when an address is configured, Redis.
func InitAppState(ctx context.Context, cancel context.CancelFunc) (*AppState, error) {
	conf := config.Conf
	appState := &AppState{
		Ctx:       ctx,
		Cancel:    cancel,
		MongoName: conf.DATABASE.Mongo.Name,
		Container: conf.STORAGE.Container,
	}

	switch conf.DATABASE.Driver {
	case config.DriverPostgres:
		db, _, err := InitPostgres(conf.DATABASE.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		appState.DB = db
	case config.DriverMongo:
		mongoClient, err := InitMongo(ctx, conf.DATABASE.Mongo.Url)
		if err != nil {
			return nil, err
		}
		appState.Mongo = mongoClient
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.DATABASE.Driver)
	}

	blobClient, err := InitBlob(ctx, conf.STORAGE.ConnectionString, conf.STORAGE.Container)
	if err != nil {
		appState.Close()
		return nil, err
	}
	appState.Blob = blobClient

	if addr := conf.DATABASE.Redis.Addr; addr != "" {
		rdb, err := InitRedis(addr, conf.DATABASE.Redis.Password, conf.DATABASE.Redis.DB)
		if err != nil {
			appState.Close()
			return nil, err
		}
		appState.Redis = rdb
	} else {
		log.Warn().Msg("redis address not configured, using in-process room cache and no sweep lease")
	}

	return appState, nil
}

func (a *AppState) Close() {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			log.Info().Msg("Closing PostgreSQL database connection...")
			sqlDB.Close()
		}
	}

	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		log.Info().Msg("Closing MongoDB client...")
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect MongoDB client")
		}
	}

	if a.Redis != nil {
		log.Info().Msg("Closing Redis client...")
		if err := a.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis client")
		}
	}
}
