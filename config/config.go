package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name         string `mapstructure:"NAME"`
		Port         string `mapstructure:"PORT"`
		ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`
		LogLevel     string `mapstructure:"LOG_LEVEL"`
	}

	DATABASE struct {
		Driver string `mapstructure:"DRIVER"`
		Mongo  struct {
			Url  string `mapstructure:"URL"`
			Name string `mapstructure:"NAME"`
		}
		Postgres struct {
			DSN string `mapstructure:"URL"`
		}
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
			DB       int    `mapstructure:"DB"`
		}
	}

	STORAGE struct {
		ConnectionString string `mapstructure:"CONNECTION_STRING"`
		Container        string `mapstructure:"CONTAINER"`
		MaxUploadBytes   int64  `mapstructure:"MAX_UPLOAD_BYTES"`
		MaxExpiryHours   int    `mapstructure:"MAX_EXPIRY_HOURS"`
	}

	SWEEPER struct {
		Interval       time.Duration `mapstructure:"INTERVAL"`
		ExpiredRooms   bool          `mapstructure:"EXPIRED_ROOMS"`
		EmptyRooms     bool          `mapstructure:"EMPTY_ROOMS"`
		EmptyRoomGrace time.Duration `mapstructure:"EMPTY_ROOM_GRACE"`
		RoomTTLHours   int           `mapstructure:"ROOM_TTL_HOURS"`
		LeaseTTL       time.Duration `mapstructure:"LEASE_TTL"`
	}

	WEBSOCKET struct {
		MaxConnections int `mapstructure:"MAX_CONNECTIONS"`
	}
}

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

var Conf *AppConfig

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP.NAME", "study-sphere")
	v.SetDefault("APP.PORT", ":4000")
	v.SetDefault("APP.CLIENT_ORIGIN", "*")
	v.SetDefault("APP.LOG_LEVEL", "info")

	v.SetDefault("DATABASE.DRIVER", DriverMongo)
	v.SetDefault("DATABASE.MONGO.URL", "")
	v.SetDefault("DATABASE.MONGO.NAME", "study_sphere")
	v.SetDefault("DATABASE.POSTGRES.URL", "")
	v.SetDefault("DATABASE.REDIS.ADDR", "")
	v.SetDefault("DATABASE.REDIS.PASSWORD", "")
	v.SetDefault("DATABASE.REDIS.DB", 0)

	v.SetDefault("STORAGE.CONNECTION_STRING", "")
	v.SetDefault("STORAGE.CONTAINER", "uploads")
	v.SetDefault("STORAGE.MAX_UPLOAD_BYTES", 100<<20)
	v.SetDefault("STORAGE.MAX_EXPIRY_HOURS", 30*24)

	v.SetDefault("SWEEPER.INTERVAL", time.Hour)
	v.SetDefault("SWEEPER.EXPIRED_ROOMS", true)
	v.SetDefault("SWEEPER.EMPTY_ROOMS", true)
	v.SetDefault("SWEEPER.EMPTY_ROOM_GRACE", time.Duration(0))
	v.SetDefault("SWEEPER.ROOM_TTL_HOURS", 0)
	v.SetDefault("SWEEPER.LEASE_TTL", 30*time.Minute)

	v.SetDefault("WEBSOCKET.MAX_CONNECTIONS", 10000)
}

func LoadConfig() error {
	return LoadConfigFrom(".")
}

// LoadConfigFrom reads application.yaml from dir. A missing file is not an
// error: defaults and CHATAPP_* variables still apply.
func LoadConfigFrom(dir string) error {
	// .env is optional, real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("CHATAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		log.Warn().Str("dir", dir).Msg("application.yaml not found, using defaults and environment")
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	switch config.DATABASE.Driver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", config.DATABASE.Driver)
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
