package config

import (
	"path"
	"time"

	"github.com/akrezic/guesswho/internal/modules/env"

	"go.uber.org/zap"
)

const (
	PortEnv        = "PORT"
	DatabaseUrlEnv = "DATABASE_URL"
	RootPathEnv    = "ROOT_PATH"

	RoomRetentionEnv       = "ROOM_RETENTION"
	RoomCleanupIntervalEnv = "ROOM_CLEANUP_INTERVAL"
)

type Config struct {
	Logger *zap.Logger

	Port           int
	DatabaseURL    string
	MigrationsPath string

	// Abandoned rooms older than RoomRetention are swept every
	// RoomCleanupInterval, regardless of their state.
	RoomRetention       time.Duration
	RoomCleanupInterval time.Duration
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, err
	}

	port := env.MustGetInt(PortEnv)
	dbURL := env.MustGetString(DatabaseUrlEnv)
	rootPath := env.MustGetString(RootPathEnv)

	retention := env.GetDurationOrDefault(RoomRetentionEnv, time.Hour)
	cleanupInterval := env.GetDurationOrDefault(RoomCleanupIntervalEnv, time.Hour)

	migrationsPath := path.Join(rootPath, "db", "migrations")

	return Config{
		Logger:              logger,
		Port:                port,
		DatabaseURL:         dbURL,
		MigrationsPath:      migrationsPath,
		RoomRetention:       retention,
		RoomCleanupInterval: cleanupInterval,
	}, nil
}
