package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Shreehariballakkuraya/ScanPOS/config"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/cache"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/database"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
)

// bootLogger configures slog and, when LOG_MONGO_URI is set, mirrors records
// into MongoDB. The returned func flushes the sink.
func bootLogger() func() {
	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
	}

	uri := config.LogMongoURI()
	if uri == "" {
		logger.Setup(os.Stdout, config.AppEnv())
		return func() {}
	}

	sink, err := logger.NewMongoHandler(uri, config.LogMongoDB(), config.LogMongoCollection(), slog.LevelInfo)
	if err != nil {
		logger.Setup(os.Stdout, config.AppEnv())
		logger.Warn("mongo log sink disabled", "error", err)
		return func() {}
	}
	logger.Setup(os.Stdout, config.AppEnv(), sink)
	return sink.Close
}

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.Connect()
}

// bootCache connects to Redis. Without it reports are computed on every
// request.
func bootCache() (cache.Store, func()) {
	store, err := cache.Connect()
	if err != nil {
		logger.Warn("report cache disabled", "error", err)
		return cache.Nop{}, func() {}
	}
	return store, func() { _ = store.Close() }
}
