package bootstrap

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/emirk/academia/internal/app/services"
	"github.com/emirk/academia/internal/app/store"
	"github.com/emirk/academia/internal/config"
	"github.com/emirk/academia/internal/pkg/filestorage"
	"github.com/emirk/academia/internal/pkg/logger"
	"github.com/emirk/academia/internal/seed"
	"github.com/emirk/academia/internal/server"
)

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore loads the flat files into a fresh store and synthesizes the
// bootstrap administrator when no user data exists yet.
func SetupStore(cfg *config.Config, lgr zerolog.Logger) (*store.Store, *filestorage.FlatFileStore, error) {
	files, err := filestorage.NewFlatFileStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data directory: %w", err)
	}

	users, courses, enrollments, err := files.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load data files: %w", err)
	}

	dataStore := store.New()
	dataStore.Replace(users, courses, enrollments)
	lgr.Info().Int("users", len(users)).Int("courses", len(courses)).Int("enrollments", len(enrollments)).Msg("Data loaded")

	if err := seed.EnsureDefaultAdmin(dataStore, files, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword, lgr); err != nil {
		return nil, nil, err
	}

	return dataStore, files, nil
}

// BuildServer wires the store, persistence and auth into a portal server.
func BuildServer(cfg *config.Config, dataStore *store.Store, files *filestorage.FlatFileStore, lgr zerolog.Logger) *server.Server {
	auth := services.NewAuthService(dataStore)
	return server.New(cfg, dataStore, files, auth, lgr)
}
