// Package cli holds the initialization steps shared by cmd/celengan and
// cmd/celengan-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"celengan/internal/config"
	"celengan/internal/notify"
	"celengan/internal/store"
	"celengan/internal/store/memory"
	"celengan/internal/store/sqlite"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the configured data backend, exiting the process when the
// SQLite path cannot be opened or migrated.
func OpenStore(logger *slog.Logger, cfg *config.Config) store.Store {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
		return repo
	default:
		logger.Info("Initialized memory backend")
		return memory.New()
	}
}

// MessengerSenders builds the configured outbound senders. Either may be nil
// when the corresponding tokens are absent; the reply worker drops messages
// for unconfigured channels.
func MessengerSenders(logger *slog.Logger, cfg *config.Config) (telegram, whatsapp notify.Sender) {
	if cfg.TelegramBotToken != "" {
		telegram = notify.NewTelegramSender(cfg.TelegramBotToken)
		logger.Info("Telegram sender initialized")
	} else {
		logger.Info("Telegram disabled - no TELEGRAM_BOT_TOKEN provided")
	}
	if cfg.MetaWhatsAppToken != "" {
		whatsapp = notify.NewWhatsAppSender(cfg.MetaWhatsAppToken, cfg.MetaPhoneNumberID)
		logger.Info("WhatsApp sender initialized")
	} else {
		logger.Info("WhatsApp disabled - no META_WHATSAPP_TOKEN provided")
	}
	return telegram, whatsapp
}
