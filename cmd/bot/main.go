package main

import (
	"github.com/nhatminh/shopbot/internal/bot"
	"github.com/nhatminh/shopbot/internal/catalog"
	"github.com/nhatminh/shopbot/internal/chat"
	"github.com/nhatminh/shopbot/internal/intent"
	"github.com/nhatminh/shopbot/internal/llm"
	"github.com/nhatminh/shopbot/internal/reply"
	"github.com/nhatminh/shopbot/internal/storage"
	"github.com/nhatminh/shopbot/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Store
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStore()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStore(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the pipeline components
	detector := intent.NewDetector(logger)
	planner := catalog.NewPlanner(store, logger)
	builder := reply.NewBuilder(store, logger)
	formatter := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	service := chat.NewService(store, store, store, detector, planner, builder, formatter, logger, chat.Options{
		MinReplyDelay: cfg.Chat.MinReplyDelay,
		MaxReplyDelay: cfg.Chat.MaxReplyDelay,
	})

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, service, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
