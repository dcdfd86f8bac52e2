package cmd

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
	"github.com/workmate-ai/assistant-be/handler"
	"github.com/workmate-ai/assistant-be/middleware"
	"github.com/workmate-ai/assistant-be/pkg/logger"
	"github.com/workmate-ai/assistant-be/service"
	"github.com/workmate-ai/assistant-be/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the assistant server",
	Long:  `Starts the HTTP server that handles chat queries and document summarization.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			logger.Get().Fatal("failed to load config", zap.Error(err))
		}
		if err := logger.Init(cfg.LogLevel); err != nil {
			logger.Get().Fatal("failed to init logger", zap.Error(err))
		}
		log := logger.Get()
		defer logger.Sync()

		registry := service.NewModelRegistry(cfg, log)

		// Embed the corpus and build the knowledge index before the
		// server starts listening. A model-load failure or an empty
		// index here is fatal: every request depends on them.
		index, err := buildKnowledgeIndex(context.Background(), registry, cfg, log)
		if err != nil {
			log.Fatal("failed to build knowledge index", zap.Error(err))
		}

		extractor := service.NewExtractService(cfg.Extraction, log)
		sanitizer := service.NewSanitizeService(cfg.Sanitizer, log)
		retrieval := service.NewRetrievalService(registry, index, cfg.Retrieval, log)
		pipeline := service.NewPipelineService(registry, extractor, sanitizer, retrieval, cfg, log)
		wsService := service.NewWebSocketService(pipeline, log)

		corsHandler := handler.NewCorsHandler()
		chatHandler := handler.NewChatHandler(pipeline)
		uploadHandler := handler.NewUploadHandler(pipeline)
		healthHandler := handler.NewHealthHandler()

		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(gin.Recovery())
		router.Use(middleware.RequestLogger(log))
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/healthz", healthHandler.HandleHealth)

		apiV1 := router.Group("/api/v1")
		apiV1.Use(middleware.AuthMiddleware)
		{
			apiV1.POST("/chat", chatHandler.HandleChat)
			apiV1.POST("/documents/summarize", uploadHandler.HandleSummarize)
			apiV1.GET("/ws", func(c *gin.Context) {
				wsService.HandleChat(c.Writer, c.Request)
			})
		}

		log.Info("starting server", zap.String("port", cfg.Port))
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	},
}

// buildKnowledgeIndex embeds the configured corpus and builds the in-memory
// index. The index is immutable afterwards; changing the corpus requires a
// restart.
func buildKnowledgeIndex(ctx context.Context, registry *service.ModelRegistry, cfg *config.Config, log *zap.Logger) (*store.MemoryIndex, error) {
	embedder, err := registry.Embedder()
	if err != nil {
		return nil, err
	}
	vectors, err := embedder.Embed(ctx, cfg.Corpus)
	if err != nil {
		return nil, err
	}
	entries := make([]store.Entry, len(cfg.Corpus))
	for i, text := range cfg.Corpus {
		entries[i] = store.Entry{Text: text, Vector: vectors[i]}
	}
	index, err := store.BuildMemoryIndex(entries)
	if err != nil {
		return nil, err
	}
	log.Info("knowledge index built",
		zap.Int("entries", index.Len()),
		zap.Int("dimension", index.Dimension()),
	)
	return index, nil
}

func init() {
	rootCmd.AddCommand(startCmd)
}
