package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/config"
	"github.com/workmate-ai/assistant-be/pkg/logger"
	"github.com/workmate-ai/assistant-be/service"
	"github.com/workmate-ai/assistant-be/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Summarize a local document without starting the server",
	Args:  cobra.ExactArgs(1),
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

		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal("failed to read file", zap.String("file", path), zap.Error(err))
		}

		doc := types.Document{
			Data:      data,
			MediaType: mediaTypeForExt(filepath.Ext(path)),
			Name:      filepath.Base(path),
		}

		registry := service.NewModelRegistry(cfg, log)
		extractor := service.NewExtractService(cfg.Extraction, log)
		// Summarization does not touch the sanitizer or the knowledge
		// index, so neither is wired here.
		pipeline := service.NewPipelineService(registry, extractor, nil, nil, cfg, log)

		summary, err := pipeline.SummarizeDocument(context.Background(), doc)
		if err != nil {
			log.Fatal("summarization failed", zap.Error(err))
		}
		fmt.Println(summary)
	},
}

func mediaTypeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/pdf"
	}
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
