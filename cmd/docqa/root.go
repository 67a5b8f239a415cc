package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docqa/internal/config"
	"docqa/internal/logger"
)

var (
	verbose bool
	envFile string

	cfg     *config.Config
	prompts config.Prompts
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about PDF, Markdown and text documents",
	Long: `docqa extracts text from a document, falling back to OCR for scanned
PDFs, splits it into overlapping chunks, indexes them in a local vector
database and answers questions with a local Ollama model.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	p, err := config.LoadPrompts(loaded.PromptsFile)
	if err != nil {
		return err
	}

	cfg, prompts = loaded, p
	logger.Debug("Config loaded: model=%s embed=%s db=%s", cfg.OllamaModel, cfg.OllamaEmbedModel, cfg.VectorDBPath)
	return nil
}
