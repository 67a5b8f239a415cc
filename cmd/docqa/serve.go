package main

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"docqa/internal/app"
	"docqa/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question-answering API over HTTP",
	Long: `Serve starts an HTTP API where each client creates a session, uploads a
document to it and asks questions. Prometheus metrics are exposed on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	p, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	srv := server.New(p.app, app.NewSessions(), p.metrics, filepath.Join(cfg.TempDir, "uploads"))
	return srv.Run(cmd.Context(), addr)
}
