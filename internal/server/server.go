// Package server exposes the question-answering pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docqa/internal/app"
	"docqa/internal/logger"
	"docqa/internal/metrics"
)

// Server is the HTTP surface. Every client works in its own session.
type Server struct {
	app       *app.App
	sessions  *app.Sessions
	metrics   *metrics.Metrics
	uploadDir string
}

func New(a *app.App, sessions *app.Sessions, m *metrics.Metrics, uploadDir string) *Server {
	return &Server{app: a, sessions: sessions, metrics: m, uploadDir: uploadDir}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", s.Health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/sessions", s.CreateSession)

	sess := v1.Group("/sessions/:id", s.withSession)
	sess.GET("", s.GetSession)
	sess.DELETE("", s.DeleteSession)
	sess.POST("/documents", s.UploadDocument)
	sess.POST("/questions", s.AskQuestion)
	sess.POST("/summary", s.Summarize)
	sess.GET("/history", s.GetHistory)
	sess.DELETE("/history", s.ClearHistory)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("🚀 Listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
