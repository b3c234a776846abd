// Package server exposes the conversation as a single-page web app
package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/cortex-chat/pkg/chat"
	"github.com/killallgit/cortex-chat/pkg/logger"
)

//go:embed static
var staticFiles embed.FS

// Conversation is the turn-handling side of the orchestrator
type Conversation interface {
	HandleTurn(ctx context.Context, surface chat.Surface, input string) (*chat.TurnOutcome, error)
	Reset()
	Transcript() *chat.Transcript
}

type HTTPServer struct {
	server *http.Server
	router *gin.Engine
	conv   Conversation
}

func NewHTTPServer(addr string, conv Conversation) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	s := &HTTPServer{conv: conv}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware())

	router.GET("/health", s.Health)
	router.GET("/", s.Index)

	api := router.Group("/api")
	api.POST("/turns", s.PostTurn)
	api.GET("/transcript", s.GetTranscript)
	api.POST("/conversation/new", s.NewConversation)

	s.router = router
	s.server = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	logger.WithComponent("server").Info("Starting HTTP server", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	logger.WithComponent("server").Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithComponent("server").Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

func indexPage() ([]byte, error) {
	return fs.ReadFile(staticFiles, "static/index.html")
}
