// Package server exposes report generation and grounded chat over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/everstacklabs/ereuna/internal/export"
	"github.com/everstacklabs/ereuna/internal/metrics"
)

// Server handles the HTTP API. Sessions live in memory for the life of
// the process.
type Server struct {
	factory  SessionFactory
	sessions *sessionStore
}

// New creates a Server that builds per-report workspaces with factory.
func New(factory SessionFactory) *Server {
	return &Server{factory: factory, sessions: newSessionStore()}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/reports", s.createReport)
	v1.GET("/reports/:id", s.getReport)
	v1.GET("/reports/:id/export", s.exportReport)
	v1.POST("/reports/:id/chat", s.chatTurn)
	v1.DELETE("/reports/:id/chat", s.clearChat)

	return r
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	slog.Info("http api listening", "addr", addr)
	return s.Router().Run(addr)
}

func (s *Server) createReport(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, err := s.factory(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep := ws.Generate(c.Request.Context())
	sess := &session{
		topic:  req.Topic,
		model:  req.Model,
		report: rep,
		chat:   ws.Chat,
	}
	id := s.sessions.add(sess)

	c.JSON(http.StatusCreated, gin.H{
		"id":       id,
		"topic":    req.Topic,
		"titles":   rep.Titles(),
		"sections": rep.Sections(),
		"failed":   rep.Failed(),
	})
}

func (s *Server) getReport(c *gin.Context) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       sess.id,
		"topic":    sess.topic,
		"titles":   sess.report.Titles(),
		"sections": sess.report.Sections(),
		"failed":   sess.report.Failed(),
	})
}

func (s *Server) exportReport(c *gin.Context) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	var (
		renderer    export.Renderer
		contentType string
	)
	switch format := c.DefaultQuery("format", "markdown"); format {
	case "markdown", "md":
		renderer = &export.MarkdownRenderer{}
		contentType = "text/markdown; charset=utf-8"
	case "text", "txt":
		renderer = export.TextRenderer{}
		contentType = "text/plain; charset=utf-8"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + format})
		return
	}

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if err := renderer.Render(c.Writer, sess.report, sess.topic); err != nil {
		slog.Error("export render failed", "id", sess.id, "error", err)
	}
}

func (s *Server) chatTurn(c *gin.Context) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess.mu.Lock()
	answer := sess.chat.Respond(c.Request.Context(), req.Query)
	history := sess.chat.History()
	sess.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"answer":  answer,
		"history": history,
	})
}

func (s *Server) clearChat(c *gin.Context) {
	sess, ok := s.sessions.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	sess.mu.Lock()
	sess.chat.Clear()
	sess.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// requestLogger logs each request through slog, matching the process
// wide log format.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
