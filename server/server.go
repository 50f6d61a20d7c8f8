// Package server exposes the engine over a local HTTP control API: start
// and stop the cycle, inspect status, push settings and templates, and run
// one-shot diagnostics against the live page.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/velvetkeys/engagekit/engine"
	"github.com/velvetkeys/engagekit/persistence"
)

const diagnosticTimeout = 60 * time.Second

// Server wires the engine and its persistent store to HTTP handlers.
type Server struct {
	engine *engine.Engine
	store  *persistence.Store
	log    *logrus.Entry
	http   *http.Server
}

// New builds a server for one engine instance.
func New(e *engine.Engine, store *persistence.Store) *Server {
	return &Server{
		engine: e,
		store:  store,
		log:    logrus.WithField("component", "server"),
	}
}

// Router assembles the gin handler tree.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/start", s.handleStart)
		api.POST("/stop", s.handleStop)
		api.GET("/status", s.handleStatus)
		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handlePutSettings)
		api.PUT("/templates/:platform", s.handlePutTemplates)

		test := api.Group("/test")
		{
			test.POST("/like", s.handleTestLike)
			test.POST("/comment", s.handleTestComment)
			test.POST("/extract", s.handleTestExtract)
			test.POST("/highlight", s.handleTestHighlight)
		}
	}
	return r
}

// Run serves the control API until Shutdown is called.
func (s *Server) Run(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.Router()}
	s.log.Infof("🌐 control API listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleStart(c *gin.Context) {
	s.engine.Start()
	c.JSON(http.StatusOK, s.engine.Status())
}

func (s *Server) handleStop(c *gin.Context) {
	s.engine.Stop()
	c.JSON(http.StatusOK, s.engine.Status())
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Status())
}

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Settings())
}

func (s *Server) handlePutSettings(c *gin.Context) {
	var settings engine.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	applied := s.engine.UpdateSettings(settings)

	blob, err := json.Marshal(applied)
	if err == nil {
		err = s.store.SaveSettings(blob)
	}
	if err != nil {
		s.log.Warnf("⚠️ settings not persisted: %v", err)
	}
	c.JSON(http.StatusOK, applied)
}

type templatesRequest struct {
	Templates []string `json:"templates"`
}

func (s *Server) handlePutTemplates(c *gin.Context) {
	var req templatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := c.Param("platform")
	if !s.engine.UpdateTemplates(name, req.Templates) {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "platform mismatch",
			"platform": s.engine.Platform(),
		})
		return
	}
	if err := s.store.SaveTemplates(name, req.Templates); err != nil {
		s.log.Warnf("⚠️ templates not persisted: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"platform": name, "count": len(req.Templates)})
}

func (s *Server) handleTestLike(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), diagnosticTimeout)
	defer cancel()
	if err := s.engine.TestLike(ctx); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "liked"})
}

func (s *Server) handleTestComment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), diagnosticTimeout)
	defer cancel()
	if err := s.engine.TestComment(ctx); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "commented"})
}

func (s *Server) handleTestExtract(c *gin.Context) {
	info, err := s.engine.TestExtract()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleTestHighlight(c *gin.Context) {
	if err := s.engine.TestHighlight(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "highlighted"})
}
