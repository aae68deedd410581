// Package server exposes a player over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user-none/pisplay/export"
	"github.com/user-none/pisplay/jukebox"
	"github.com/user-none/pisplay/pis"
	"github.com/user-none/pisplay/player"
)

// Player is the playback surface the API drives.
type Player interface {
	LoadAndPlay(path string) error
	Stop()
	TogglePause() bool
	Status() player.Status
}

// ModuleSource loads modules for inspection and export.
type ModuleSource interface {
	Load(path string) (*pis.Module, error)
}

// Server routes API requests to a player and an optional jukebox.
type Server struct {
	player  Player
	jukebox *jukebox.Jukebox
	modules ModuleSource
	engine  *gin.Engine
}

// New builds the router. jb may be nil, in which case index based play
// requests are rejected.
func New(p Player, jb *jukebox.Jukebox, modules ModuleSource) *Server {
	s := &Server{player: p, jukebox: jb, modules: modules}

	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.Writer()), gin.Recovery())
	r.Use(corsMiddleware())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)
		v1.GET("/status", s.status)
		v1.GET("/tunes", s.listTunes)
		v1.GET("/module", s.moduleInfo)
		v1.GET("/export/midi", s.exportMIDI)
		v1.POST("/play", s.play)
		v1.POST("/stop", s.stop)
		v1.POST("/pause", s.pause)
	}
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// errorStatus maps load errors to HTTP status codes.
func errorStatus(err error) int {
	var fe *pis.FormatError
	var ioe *pis.IOError
	switch {
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &ioe):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pisplay",
	})
}

type statusResponse struct {
	player.Status
	Jukebox *jukebox.State `json:"jukebox,omitempty"`
}

func (s *Server) status(c *gin.Context) {
	resp := statusResponse{Status: s.player.Status()}
	if s.jukebox != nil {
		st := s.jukebox.State()
		resp.Jukebox = &st
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listTunes(c *gin.Context) {
	if s.jukebox == nil {
		c.JSON(http.StatusOK, gin.H{"tunes": []jukebox.Tune{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tunes": s.jukebox.Tunes()})
}

func (s *Server) moduleInfo(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	m, err := s.modules.Load(path)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "module": m.Info()})
}

func (s *Server) exportMIDI(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	m, err := s.modules.Load(path)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Type", "audio/midi")
	c.Header("Content-Disposition", `attachment; filename="song.mid"`)
	opts := export.Options{StopAtLoop: true}
	if _, err := export.WriteMIDI(c.Request.Context(), c.Writer, m, opts); err != nil {
		log.Printf("Warning: midi export of %s: %v", path, err)
	}
}

type playRequest struct {
	Index *int   `json:"index"`
	Path  string `json:"path"`
}

func (s *Server) play(c *gin.Context) {
	var req playRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	switch {
	case req.Index != nil:
		if s.jukebox == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no playlist loaded"})
			return
		}
		if *req.Index < 0 || *req.Index >= len(s.jukebox.Tunes()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index out of range"})
			return
		}
		err = s.jukebox.Play(*req.Index)
	case req.Path != "":
		err = s.player.LoadAndPlay(req.Path)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "index or path is required"})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.player.Status())
}

func (s *Server) stop(c *gin.Context) {
	s.player.Stop()
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}

func (s *Server) pause(c *gin.Context) {
	held := s.player.TogglePause()
	c.JSON(http.StatusOK, gin.H{"held": held})
}
