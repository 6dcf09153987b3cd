package server

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/suphotsudsee/study-leave-web/internal/api"
	"github.com/suphotsudsee/study-leave-web/internal/config"
	"github.com/suphotsudsee/study-leave-web/internal/importer"
	"github.com/suphotsudsee/study-leave-web/internal/store"
)

//go:embed all:dist
var staticFiles embed.FS

// Server is the HTTP server: the JSON API under /api plus the embedded web UI.
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
}

// NewServer opens the configured database and wires the routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Printf("[server] data dir: %v", err)
		dataDir = config.ResolveDataDir(cfg)
	}

	driver, dsn := config.DatabaseTarget(cfg)
	st, err := store.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	handler := api.NewHandler(st, api.Options{
		UploadDir: filepath.Join(dataDir, "uploads"),
		ExportDir: filepath.Join(dataDir, "exports"),
		Import: importer.Options{
			HeaderScanRows:       cfg.Import.HeaderScanRows,
			DataStartScanRows:    cfg.Import.DataStartScanRows,
			MaxSkippedRows:       cfg.Import.MaxSkippedRows,
			MaxDuplicateExamples: cfg.Import.MaxDuplicateExamples,
		},
		MaxUploadBytes: cfg.Import.MaxUploadMB << 20,
		DueWindowDays:  cfg.Report.DueWindowDays,
	})

	s := &Server{
		router: gin.Default(),
		store:  st,
		api:    handler,
	}
	s.setupRoutes(devMode)
	return s, nil
}

func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	s.api.RegisterRoutes(apiGroup)

	if devMode {
		// frontend dev server
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	sub, _ := fs.Sub(staticFiles, "dist")
	assetsSub, _ := fs.Sub(sub, "assets")
	s.router.StaticFS("/assets", http.FS(assetsSub))

	s.router.GET("/favicon.svg", func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "favicon.svg")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", data)
	})

	index := func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
	s.router.GET("/", index)

	// SPA fallback; unknown API paths stay JSON 404s.
	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		index(c)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close releases the database.
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore returns the store (used by tests).
func (s *Server) GetStore() *store.Store {
	return s.store
}
