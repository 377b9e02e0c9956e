package ui

import (
	"sync"

	"balloonsum/adapters/excel"
	"balloonsum/domain/summary"
	"balloonsum/internal/aggregate"
	"balloonsum/internal/config"
	"balloonsum/internal/report"
	"balloonsum/ports"

	"github.com/gin-gonic/gin"
)

// Server represents the web server for the evaluation summary UI
type Server struct {
	router     *gin.Engine
	cfg        *config.Config
	reader     ports.LogReader
	aggregator *aggregate.Aggregator
	renderer   *report.Renderer
	exporter   *excel.Exporter
	batches    ports.BatchRepository // nil when no history store is configured

	// Last summarized batch, kept for the Excel export link
	mu           sync.RWMutex
	lastLoaded   bool
	lastTable    summary.Table
	lastProfiles []aggregate.Profile
}

// NewServer creates a new web server instance
func NewServer(cfg *config.Config, reader ports.LogReader, renderer *report.Renderer, batches ports.BatchRepository) *Server {
	s := &Server{
		router:     gin.Default(),
		cfg:        cfg,
		reader:     reader,
		aggregator: aggregate.New(),
		renderer:   renderer,
		exporter:   excel.NewExporter(),
		batches:    batches,
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.GET("/export.xlsx", s.handleExport)
	s.router.GET("/notes", s.handleNotes)
	s.router.GET("/history", s.handleHistory)
}

// Start runs the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setLastResult stores the most recent summary for the export handler
func (s *Server) setLastResult(table summary.Table, profiles []aggregate.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLoaded = true
	s.lastTable = table
	s.lastProfiles = profiles
}

// lastResult returns the most recent summary, if any
func (s *Server) lastResult() (summary.Table, []aggregate.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTable, s.lastProfiles, s.lastLoaded
}
