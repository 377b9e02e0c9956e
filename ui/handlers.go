package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"balloonsum/domain/core"
	"balloonsum/domain/summary"
	"balloonsum/internal/aggregate"
	"balloonsum/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/sync/errgroup"
)

//go:embed docs/notes.md
var embeddedDocs embed.FS

// handleIndex renders the upload form
func (s *Server) handleIndex(c *gin.Context) {
	page := report.IndexPage{
		MaxFiles:  s.cfg.Upload.MaxFiles,
		MaxFileMB: s.cfg.Upload.MaxFileSize / (1024 * 1024),
		HistoryOn: s.batches != nil,
	}
	s.renderHTML(c, func(w io.Writer) error {
		return s.renderer.RenderIndex(w, page)
	})
}

// handleUpload summarizes a batch of uploaded episode logs
func (s *Server) handleUpload(c *gin.Context) {
	log.Printf("[handleUpload] Starting log upload process")

	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("[handleUpload] FAILED - No files uploaded: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	files := form.File["logs"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}
	if len(files) > s.cfg.Upload.MaxFiles {
		log.Printf("[handleUpload] FAILED - Too many files: %d", len(files))
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("At most %d files per batch", s.cfg.Upload.MaxFiles)})
		return
	}

	// Validate before reading anything; the whole batch aborts on any
	// bad input, so reject early.
	for _, header := range files {
		if header.Size > s.cfg.Upload.MaxFileSize {
			log.Printf("[handleUpload] FAILED - File too large: %s (%d bytes)", header.Filename, header.Size)
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File %s exceeds the %d MB limit", header.Filename, s.cfg.Upload.MaxFileSize/(1024*1024))})
			return
		}
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".json") {
			log.Printf("[handleUpload] FAILED - Invalid file extension: %s", header.Filename)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only JSON (.json) episode logs are allowed"})
			return
		}
	}

	// Decode files concurrently; inputs keeps upload order by index.
	inputs := make([]aggregate.Input, len(files))
	g, _ := errgroup.WithContext(c.Request.Context())
	for i, header := range files {
		i, header := i, header
		g.Go(func() error {
			file, err := header.Open()
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", header.Filename, err)
			}
			defer file.Close()

			raw, err := io.ReadAll(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", header.Filename, err)
			}

			dataset := summary.BaseName(header.Filename)
			logData, err := s.reader.Read(dataset, raw)
			if err != nil {
				return err
			}
			inputs[i] = aggregate.Input{Dataset: dataset, Log: logData}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("[handleUpload] FAILED - Log decoding failed: %v", err)
		status := http.StatusBadRequest
		if !core.IsParseError(err) && !core.IsSchemaError(err) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	table, err := s.aggregator.SummarizeAll(inputs)
	if err != nil {
		log.Printf("[handleUpload] FAILED - Aggregation failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profiles := s.aggregator.ProfileAll(inputs)

	s.setLastResult(table, profiles)
	s.persistBatch(table)

	log.Printf("[handleUpload] Summarized %d datasets", table.Len())
	s.renderHTML(c, func(w io.Writer) error {
		return s.renderer.RenderSummary(w, table, profiles)
	})
}

// handleExport streams the last summary as an Excel workbook
func (s *Server) handleExport(c *gin.Context) {
	table, profiles, ok := s.lastResult()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No summary available - upload logs first"})
		return
	}

	var buf bytes.Buffer
	if err := s.exporter.Export(&buf, table, profiles); err != nil {
		log.Printf("[handleExport] FAILED - Workbook export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build workbook"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="evaluation_summary.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleNotes renders the embedded methodology markdown
func (s *Server) handleNotes(c *gin.Context) {
	raw, err := embeddedDocs.ReadFile("docs/notes.md")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Notes unavailable"})
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	content := template.HTML(markdown.ToHTML(raw, p, nil))

	s.renderHTML(c, func(w io.Writer) error {
		return s.renderer.RenderNotes(w, content)
	})
}

// handleHistory lists persisted batches, newest first
func (s *Server) handleHistory(c *gin.Context) {
	if s.batches == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "History store not configured"})
		return
	}

	batches, err := s.batches.List(c.Request.Context(), 20)
	if err != nil {
		log.Printf("[handleHistory] FAILED - Listing batches failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	s.renderHTML(c, func(w io.Writer) error {
		return s.renderer.RenderHistory(w, batches)
	})
}

// persistBatch writes the batch to the history store, if configured.
// Write-behind: failures are logged and never abort a summarization.
func (s *Server) persistBatch(table summary.Table) {
	if s.batches == nil {
		return
	}
	batch := summary.NewBatch(table)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.batches.Save(ctx, batch); err != nil {
			log.Printf("[persistBatch] ERROR - Failed to persist batch %s: %v", batch.ID, err)
			return
		}
		log.Printf("[persistBatch] Persisted batch %s (%d rows)", batch.ID, len(batch.Rows))
	}()
}

// renderHTML renders to a buffer first so template errors never write
// a half-finished page
func (s *Server) renderHTML(c *gin.Context, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
