package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/suphotsudsee/study-leave-web/internal/exporter"
	"github.com/suphotsudsee/study-leave-web/internal/importer"
)

type importResponse struct {
	Success      bool   `json:"success"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	*importer.Result
}

// saveUpload stores the multipart "file" field under the upload directory
// with a random name. It writes the error response itself and returns ok=false.
func (h *Handler) saveUpload(c *gin.Context, ext, extError string) (stored, original string, ok bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return "", "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return "", "", false
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": extError})
		return "", "", false
	}

	dir := h.opts.UploadDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "studyleave-uploads")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory"})
		return "", "", false
	}

	stored = filepath.Join(dir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(fh, stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file"})
		return "", "", false
	}
	return stored, fh.Filename, true
}

// importErrorPayload maps an import failure to a status code and body.
func importErrorPayload(err error) (int, gin.H) {
	var (
		archiveErr   *importer.ArchiveError
		missingErr   *importer.MissingColumnsError
		dataStartErr *importer.DataStartNotFoundError
		dbErr        *importer.DatabaseError
	)
	switch {
	case errors.As(err, &archiveErr):
		return http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unable to read Excel file: %v", archiveErr.Err)}
	case errors.Is(err, importer.ErrEmptyWorkbook):
		return http.StatusBadRequest, gin.H{"error": "Excel file is empty"}
	case errors.As(err, &missingErr):
		return http.StatusBadRequest, gin.H{
			"error":    "Missing required columns",
			"sheet":    missingErr.Sheet,
			"missing":  missingErr.Missing,
			"expected": missingErr.Expected,
		}
	case errors.As(err, &dataStartErr):
		return http.StatusBadRequest, gin.H{"error": "Unable to find data rows", "sheet": dataStartErr.Sheet}
	case errors.As(err, &dbErr):
		log.Printf("[api] import: %v", err)
		return http.StatusInternalServerError, gin.H{"error": "Database error"}
	default:
		log.Printf("[api] import: %v", err)
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	}
}

// ImportExcel imports an uploaded roster.
// POST /api/import/excel (multipart field "file")
func (h *Handler) ImportExcel(c *gin.Context) {
	stored, original, ok := h.saveUpload(c, ".xlsx", "Only .xlsx is allowed")
	if !ok {
		return
	}

	result, err := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		FilePath:         stored,
		OriginalFilename: original,
		StoredPath:       stored,
	})
	if err != nil {
		status, body := importErrorPayload(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, importResponse{
		Success:      true,
		OriginalName: original,
		Path:         stored,
		Result:       result,
	})
}

// ImportExcelStream imports an uploaded roster and reports progress as SSE.
// POST /api/import/excel/stream (multipart field "file")
func (h *Handler) ImportExcelStream(c *gin.Context) {
	stored, original, ok := h.saveUpload(c, ".xlsx", "Only .xlsx is allowed")
	if !ok {
		return
	}

	send, ok := sseWriter(c)
	if !ok {
		return
	}

	progressChan := h.coordinator.ImportStream(c.Request.Context(), importer.ImportOptions{
		FilePath:         stored,
		OriginalFilename: original,
		StoredPath:       stored,
	})
	for event := range progressChan {
		if event.Type == "error" && event.Err != nil {
			_, body := importErrorPayload(event.Err)
			event.Data = body
		}
		send(event)
	}
}

// ImportTemplate downloads a blank roster with the expected headers.
// GET /api/import/template
func (h *Handler) ImportTemplate(c *gin.Context) {
	f, err := exporter.NewTemplate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", contentDisposition("study-leave-template.xlsx"))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}

// UploadDocument stores a supporting PDF.
// POST /api/import/upload (multipart field "file")
func (h *Handler) UploadDocument(c *gin.Context) {
	stored, original, ok := h.saveUpload(c, ".pdf", "Only PDF is allowed")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"originalName": original,
		"path":         stored,
		"document_id":  "doc_" + uuid.NewString(),
		"uploaded_at":  time.Now().UTC(),
	})
}

// ListImportLogs returns recent imports.
// GET /api/import/logs?limit=
func (h *Handler) ListImportLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, ok := parseID(raw); ok {
			limit = int(n)
		}
	}
	logs, err := h.store.ListImportLogs(c.Request.Context(), limit)
	if err != nil {
		databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}

// ListImportSheets returns the worksheet outcomes of one import.
// GET /api/import/logs/:id/sheets
func (h *Handler) ListImportSheets(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	sheets, err := h.store.ListImportSheets(c.Request.Context(), id)
	if err != nil {
		databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sheets})
}
