package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/suphotsudsee/study-leave-web/internal/exporter"
	"github.com/suphotsudsee/study-leave-web/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type streamEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// sseWriter prepares c for Server-Sent Events and returns a sender.
func sseWriter(c *gin.Context) (func(event any), bool) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return nil, false
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	return func(event any) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}, true
}

func exportFilename(today time.Time) string {
	return fmt.Sprintf("study-leaves-%s.xlsx", today.Format("2006-01-02"))
}

func contentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename))
}

// ExportLeavesStream builds the export with SSE progress and finishes with a download URL.
// POST /api/leaves/export/stream?status=
func (h *Handler) ExportLeavesStream(c *gin.Context) {
	send, ok := sseWriter(c)
	if !ok {
		return
	}

	send(streamEvent{Type: "start", Message: "export started", Timestamp: time.Now()})

	lastPercent := -1
	progressFn := func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(streamEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	}

	file, err := h.exporter.Export(c.Request.Context(), exporter.ExportOptions{
		Status:   c.DefaultQuery("status", report.FilterAll),
		Today:    h.today(),
		Progress: progressFn,
	})
	if err != nil {
		send(streamEvent{Type: "error", Message: "export failed: " + err.Error(), Data: map[string]any{}, Timestamp: time.Now()})
		return
	}
	defer file.Close()

	dir := h.opts.ExportDir
	if dir == "" {
		dir = os.TempDir()
	}
	tempPath := filepath.Join(dir, "export_"+uuid.NewString()+".xlsx")
	if err := file.SaveAs(tempPath); err != nil {
		send(streamEvent{Type: "error", Message: "failed to write export: " + err.Error(), Data: map[string]any{}, Timestamp: time.Now()})
		_ = os.Remove(tempPath)
		return
	}

	token := h.downloads.put(tempPath, exportFilename(h.today()), 10*time.Minute)
	send(streamEvent{
		Type:    "done",
		Message: "export finished",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": "/api/leaves/export/download/" + token,
		},
		Timestamp: time.Now(),
	})
}

// DownloadExport serves a finished export once.
// GET /api/leaves/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "export file missing"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(item.filename))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}
