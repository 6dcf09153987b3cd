package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/suphotsudsee/study-leave-web/internal/exporter"
	"github.com/suphotsudsee/study-leave-web/internal/importer"
	"github.com/suphotsudsee/study-leave-web/internal/report"
	"github.com/suphotsudsee/study-leave-web/internal/store"
)

// Options configures a Handler.
type Options struct {
	UploadDir      string // stored spreadsheets and documents
	ExportDir      string // temporary export files, defaults to os.TempDir()
	Import         importer.Options
	MaxUploadBytes int64
	DueWindowDays  int
	Now            func() time.Time
}

// Handler serves the /api routes.
type Handler struct {
	store       *store.Store
	opts        Options
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
	downloads   *exportDownloadStore
}

// NewHandler creates the API handler.
func NewHandler(st *store.Store, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DueWindowDays <= 0 {
		opts.DueWindowDays = report.DefaultDueWindowDays
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	registerValidators()
	return &Handler{
		store:       st,
		opts:        opts,
		coordinator: importer.NewCoordinator(st, opts.Import),
		exporter:    exporter.NewExporter(st),
		downloads:   newExportDownloadStore(),
	}
}

// RegisterRoutes registers every endpoint on router, normally the /api group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.Health)

	router.GET("/dashboard", h.GetDashboard)
	router.GET("/reports/summary", h.GetReportSummary)

	router.GET("/leaves", h.ListLeaves)
	router.POST("/leaves", h.SaveLeave)
	router.GET("/leaves/export", h.ExportLeaves)
	router.POST("/leaves/export/stream", h.ExportLeavesStream)
	router.GET("/leaves/export/download/:token", h.DownloadExport)
	router.GET("/leaves/:id", h.GetLeave)
	router.DELETE("/leaves/:id", h.DeleteLeave)

	router.POST("/import/excel", h.ImportExcel)
	router.POST("/import/excel/stream", h.ImportExcelStream)
	router.GET("/import/template", h.ImportTemplate)
	router.POST("/import/upload", h.UploadDocument)
	router.GET("/import/logs", h.ListImportLogs)
	router.GET("/import/logs/:id/sheets", h.ListImportSheets)

	router.GET("/users", h.ListUsers)
	router.POST("/users", h.CreateUser)
	router.PUT("/users", h.UpdateUser)
	router.DELETE("/users", h.DeleteUser)

	router.GET("/settings", h.GetSettings)
	router.PATCH("/settings", h.UpdateSettings)

	router.GET("/suspensions", h.ListSuspensions)
}

// Health reports that the API is up.
// GET /api
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListSuspensions is a placeholder until salary suspensions are tracked.
// GET /api/suspensions
func (h *Handler) ListSuspensions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": []any{}})
}

func (h *Handler) today() time.Time {
	return report.Day(h.opts.Now())
}

// dueWindow prefers the stored setting over the configured default.
func (h *Handler) dueWindow(ctx context.Context) int {
	days, err := h.store.GetSettingInt(ctx, store.SettingDueWindowDays, h.opts.DueWindowDays)
	if err != nil || days <= 0 {
		if err != nil {
			log.Printf("[api] due window setting: %v", err)
		}
		return h.opts.DueWindowDays
	}
	return days
}

func databaseError(c *gin.Context, err error) {
	log.Printf("[api] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
