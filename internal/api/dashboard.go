package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suphotsudsee/study-leave-web/internal/report"
)

// GetDashboard returns the landing page aggregates.
// GET /api/dashboard?status=all|active|pending|completed
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	leaves, err := h.store.ListLeaves(ctx)
	if err != nil {
		databaseError(c, err)
		return
	}
	imports, err := h.store.ListImportLogs(ctx, 5)
	if err != nil {
		databaseError(c, err)
		return
	}

	filter := report.ParseFilter(c.DefaultQuery("status", report.FilterAll))
	d := report.BuildDashboard(leaves, imports, filter, h.today(), h.dueWindow(ctx))
	c.JSON(http.StatusOK, gin.H{"data": d})
}

// GetReportSummary returns the reports page aggregates.
// GET /api/reports/summary
func (h *Handler) GetReportSummary(c *gin.Context) {
	ctx := c.Request.Context()
	leaves, err := h.store.ListLeaves(ctx)
	if err != nil {
		databaseError(c, err)
		return
	}
	years, err := h.store.ListLeaveYears(ctx)
	if err != nil {
		databaseError(c, err)
		return
	}

	summary, err := report.BuildSummary(leaves, h.today(), h.dueWindow(ctx))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"budget_savings": summary.BudgetSavings,
		"leave_counts":   summary.LeaveCounts,
		"status_counts":  summary.StatusCounts,
		"due_reinstates": summary.DueReinstates,
		"dept_stats":     summary.DeptStats,
		"program_years":  summary.ProgramYears,
		"by_year":        years,
	}})
}
