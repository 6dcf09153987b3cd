package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/suphotsudsee/study-leave-web/internal/exporter"
	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/parser"
	"github.com/suphotsudsee/study-leave-web/internal/report"
	"github.com/suphotsudsee/study-leave-web/internal/store"
)

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

type leaveRequest struct {
	ID               int64       `json:"id"`
	CID              string      `json:"cid" binding:"notblank"`
	FullName         string      `json:"full_name" binding:"notblank"`
	PositionLevel    string      `json:"position_level" binding:"notblank"`
	PositionTitle    string      `json:"position_title"`
	PositionHospital string      `json:"position_hospital"`
	PositionOffice   string      `json:"position_office"`
	PositionNo       string      `json:"position_no" binding:"notblank"`
	Workplace        string      `json:"workplace" binding:"notblank"`
	Program          string      `json:"program" binding:"notblank"`
	ProgramYears     looseString `json:"program_years" binding:"notblank"`
	Institute        string      `json:"institute" binding:"notblank"`
	StartDate        string      `json:"start_date" binding:"notblank"`
	EndDate          string      `json:"end_date" binding:"notblank"`
	Note             *string     `json:"note"`
	OrderNo          string      `json:"order_no" binding:"notblank"`
}

// draft normalises the request the same way rows are normalised on import.
func (r leaveRequest) draft() (model.LeaveDraft, bool) {
	start, okStart := parser.ParseDate(r.StartDate)
	end, okEnd := parser.ParseDate(r.EndDate)
	if !okStart || !okEnd {
		return model.LeaveDraft{}, false
	}

	pos := parser.Position{
		Title:    strings.TrimSpace(r.PositionTitle),
		Hospital: strings.TrimSpace(r.PositionHospital),
		Office:   strings.TrimSpace(r.PositionOffice),
	}
	if pos.Title == "" {
		pos = parser.SplitPosition(r.PositionLevel)
	}

	d := model.LeaveDraft{
		CID:              strings.TrimSpace(r.CID),
		FullName:         strings.TrimSpace(r.FullName),
		PositionLevel:    strings.TrimSpace(r.PositionLevel),
		PositionTitle:    pos.Title,
		PositionHospital: pos.Hospital,
		PositionOffice:   pos.Office,
		PositionNo:       strings.TrimSpace(r.PositionNo),
		Workplace:        strings.TrimSpace(r.Workplace),
		Program:          strings.TrimSpace(r.Program),
		ProgramYears:     parser.ParseProgramYears(string(r.ProgramYears)),
		Institute:        strings.TrimSpace(r.Institute),
		StartDate:        start,
		EndDate:          end,
		OrderNo:          strings.TrimSpace(r.OrderNo),
	}
	if r.Note != nil {
		if note := strings.TrimSpace(*r.Note); note != "" {
			d.Note = &note
		}
	}
	return d, true
}

// ListLeaves returns leaves with their derived status.
// GET /api/leaves?status=
func (h *Handler) ListLeaves(c *gin.Context) {
	leaves, err := h.store.ListLeaves(c.Request.Context())
	if err != nil {
		databaseError(c, err)
		return
	}
	filter := report.ParseFilter(c.DefaultQuery("status", report.FilterAll))
	c.JSON(http.StatusOK, gin.H{"data": report.Views(leaves, filter, h.today())})
}

// GetLeave returns one leave.
// GET /api/leaves/:id
func (h *Handler) GetLeave(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	rec, err := h.store.GetLeave(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Leave not found"})
		return
	}
	if err != nil {
		databaseError(c, err)
		return
	}
	views := report.Views([]model.LeaveRecord{*rec}, report.FilterAll, h.today())
	c.JSON(http.StatusOK, gin.H{"data": views[0]})
}

// SaveLeave creates a leave, or updates it when the body carries an id.
// POST /api/leaves
func (h *Handler) SaveLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	d, ok := req.draft()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	ctx := c.Request.Context()
	if req.ID > 0 {
		err := h.store.UpdateLeave(ctx, req.ID, d)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Leave not found"})
			return
		}
		if err != nil {
			databaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": req.ID})
		return
	}

	id, err := h.store.CreateLeave(ctx, d)
	if err != nil {
		databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// DeleteLeave removes one leave.
// DELETE /api/leaves/:id
func (h *Handler) DeleteLeave(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	err := h.store.DeleteLeave(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Leave not found"})
		return
	}
	if err != nil {
		databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportLeaves downloads the leaves as a workbook.
// GET /api/leaves/export?status=
func (h *Handler) ExportLeaves(c *gin.Context) {
	f, err := h.exporter.Export(c.Request.Context(), exporter.ExportOptions{
		Status: c.DefaultQuery("status", report.FilterAll),
		Today:  h.today(),
	})
	if err != nil {
		databaseError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", contentDisposition(exportFilename(h.today())))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}
