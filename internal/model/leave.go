package model

import (
	"strings"
	"time"
)

// LeaveDraft is one reconciled study-leave record waiting to be committed.
type LeaveDraft struct {
	CID              string  `json:"cid" db:"cid"`
	FullName         string  `json:"full_name" db:"full_name"`
	PositionLevel    string  `json:"position_level" db:"position_level"`
	PositionTitle    string  `json:"position_title" db:"position_title"`
	PositionHospital string  `json:"position_hospital" db:"position_hospital"`
	PositionOffice   string  `json:"position_office" db:"position_office"`
	PositionNo       string  `json:"position_no" db:"position_no"`
	Workplace        string  `json:"workplace" db:"workplace"`
	Program          string  `json:"program" db:"program"`
	ProgramYears     int     `json:"program_years" db:"program_years"`
	Institute        string  `json:"institute" db:"institute"`
	StartDate        string  `json:"start_date" db:"start_date"` // YYYY-MM-DD
	EndDate          string  `json:"end_date" db:"end_date"`     // YYYY-MM-DD
	Note             *string `json:"note" db:"note"`
	OrderNo          string  `json:"order_no" db:"order_no"`
}

// Key returns the dedup key of the draft.
func (d LeaveDraft) Key() DedupKey {
	return NewDedupKey(d.CID, d.OrderNo, d.StartDate, d.EndDate)
}

// LeaveRecord is a persisted study-leave record.
type LeaveRecord struct {
	ID int64 `json:"id" db:"id"`
	LeaveDraft
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DedupKey identifies a leave by national id, order number and date range.
type DedupKey struct {
	CID       string `db:"cid"`
	OrderNo   string `db:"order_no"`
	StartDate string `db:"start_date"`
	EndDate   string `db:"end_date"`
}

// NewDedupKey lowercases and trims the identity parts; dates are expected in ISO form.
func NewDedupKey(cid, orderNo, startDate, endDate string) DedupKey {
	return DedupKey{
		CID:       strings.ToLower(strings.TrimSpace(cid)),
		OrderNo:   strings.ToLower(strings.TrimSpace(orderNo)),
		StartDate: strings.TrimSpace(startDate),
		EndDate:   strings.TrimSpace(endDate),
	}
}

// Normalize re-applies NewDedupKey to a key loaded from storage.
func (k DedupKey) Normalize() DedupKey {
	return NewDedupKey(k.CID, k.OrderNo, k.StartDate, k.EndDate)
}

// PositionUpdate carries split position parts for one stored leave.
type PositionUpdate struct {
	ID       int64  `db:"id"`
	Title    string `db:"position_title"`
	Hospital string `db:"position_hospital"`
	Office   string `db:"position_office"`
}
