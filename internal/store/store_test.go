package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suphotsudsee/study-leave-web/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "studyleave.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func draft(cid, order, start, end string) model.LeaveDraft {
	return model.LeaveDraft{
		CID:           cid,
		FullName:      "นางสาวทดสอบ " + cid,
		PositionLevel: "พยาบาลวิชาชีพ",
		PositionTitle: "พยาบาลวิชาชีพ",
		ProgramYears:  1,
		StartDate:     start,
		EndDate:       end,
		OrderNo:       order,
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()
	_, err := Open("mysql", "x")
	require.Error(t, err)
}

func TestInsertLeaves_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	note := "ลาเต็มเวลา"
	d1 := draft("1100000000001", "ABC/1", "2023-06-01", "2025-05-31")
	d1.Note = &note
	d2 := draft("1100000000002", "", "2024-01-01", "2024-12-31")
	require.NoError(t, s.InsertLeaves(ctx, []model.LeaveDraft{d1, d2}))

	keys, err := s.ListDedupKeys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	leaves, err := s.ListLeaves(ctx)
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	// latest start first
	assert.Equal(t, "1100000000002", leaves[0].CID)
	assert.Nil(t, leaves[0].Note)
	require.NotNil(t, leaves[1].Note)
	assert.Equal(t, note, *leaves[1].Note)
	assert.False(t, leaves[1].CreatedAt.IsZero())

	got, err := s.GetLeave(ctx, leaves[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC/1", got.OrderNo)
}

func TestInsertLeaves_RollsBackOnFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	bad := draft("3", "", "2024-01-01", "2024-12-31")
	bad.ProgramYears = 0 // violates CHECK (program_years > 0)
	batch := []model.LeaveDraft{
		draft("1", "", "2024-01-01", "2024-12-31"),
		draft("2", "", "2024-01-01", "2024-12-31"),
		bad,
	}
	require.Error(t, s.InsertLeaves(ctx, batch))

	leaves, err := s.ListLeaves(ctx)
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

func TestInsertLeaves_Empty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.InsertLeaves(context.Background(), nil))
}

func TestLeaveCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateLeave(ctx, draft("1", "O-1", "2024-01-01", "2024-12-31"))
	require.NoError(t, err)
	require.NotZero(t, id)

	updated := draft("1", "O-2", "2024-02-01", "2025-01-31")
	updated.ProgramYears = 2
	require.NoError(t, s.UpdateLeave(ctx, id, updated))

	got, err := s.GetLeave(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "O-2", got.OrderNo)
	assert.Equal(t, 2, got.ProgramYears)
	assert.Equal(t, "2025-01-31", got.EndDate)

	require.NoError(t, s.DeleteLeave(ctx, id))
	_, err = s.GetLeave(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, s.DeleteLeave(ctx, id), ErrNotFound)
	assert.ErrorIs(t, s.UpdateLeave(ctx, id, updated), ErrNotFound)
}

func TestImportLogs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for i, name := range []string{"a.xlsx", "b.xlsx", "c.xlsx"} {
		entry := &model.ImportLog{OriginalName: name, StoredPath: "/uploads/" + name, Inserted: i}
		require.NoError(t, s.CreateImportLog(ctx, entry))
		assert.NotZero(t, entry.ID)
	}

	logs, err := s.ListImportLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "c.xlsx", logs[0].OriginalName)
	assert.Equal(t, "b.xlsx", logs[1].OriginalName)
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := &model.User{Username: "admin", Password: "hash-1", FullName: "Admin", Role: "admin", Status: "active"}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotZero(t, u.ID)

	dup := &model.User{Username: "admin", Password: "x", Status: "active"}
	require.Error(t, s.CreateUser(ctx, dup))

	u.Email = "admin@example.org"
	u.Password = ""
	require.NoError(t, s.UpdateUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.org", got.Email)
	assert.Equal(t, "hash-1", got.Password)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.GetSettingInt(ctx, SettingDueWindowDays, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, n)

	require.NoError(t, s.SetSetting(ctx, SettingDueWindowDays, "30"))
	require.NoError(t, s.SetSetting(ctx, SettingDueWindowDays, "45"))
	n, err = s.GetSettingInt(ctx, SettingDueWindowDays, 90)
	require.NoError(t, err)
	assert.Equal(t, 45, n)

	all, err := s.AllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{SettingDueWindowDays: "45"}, all)
}

func TestImportSheets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	entry := &model.ImportLog{OriginalName: "roster.xlsx"}
	require.NoError(t, s.CreateImportLog(ctx, entry))
	require.NoError(t, s.InsertImportSheets(ctx, entry.ID, []model.ImportSheet{
		{SheetName: "2566", TotalRows: 12, DataStart: 3, Used: true, MissingJSON: BuildJSON([]string{}), HeadersJSON: `{"cid":0}`},
		{SheetName: "notes", TotalRows: 2, MissingJSON: BuildJSON([]string{"cid"}), HeadersJSON: "{}"},
	}))

	sheets, err := s.ListImportSheets(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.True(t, sheets[0].Used)
	assert.Equal(t, entry.ID, sheets[1].ImportLogID)
	assert.Equal(t, `["cid"]`, sheets[1].MissingJSON)
}

func TestListLeaveYears(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.InsertLeaves(ctx, []model.LeaveDraft{
		draft("1", "", "2023-06-01", "2024-05-31"),
		draft("2", "", "2024-01-01", "2024-12-31"),
	}))

	years, err := s.ListLeaveYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LeaveYearStat{
		{Year: "2024", Started: 1, Ended: 2},
		{Year: "2023", Started: 1, Ended: 0},
	}, years)
}
