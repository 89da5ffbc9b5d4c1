package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore serves rows from memory and records batch writes. readErr and
// writeErr simulate transport faults.
type fakeStore struct {
	rows     [][]string
	readErr  error
	writeErr error
	writes   [][]CellWrite
	reads    int
}

func (f *fakeStore) ReadRows(context.Context) ([][]string, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows, nil
}

func (f *fakeStore) BatchWrite(_ context.Context, cells []CellWrite) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, cells)
	return nil
}

func testRows() [][]string {
	return [][]string{
		{"ID", "A Code", "Owner", "Topic", "Format", "Asset Name", "Status", "Priority", "Due", "Draft Link", "Final Link", "Notes", "Last Updated"},
		{"1", "GW1", "alice", "Product Launch", "video", "Q1 Launch Video", "Draft", "high", "", "", "", "", ""},
		{"2", "GW2", "bob", "Hiring", "post", "LinkedIn Post", "Review", "low", "", "https://docs.google.com/d/1", "", "", "2026-01-01T00:00:00Z"},
	}
}

func newTestAdapter(store RowStore) *Adapter {
	a := New(store, zap.NewNop())
	a.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestFindByCode(t *testing.T) {
	a := newTestAdapter(&fakeStore{rows: testRows()})

	asset, err := a.FindByCode(context.Background(), "GW1")
	require.NoError(t, err)
	assert.Equal(t, "GW1", asset.Code)
	assert.Equal(t, "Product Launch", asset.Topic)
	assert.Equal(t, "Q1 Launch Video", asset.Name)
	assert.True(t, asset.Status.Is(StatusDraft))
}

func TestFindByCodeNormalizesKey(t *testing.T) {
	a := newTestAdapter(&fakeStore{rows: testRows()})

	asset, err := a.FindByCode(context.Background(), "  gw1  ")
	require.NoError(t, err)
	assert.Equal(t, "GW1", asset.Code)
}

func TestFindByCodeNotFound(t *testing.T) {
	a := newTestAdapter(&fakeStore{rows: testRows()})

	_, err := a.FindByCode(context.Background(), "GW99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByCodeFirstMatchWins(t *testing.T) {
	rows := testRows()
	rows = append(rows, []string{"3", "GW1", "carol", "Duplicate", "post", "Duplicate Row", "Review"})
	a := newTestAdapter(&fakeStore{rows: rows})

	asset, err := a.FindByCode(context.Background(), "gw1")
	require.NoError(t, err)
	assert.Equal(t, "Product Launch", asset.Topic)
}

func TestFindByCodeUnavailable(t *testing.T) {
	a := newTestAdapter(&fakeStore{readErr: errors.New("connection refused")})

	_, err := a.FindByCode(context.Background(), "GW1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSetFieldsWritesChangedColumns(t *testing.T) {
	store := &fakeStore{rows: testRows()}
	a := newTestAdapter(store)

	err := a.SetFields(context.Background(), "gw1", FieldUpdate{
		Status:    StatusReview,
		DraftLink: "https://docs.google.com/d/new",
	})
	require.NoError(t, err)

	require.Len(t, store.writes, 1)
	cells := store.writes[0]
	// GW1 is row 2 in sheet numbering (header is row 1).
	assert.Equal(t, []CellWrite{
		{Range: "G2", Value: "Review"},
		{Range: "J2", Value: "https://docs.google.com/d/new"},
		{Range: "M2", Value: "2026-03-01T12:00:00Z"},
	}, cells)
}

func TestSetFieldsStatusOnly(t *testing.T) {
	store := &fakeStore{rows: testRows()}
	a := newTestAdapter(store)

	err := a.SetFields(context.Background(), "GW2", FieldUpdate{Status: StatusFinalized})
	require.NoError(t, err)

	require.Len(t, store.writes, 1)
	cells := store.writes[0]
	require.Len(t, cells, 2)
	assert.Equal(t, "G3", cells[0].Range)
	assert.Equal(t, "Finalized", cells[0].Value)
	assert.Equal(t, "M3", cells[1].Range)
}

func TestSetFieldsRelocatesRowBeforeWrite(t *testing.T) {
	// A row inserted above GW1 between calls must shift the write target.
	rows := testRows()
	shifted := [][]string{rows[0], {"9", "NEW", "eve", "Other", "post", "Other Asset", "Draft"}, rows[1], rows[2]}
	store := &fakeStore{rows: shifted}
	a := newTestAdapter(store)

	err := a.SetFields(context.Background(), "GW1", FieldUpdate{Status: StatusReview})
	require.NoError(t, err)
	require.Len(t, store.writes, 1)
	assert.Equal(t, "G3", store.writes[0][0].Range)
	assert.Equal(t, 1, store.reads, "each write performs exactly one fresh read")
}

func TestSetFieldsNotFound(t *testing.T) {
	store := &fakeStore{rows: testRows()}
	a := newTestAdapter(store)

	err := a.SetFields(context.Background(), "GW99", FieldUpdate{Status: StatusReview})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.writes)
}

func TestSetFieldsWriteFault(t *testing.T) {
	store := &fakeStore{rows: testRows(), writeErr: errors.New("timeout")}
	a := newTestAdapter(store)

	err := a.SetFields(context.Background(), "GW1", FieldUpdate{Status: StatusReview})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDisabledAdapter(t *testing.T) {
	a := NewDisabled(zap.NewNop())

	_, err := a.FindByCode(context.Background(), "GW1")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = a.SetFields(context.Background(), "GW1", FieldUpdate{Status: StatusReview})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestStatusIs(t *testing.T) {
	assert.True(t, Status(" draft ").Is(StatusDraft))
	assert.True(t, Status("FINALIZED").Is(StatusFinalized))
	assert.False(t, Status("Review").Is(StatusDraft))
	assert.False(t, Status(strings.Repeat("x", 3)).Is(StatusDraft))
}
