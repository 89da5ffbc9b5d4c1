// Package ledger reads and updates asset rows in the external spreadsheet
// that acts as the system of record for review status. Rows are addressed by
// the asset's business key, never by a cached row offset: the sheet can be
// edited by other actors at any time, so every write re-locates its row.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotFound means no row matched the asset code.
	ErrNotFound = errors.New("asset not found")
	// ErrUnavailable wraps any transport fault from the backend store.
	ErrUnavailable = errors.New("ledger unavailable")
)

// Writable columns are fixed positions in the read range (0-indexed):
// the business key in column B, status in G, draft link in J, last-updated
// in M. The header row names are for labeling only.
const (
	colCode        = 1
	colStatusA1    = "G"
	colDraftLinkA1 = "J"
	colUpdatedA1   = "M"
)

// FieldUpdate names the cells a transition wants changed. Zero values are
// skipped; the last-updated timestamp is always written.
type FieldUpdate struct {
	Status    Status
	DraftLink string
}

// Adapter exposes business-key lookups and updates over a RowStore.
type Adapter struct {
	store RowStore
	log   *zap.Logger
	now   func() time.Time
}

func New(store RowStore, log *zap.Logger) *Adapter {
	return &Adapter{store: store, log: log, now: time.Now}
}

// NewDisabled returns an adapter whose every call reports ErrUnavailable.
// Used when the Sheets integration is not configured.
func NewDisabled(log *zap.Logger) *Adapter {
	return New(disabledStore{}, log)
}

// FindByCode scans all rows for the asset code, case-insensitively and
// ignoring whitespace. Row 0 is the header. The first match wins; the
// adapter does not police duplicate keys.
func (a *Adapter) FindByCode(ctx context.Context, code string) (*Asset, error) {
	rows, err := a.store.ReadRows(ctx)
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	want := normalizeCode(code)
	headers := rows[0]
	for _, row := range rows[1:] {
		if len(row) <= colCode {
			continue
		}
		if normalizeCode(row[colCode]) == want {
			return assetFromRow(headers, row), nil
		}
	}
	return nil, ErrNotFound
}

// SetFields updates the changed columns for the asset's row plus the
// last-updated timestamp, in one batched write. The row offset is
// recomputed from a fresh read first: rows may have been inserted or
// reordered since any earlier read, and the adapter holds no lock, so a
// remembered offset can never be trusted.
func (a *Adapter) SetFields(ctx context.Context, code string, update FieldUpdate) error {
	rows, err := a.store.ReadRows(ctx)
	if err != nil {
		return wrapUnavailable(err)
	}

	want := normalizeCode(code)
	rowNum := -1
	for i, row := range rows {
		if i == 0 || len(row) <= colCode {
			continue
		}
		if normalizeCode(row[colCode]) == want {
			rowNum = i + 1 // sheet rows are 1-indexed
			break
		}
	}
	if rowNum == -1 {
		return ErrNotFound
	}

	var cells []CellWrite
	if update.Status != "" {
		cells = append(cells, CellWrite{Range: fmt.Sprintf("%s%d", colStatusA1, rowNum), Value: string(update.Status)})
	}
	if update.DraftLink != "" {
		cells = append(cells, CellWrite{Range: fmt.Sprintf("%s%d", colDraftLinkA1, rowNum), Value: update.DraftLink})
	}
	cells = append(cells, CellWrite{Range: fmt.Sprintf("%s%d", colUpdatedA1, rowNum), Value: a.now().UTC().Format(time.RFC3339)})

	if err := a.store.BatchWrite(ctx, cells); err != nil {
		return wrapUnavailable(err)
	}
	a.log.Info("updated ledger row",
		zap.String("asset_code", code),
		zap.Int("row", rowNum),
		zap.String("status", string(update.Status)))
	return nil
}

func wrapUnavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
