package ledger

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// RowStore is the raw range-oriented surface of the tabular backend: one
// full-range read and one batched multi-cell write. The adapter's scan and
// relocate logic sits on top of it.
type RowStore interface {
	ReadRows(ctx context.Context) ([][]string, error)
	BatchWrite(ctx context.Context, cells []CellWrite) error
}

// CellWrite addresses a single cell in A1 notation.
type CellWrite struct {
	Range string
	Value string
}

type sheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewSheetsStore builds a RowStore over the Google Sheets API using a
// service-account credential.
func NewSheetsStore(ctx context.Context, spreadsheetID, readRange string, credentialsJSON []byte) (RowStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &sheetsStore{svc: svc, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

func (s *sheetsStore) ReadRows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", s.readRange, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *sheetsStore) BatchWrite(ctx context.Context, cells []CellWrite) error {
	data := make([]*sheets.ValueRange, 0, len(cells))
	for _, c := range cells {
		data = append(data, &sheets.ValueRange{
			Range:  c.Range,
			Values: [][]interface{}{{c.Value}},
		})
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to batch update: %w", err)
	}
	return nil
}

// disabledStore stands in when the Sheets integration is not configured.
// Every call reports the ledger as unavailable so callers take their
// fallback paths.
type disabledStore struct{}

func (disabledStore) ReadRows(context.Context) ([][]string, error) {
	return nil, fmt.Errorf("%w: sheets integration not configured", ErrUnavailable)
}

func (disabledStore) BatchWrite(context.Context, []CellWrite) error {
	return fmt.Errorf("%w: sheets integration not configured", ErrUnavailable)
}
