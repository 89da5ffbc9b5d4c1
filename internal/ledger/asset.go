package ledger

import "strings"

// Status is an asset's review state as stored in the sheet. Values are kept
// verbatim from the cell; comparisons are case-insensitive.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusReview    Status = "Review"
	StatusFinalized Status = "Finalized"
)

// Is compares two statuses ignoring case and surrounding whitespace.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), strings.TrimSpace(string(other)))
}

// Asset is one row of the ledger, labeled by the sheet's header row.
type Asset struct {
	Code        string
	Topic       string
	Name        string
	Status      Status
	DraftLink   string
	LastUpdated string
}

// Header names used when labeling a row as an Asset. Writes do not use
// these; writable columns are located by fixed position (see adapter.go).
const (
	headerCode        = "A Code"
	headerTopic       = "Topic"
	headerName        = "Asset Name"
	headerStatus      = "Status"
	headerDraftLink   = "Draft Link"
	headerLastUpdated = "Last Updated"
)

// normalizeCode is the business-key comparison rule: trimmed, lowercased.
func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// assetFromRow labels a data row using the header row.
func assetFromRow(headers, row []string) *Asset {
	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		v := ""
		if i < len(row) {
			v = row[i]
		}
		fields[strings.TrimSpace(h)] = v
	}
	return &Asset{
		Code:        fields[headerCode],
		Topic:       fields[headerTopic],
		Name:        fields[headerName],
		Status:      Status(fields[headerStatus]),
		DraftLink:   fields[headerDraftLink],
		LastUpdated: fields[headerLastUpdated],
	}
}
