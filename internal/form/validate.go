package form

import (
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

var draftLinkPattern = regexp.MustCompile(`^https?://.+`)

// SubmissionValues is the snapshot of the form at submission time, trimmed.
type SubmissionValues struct {
	AssetCode string
	Topic     string
	AssetName string
	DraftLink string
	Notes     string
}

// ValidateSubmission checks the submitted view state and returns the typed
// values plus per-field errors keyed by block ID, so the platform can show
// them inline on the still-open form. Topic and asset name may be blank
// here; the workflow backfills them from the ledger.
func ValidateSubmission(state *slack.ViewState) (SubmissionValues, map[string]string) {
	values := SubmissionValues{
		AssetCode: stateValue(state, BlockAssetCode, ActionAssetCode),
		Topic:     stateValue(state, BlockTopic, ActionTopic),
		AssetName: stateValue(state, BlockAssetName, ActionAssetName),
		DraftLink: stateValue(state, BlockDraftLink, ActionDraftLink),
		Notes:     stateValue(state, BlockNotes, ActionNotes),
	}

	errs := make(map[string]string)
	if values.AssetCode == "" {
		errs[BlockAssetCode] = "Asset Code is required"
	}
	if values.DraftLink == "" {
		errs[BlockDraftLink] = "Draft Link is required"
	} else if !draftLinkPattern.MatchString(values.DraftLink) {
		errs[BlockDraftLink] = "Draft Link must be a valid URL starting with http:// or https://"
	}

	if len(errs) == 0 {
		return values, nil
	}
	return values, errs
}

// StateValue reads one trimmed input value out of a view state snapshot.
func StateValue(state *slack.ViewState, blockID, actionID string) string {
	return stateValue(state, blockID, actionID)
}

func stateValue(state *slack.ViewState, blockID, actionID string) string {
	if state == nil {
		return ""
	}
	block, ok := state.Values[blockID]
	if !ok {
		return ""
	}
	return strings.TrimSpace(block[actionID].Value)
}
