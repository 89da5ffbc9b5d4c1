// Package form builds the modal views used by the review workflow and
// validates submissions. All layouts go through one builder driven by a
// small config struct rather than one hand-built view per call site.
package form

import (
	"github.com/slack-go/slack"
)

// View callback identifiers.
const (
	CallbackSubmit   = "submit_for_review_modal"
	CallbackApprove  = "approve_comments_modal"
	CallbackFeedback = "need_changes_modal"
)

// Block and action identifiers for the submission modal.
const (
	BlockAssetCode  = "asset_code_block"
	ActionAssetCode = "asset_code_input"
	BlockFetch      = "fetch_details_block"
	ActionFetch     = "fetch_details_btn"
	BlockTopic      = "topic_block"
	ActionTopic     = "topic_input"
	BlockAssetName  = "asset_name_block"
	ActionAssetName = "asset_name_input"
	BlockDraftLink  = "draft_link_block"
	ActionDraftLink = "draft_link_input"
	BlockNotes      = "notes_block"
	ActionNotes     = "notes_input"
)

// Block and action identifiers for the follow-up modals.
const (
	BlockApprovalComments  = "approval_comments_block"
	ActionApprovalComments = "approval_comments_input"
	BlockFeedback          = "feedback_block"
	ActionFeedback         = "feedback_input"
)

// SubmissionConfig selects what the submission modal is pre-populated with.
type SubmissionConfig struct {
	PrefillCode string
	Topic       string
	AssetName   string
	// Fetched flips the auto-fill button label once details have been
	// pulled from the ledger.
	Fetched bool
}

// Submission builds the 5-field review form plus the Fetch Details control.
func Submission(cfg SubmissionConfig) slack.ModalViewRequest {
	codeInput := slack.NewPlainTextInputBlockElement(plain("e.g., GW1"), ActionAssetCode)
	codeInput.InitialValue = cfg.PrefillCode

	fetchLabel := "Fetch Details"
	if cfg.Fetched {
		fetchLabel = "✅ Details Fetched"
	}
	fetchBtn := slack.NewButtonBlockElement(ActionFetch, "", plain(fetchLabel)).WithStyle(slack.StylePrimary)

	topicInput := slack.NewPlainTextInputBlockElement(plain("Automatically Fetched: Topic of the Asset"), ActionTopic)
	topicInput.InitialValue = cfg.Topic

	nameInput := slack.NewPlainTextInputBlockElement(plain("Automatically Fetched: LinkedIn Post etc."), ActionAssetName)
	nameInput.InitialValue = cfg.AssetName

	linkInput := slack.NewPlainTextInputBlockElement(plain("https://docs.google.com/..."), ActionDraftLink)

	notesInput := slack.NewPlainTextInputBlockElement(plain("Any additional context or notes..."), ActionNotes)
	notesInput.Multiline = true
	notesBlock := slack.NewInputBlock(BlockNotes, plain("Additional Notes"), nil, notesInput)
	notesBlock.Optional = true

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: CallbackSubmit,
		Title:      plain("Submit for Review"),
		Submit:     plain("Submit"),
		Close:      plain("Cancel"),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(BlockAssetCode, plain("Asset Code"), nil, codeInput),
			slack.NewActionBlock(BlockFetch, fetchBtn),
			slack.NewInputBlock(BlockTopic, plain("Topic"), nil, topicInput),
			slack.NewInputBlock(BlockAssetName, plain("Asset Name"), nil, nameInput),
			slack.NewInputBlock(BlockDraftLink, plain("Draft Link"), nil, linkInput),
			notesBlock,
		}},
	}
}

// Approval builds the approval-comments modal. The encoded context token
// rides in private_metadata so the submission callback can find its way back
// to the thread.
func Approval(encodedToken, assetCode string) slack.ModalViewRequest {
	comments := slack.NewPlainTextInputBlockElement(plain("Any comments or feedback..."), ActionApprovalComments)
	comments.Multiline = true
	commentsBlock := slack.NewInputBlock(BlockApprovalComments, plain("Approval Comments"), nil, comments)
	commentsBlock.Optional = true

	header := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType,
			"*Asset Code:* "+assetCode+"\n\nPlease add any comments for this approval (optional):", false, false),
		nil, nil)

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackApprove,
		Title:           plain("Approve Asset"),
		Submit:          plain("Approve"),
		Close:           plain("Cancel"),
		PrivateMetadata: encodedToken,
		Blocks:          slack.Blocks{BlockSet: []slack.Block{header, commentsBlock}},
	}
}

// Feedback builds the need-changes modal. Feedback text is mandatory,
// enforced at submission time.
func Feedback(encodedToken string) slack.ModalViewRequest {
	input := slack.NewPlainTextInputBlockElement(plain("Be specific and actionable with your feedback..."), ActionFeedback)
	input.Multiline = true

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackFeedback,
		Title:           plain("Need Changes"),
		Submit:          plain("Submit Feedback"),
		Close:           plain("Cancel"),
		PrivateMetadata: encodedToken,
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(BlockFeedback, plain("Feedback to the author"), nil, input),
		}},
	}
}

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}
