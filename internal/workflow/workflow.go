// Package workflow is the authoritative state machine for the review cycle:
// Draft → Review on submission, Review → Finalized on approval, Review →
// Draft on a change request. Each transition binds a ledger mutation to a
// transcript side effect. The two stores share no transaction; ledger
// failures are soft (the chat side still completes with fallback values) and
// a transcript failure after a ledger write is reported, not rolled back.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/hanumendraprm/slack-submit-for-review-app/internal/db"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/form"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/ledger"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/token"
)

// Action identifiers for the buttons the workflow renders into messages.
const (
	ActionApprove     = "approve_btn"
	ActionNeedChanges = "need_changes_btn"
	ActionResubmit    = "submit_for_review_from_feedback"
)

// Shortcut is the global entry point that starts a fresh cycle.
const Shortcut = "submit_for_review_shortcut"

// fallbackValue stands in for any field the ledger could not provide.
const fallbackValue = "N/A"

const reviewerMention = "<@garry.woodford>"

var (
	// ErrCodeRequired means the auto-fill control was used with an empty
	// code field.
	ErrCodeRequired = errors.New("asset code is required")
	// ErrTranscriptPost wraps a failed chat post. The ledger write that
	// preceded it, if any, stays applied.
	ErrTranscriptPost = errors.New("failed to post to channel")
)

// NotInDraftError rejects an auto-fill for an asset that is past Draft.
type NotInDraftError struct {
	Status ledger.Status
}

func (e *NotInDraftError) Error() string {
	return fmt.Sprintf("asset status is %q, not %q", string(e.Status), string(ledger.StatusDraft))
}

// Message is one transcript post. Text doubles as the notification fallback
// when Blocks are present. A non-empty ThreadTS makes it a threaded reply.
type Message struct {
	Text     string
	Blocks   []slack.Block
	ThreadTS string
}

// Chat is the transcript side of the workflow.
type Chat interface {
	PostMessage(ctx context.Context, channelID string, msg Message) (string, error)
	PostEphemeral(ctx context.Context, channelID, userID, text string) error
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
	UpdateView(ctx context.Context, viewID string, view slack.ModalViewRequest) error
}

// Ledger is the row-store side of the workflow.
type Ledger interface {
	FindByCode(ctx context.Context, code string) (*ledger.Asset, error)
	SetFields(ctx context.Context, code string, update ledger.FieldUpdate) error
}

// ChannelResolver yields the target channel ID, resolving it lazily.
type ChannelResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Audit records transitions, best effort.
type Audit interface {
	Record(ctx context.Context, t *db.Transition) error
}

// Engine executes transitions. It holds no per-cycle state: all continuity
// between callbacks rides in context tokens.
type Engine struct {
	chat    Chat
	ledger  Ledger
	channel ChannelResolver
	audit   Audit // may be nil
	log     *zap.Logger
}

func New(chat Chat, lg Ledger, channel ChannelResolver, audit Audit, log *zap.Logger) *Engine {
	return &Engine{chat: chat, ledger: lg, channel: channel, audit: audit, log: log}
}

// OpenSubmission opens the submission form. A non-empty prefillCode is the
// restart-from-feedback path.
func (e *Engine) OpenSubmission(ctx context.Context, triggerID, prefillCode string) error {
	view := form.Submission(form.SubmissionConfig{PrefillCode: prefillCode})
	if err := e.chat.OpenView(ctx, triggerID, view); err != nil {
		return fmt.Errorf("failed to open submission modal: %w", err)
	}
	return nil
}

// FetchRequest carries the auto-fill trigger's context.
type FetchRequest struct {
	ViewID        string
	UserID        string
	NotifyChannel string
	Code          string
}

// FetchDetails looks the code up in the ledger and re-renders the open modal
// with topic and asset name populated. The asset must exist and still be in
// Draft.
func (e *Engine) FetchDetails(ctx context.Context, req FetchRequest) error {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return ErrCodeRequired
	}

	asset, err := e.ledger.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if !asset.Status.Is(ledger.StatusDraft) {
		return &NotInDraftError{Status: asset.Status}
	}

	view := form.Submission(form.SubmissionConfig{
		PrefillCode: code,
		Topic:       asset.Topic,
		AssetName:   asset.Name,
		Fetched:     true,
	})
	if err := e.chat.UpdateView(ctx, req.ViewID, view); err != nil {
		return fmt.Errorf("failed to refresh modal: %w", err)
	}

	confirm := fmt.Sprintf("✅ Successfully fetched details for Asset Code: *%s*\n*Topic:* %s\n*Asset Name:* %s",
		code, orFallback(asset.Topic), orFallback(asset.Name))
	if err := e.chat.PostEphemeral(ctx, req.NotifyChannel, req.UserID, confirm); err != nil {
		e.log.Warn("failed to post fetch confirmation", zap.Error(err))
	}
	return nil
}

// Submission is a validated form snapshot together with the submitter.
type Submission struct {
	UserID        string
	NotifyChannel string
	AssetCode     string
	Topic         string
	AssetName     string
	DraftLink     string
	Notes         string
}

// SubmitForReview is the Draft → Review transition. The ledger write is
// soft: if the ledger is unreachable the transcript message still goes out,
// with fallback text for anything the ledger would have supplied.
func (e *Engine) SubmitForReview(ctx context.Context, sub Submission) error {
	topic, name := e.backfill(ctx, sub)

	channelID, err := e.channel.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve target channel: %w", err)
	}

	if err := e.ledger.SetFields(ctx, sub.AssetCode, ledger.FieldUpdate{
		Status:    ledger.StatusReview,
		DraftLink: sub.DraftLink,
	}); err != nil {
		e.log.Warn("ledger update failed, continuing with transcript post",
			zap.String("asset_code", sub.AssetCode), zap.Error(err))
	}

	buttonToken, err := token.Token{Channel: channelID, AssetCode: sub.AssetCode}.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode context token: %w", err)
	}

	notes := sub.Notes
	if notes == "" {
		notes = "_No additional notes_"
	}
	text := strings.Join([]string{
		"*DRAFT COMPLETED | READY FOR REVIEW*",
		"*Code:* " + sub.AssetCode,
		"*Topic:* " + topic,
		"*Asset Name:* " + name,
		"*Status:* Draft → Ready for Review",
		"*Draft Link:* " + sub.DraftLink,
		"",
		"*Notes:* " + notes,
		"",
		reviewerMention + " - Please review this asset!",
		"Next Action: Garry to review and approve/request changes",
		"",
		"*Click below to start review:*",
	}, "\n")

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		slack.NewActionBlock("",
			slack.NewButtonBlockElement(ActionApprove, buttonToken,
				slack.NewTextBlockObject(slack.PlainTextType, "Approve", false, false)).WithStyle(slack.StylePrimary),
			slack.NewButtonBlockElement(ActionNeedChanges, buttonToken,
				slack.NewTextBlockObject(slack.PlainTextType, "Need Changes", false, false)).WithStyle(slack.StyleDanger),
		),
	}

	ts, err := e.chat.PostMessage(ctx, channelID, Message{
		Text:   "Draft completed and ready for review",
		Blocks: blocks,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranscriptPost, err)
	}

	confirm := fmt.Sprintf("✅ Successfully submitted for review! Your submission has been posted to <#%s>.", channelID)
	if err := e.chat.PostEphemeral(ctx, channelID, sub.UserID, confirm); err != nil {
		e.log.Warn("failed to post submission confirmation", zap.Error(err))
	}

	e.record(ctx, &db.Transition{
		AssetCode:  sub.AssetCode,
		FromStatus: string(ledger.StatusDraft),
		ToStatus:   string(ledger.StatusReview),
		Actor:      sub.UserID,
		Channel:    channelID,
		ThreadTS:   ts,
	})
	return nil
}

// backfill fills blank topic or asset name from the ledger, falling back to
// a literal sentinel when the ledger cannot help.
func (e *Engine) backfill(ctx context.Context, sub Submission) (topic, name string) {
	topic, name = sub.Topic, sub.AssetName
	if topic == "" || name == "" {
		asset, err := e.ledger.FindByCode(ctx, sub.AssetCode)
		if err != nil {
			e.log.Warn("could not backfill fields from ledger",
				zap.String("asset_code", sub.AssetCode), zap.Error(err))
		} else {
			if topic == "" {
				topic = asset.Topic
			}
			if name == "" {
				name = asset.Name
			}
		}
	}
	return orFallback(topic), orFallback(name)
}

// OpenApproval completes a button token with the thread anchor and approver
// identity and opens the approval-comments modal carrying it.
func (e *Engine) OpenApproval(ctx context.Context, triggerID, buttonValue, threadTS, approverID string) error {
	tok, err := token.Decode(buttonValue)
	if err != nil {
		return err
	}
	tok.ThreadTS = threadTS
	tok.Approver = approverID

	meta, err := tok.Encode()
	if err != nil {
		return err
	}
	if err := e.chat.OpenView(ctx, triggerID, form.Approval(meta, tok.AssetCode)); err != nil {
		return fmt.Errorf("failed to open approval modal: %w", err)
	}
	return nil
}

// Approve is the Review → Finalized transition, consuming the token minted
// by OpenApproval.
func (e *Engine) Approve(ctx context.Context, encodedToken, comments string) error {
	tok, err := token.Decode(encodedToken)
	if err != nil {
		return err
	}
	if tok.ThreadTS == "" || tok.Approver == "" {
		return fmt.Errorf("%w: thread_ts/approver", token.ErrMissingField)
	}

	if err := e.ledger.SetFields(ctx, tok.AssetCode, ledger.FieldUpdate{Status: ledger.StatusFinalized}); err != nil {
		e.log.Warn("ledger update failed, continuing with transcript post",
			zap.String("asset_code", tok.AssetCode), zap.Error(err))
	}

	text := fmt.Sprintf("✅ *Approved by* <@%s>", tok.Approver)
	if comments != "" {
		text += "\n\n*Comments:* " + comments
	}
	if _, err := e.chat.PostMessage(ctx, tok.Channel, Message{
		Text:     text,
		ThreadTS: tok.ThreadTS,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrTranscriptPost, err)
	}

	e.record(ctx, &db.Transition{
		AssetCode:  tok.AssetCode,
		FromStatus: string(ledger.StatusReview),
		ToStatus:   string(ledger.StatusFinalized),
		Actor:      tok.Approver,
		Channel:    tok.Channel,
		ThreadTS:   tok.ThreadTS,
	})
	return nil
}

// OpenFeedback completes a button token with the thread anchor and opens the
// need-changes modal carrying it.
func (e *Engine) OpenFeedback(ctx context.Context, triggerID, buttonValue, threadTS string) error {
	tok, err := token.Decode(buttonValue)
	if err != nil {
		return err
	}
	tok.ThreadTS = threadTS

	meta, err := tok.Encode()
	if err != nil {
		return err
	}
	if err := e.chat.OpenView(ctx, triggerID, form.Feedback(meta)); err != nil {
		return fmt.Errorf("failed to open feedback modal: %w", err)
	}
	return nil
}

// RequestChanges is the Review → Draft transition. The threaded reply
// carries a restart button whose token lets the author resubmit without the
// global shortcut.
func (e *Engine) RequestChanges(ctx context.Context, encodedToken, reviewerID, feedback string) error {
	tok, err := token.Decode(encodedToken)
	if err != nil {
		return err
	}
	if tok.ThreadTS == "" {
		return fmt.Errorf("%w: thread_ts", token.ErrMissingField)
	}

	if err := e.ledger.SetFields(ctx, tok.AssetCode, ledger.FieldUpdate{Status: ledger.StatusDraft}); err != nil {
		e.log.Warn("ledger update failed, continuing with transcript post",
			zap.String("asset_code", tok.AssetCode), zap.Error(err))
	}

	restartToken, err := token.Token{Channel: tok.Channel, AssetCode: tok.AssetCode}.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode context token: %w", err)
	}

	text := fmt.Sprintf("📝 *Changes requested by* <@%s>:\n\n>%s", reviewerID, feedback)
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		slack.NewActionBlock("",
			slack.NewButtonBlockElement(ActionResubmit, restartToken,
				slack.NewTextBlockObject(slack.PlainTextType, "Submit for Review", false, false)).WithStyle(slack.StylePrimary),
		),
	}
	if _, err := e.chat.PostMessage(ctx, tok.Channel, Message{
		Text:     text,
		Blocks:   blocks,
		ThreadTS: tok.ThreadTS,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrTranscriptPost, err)
	}

	e.record(ctx, &db.Transition{
		AssetCode:  tok.AssetCode,
		FromStatus: string(ledger.StatusReview),
		ToStatus:   string(ledger.StatusDraft),
		Actor:      reviewerID,
		Channel:    tok.Channel,
		ThreadTS:   tok.ThreadTS,
	})
	return nil
}

func (e *Engine) record(ctx context.Context, t *db.Transition) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Record(ctx, t); err != nil {
		e.log.Warn("failed to record transition",
			zap.String("asset_code", t.AssetCode), zap.Error(err))
	}
}

func orFallback(v string) string {
	if strings.TrimSpace(v) == "" {
		return fallbackValue
	}
	return v
}
