package slackbot

import (
	"errors"
	"fmt"

	"github.com/hanumendraprm/slack-submit-for-review-app/internal/ledger"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/token"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/workflow"
)

// noticeFor maps a handler failure to the short, actor-scoped message shown
// as an ephemeral notice. Nothing is retried; the actor re-invoking the
// control is the retry.
func noticeFor(err error) string {
	var notInDraft *workflow.NotInDraftError
	switch {
	case errors.Is(err, workflow.ErrCodeRequired):
		return "⚠️ Please enter an Asset Code first, then click \"Fetch Details\"."
	case errors.As(err, &notInDraft):
		return fmt.Sprintf("⚠️ Asset status is %q, not \"Draft\".", string(notInDraft.Status))
	case errors.Is(err, ledger.ErrNotFound):
		return "⚠️ Asset code not found."
	case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrMissingField):
		return "❌ This control has lost its context. Please start again from the Submit for Review shortcut."
	case errors.Is(err, ledger.ErrUnavailable):
		return "❌ Error fetching asset details. Please try again or contact support."
	case errors.Is(err, workflow.ErrTranscriptPost):
		return "❌ Error posting message to channel. Please try again or contact support."
	default:
		return "❌ An unexpected error occurred. Please try again or contact support."
	}
}
