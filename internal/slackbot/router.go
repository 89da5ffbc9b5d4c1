// Package slackbot routes inbound Socket Mode interaction events to the
// workflow engine. Every event is acknowledged inside the platform's
// response deadline before slow work starts; the one exception is a view
// submission whose validation errors must ride in the acknowledgment itself.
package slackbot

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"github.com/hanumendraprm/slack-submit-for-review-app/internal/form"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/token"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/workflow"
)

// Workflow is the surface of the workflow engine the router drives.
type Workflow interface {
	OpenSubmission(ctx context.Context, triggerID, prefillCode string) error
	FetchDetails(ctx context.Context, req workflow.FetchRequest) error
	SubmitForReview(ctx context.Context, sub workflow.Submission) error
	OpenApproval(ctx context.Context, triggerID, buttonValue, threadTS, approverID string) error
	OpenFeedback(ctx context.Context, triggerID, buttonValue, threadTS string) error
	Approve(ctx context.Context, encodedToken, comments string) error
	RequestChanges(ctx context.Context, encodedToken, reviewerID, feedback string) error
}

// Router owns the Socket Mode event loop and the dispatch tables.
type Router struct {
	sm   *socketmode.Client
	flow Workflow
	chat workflow.Chat
	log  *zap.Logger

	// ack is a seam: production acks through the socketmode client,
	// tests record the payload instead.
	ack func(evt socketmode.Event, payload ...interface{})
	// syncHandlers runs handlers inline instead of in a goroutine.
	syncHandlers bool
}

func NewRouter(sm *socketmode.Client, flow Workflow, chat workflow.Chat, log *zap.Logger) *Router {
	r := &Router{sm: sm, flow: flow, chat: chat, log: log}
	r.ack = func(evt socketmode.Event, payload ...interface{}) {
		if evt.Request != nil {
			sm.Ack(*evt.Request, payload...)
		}
	}
	return r
}

// Run consumes events until the context is cancelled. Handler failures are
// logged and surfaced to the triggering actor; they never stop the loop.
func (r *Router) Run(ctx context.Context) error {
	go r.consume(ctx)
	return r.sm.RunContext(ctx)
}

func (r *Router) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-r.sm.Events:
			if !ok {
				return
			}
			r.handleEvent(ctx, evt)
		}
	}
}

func (r *Router) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		r.log.Info("connecting to slack")
	case socketmode.EventTypeConnectionError:
		r.log.Warn("slack connection error", zap.Any("data", evt.Data))
	case socketmode.EventTypeConnected:
		r.log.Info("connected to slack")
	case socketmode.EventTypeInteractive:
		cb, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			r.ack(evt)
			return
		}
		r.dispatch(ctx, evt, &cb)
	default:
		r.ack(evt)
	}
}

// dispatch routes one interaction callback by its declared identifier.
func (r *Router) dispatch(ctx context.Context, evt socketmode.Event, cb *slack.InteractionCallback) {
	switch cb.Type {
	case slack.InteractionTypeShortcut:
		r.ack(evt)
		if cb.CallbackID != workflow.Shortcut {
			r.log.Debug("unhandled shortcut", zap.String("callback_id", cb.CallbackID))
			return
		}
		triggerID := cb.TriggerID
		r.run(ctx, "shortcut:"+cb.CallbackID, cb, func(ctx context.Context) error {
			return r.flow.OpenSubmission(ctx, triggerID, "")
		})

	case slack.InteractionTypeBlockActions:
		r.ack(evt)
		if len(cb.ActionCallback.BlockActions) == 0 {
			return
		}
		action := cb.ActionCallback.BlockActions[0]
		handler := r.actionHandler(cb, action)
		if handler == nil {
			r.log.Debug("unhandled action", zap.String("action_id", action.ActionID))
			return
		}
		r.run(ctx, "action:"+action.ActionID, cb, handler)

	case slack.InteractionTypeViewSubmission:
		r.dispatchView(ctx, evt, cb)

	default:
		r.ack(evt)
	}
}

func (r *Router) actionHandler(cb *slack.InteractionCallback, action *slack.BlockAction) func(context.Context) error {
	switch action.ActionID {
	case form.ActionFetch:
		req := workflow.FetchRequest{
			ViewID:        cb.View.ID,
			UserID:        cb.User.ID,
			NotifyChannel: noticeChannel(cb),
			Code:          form.StateValue(cb.View.State, form.BlockAssetCode, form.ActionAssetCode),
		}
		return func(ctx context.Context) error {
			return r.flow.FetchDetails(ctx, req)
		}

	case workflow.ActionApprove:
		triggerID, value, threadTS, user := cb.TriggerID, action.Value, cb.Message.Timestamp, cb.User.ID
		return func(ctx context.Context) error {
			return r.flow.OpenApproval(ctx, triggerID, value, threadTS, user)
		}

	case workflow.ActionNeedChanges:
		triggerID, value, threadTS := cb.TriggerID, action.Value, cb.Message.Timestamp
		return func(ctx context.Context) error {
			return r.flow.OpenFeedback(ctx, triggerID, value, threadTS)
		}

	case workflow.ActionResubmit:
		triggerID, value := cb.TriggerID, action.Value
		return func(ctx context.Context) error {
			tok, err := token.Decode(value)
			if err != nil {
				return err
			}
			return r.flow.OpenSubmission(ctx, triggerID, tok.AssetCode)
		}
	}
	return nil
}

func (r *Router) dispatchView(ctx context.Context, evt socketmode.Event, cb *slack.InteractionCallback) {
	switch cb.View.CallbackID {
	case form.CallbackSubmit:
		values, errs := form.ValidateSubmission(cb.View.State)
		if len(errs) > 0 {
			r.ack(evt, slack.NewErrorsViewSubmissionResponse(errs))
			return
		}
		r.ack(evt)
		sub := workflow.Submission{
			UserID:        cb.User.ID,
			NotifyChannel: noticeChannel(cb),
			AssetCode:     values.AssetCode,
			Topic:         values.Topic,
			AssetName:     values.AssetName,
			DraftLink:     values.DraftLink,
			Notes:         values.Notes,
		}
		r.run(ctx, "view:"+cb.View.CallbackID, cb, func(ctx context.Context) error {
			return r.flow.SubmitForReview(ctx, sub)
		})

	case form.CallbackApprove:
		r.ack(evt)
		meta := cb.View.PrivateMetadata
		comments := form.StateValue(cb.View.State, form.BlockApprovalComments, form.ActionApprovalComments)
		r.run(ctx, "view:"+cb.View.CallbackID, cb, func(ctx context.Context) error {
			return r.flow.Approve(ctx, meta, comments)
		})

	case form.CallbackFeedback:
		feedback := form.StateValue(cb.View.State, form.BlockFeedback, form.ActionFeedback)
		if feedback == "" {
			r.ack(evt, slack.NewErrorsViewSubmissionResponse(map[string]string{
				form.BlockFeedback: "Feedback is required",
			}))
			return
		}
		r.ack(evt)
		meta, reviewer := cb.View.PrivateMetadata, cb.User.ID
		r.run(ctx, "view:"+cb.View.CallbackID, cb, func(ctx context.Context) error {
			return r.flow.RequestChanges(ctx, meta, reviewer, feedback)
		})

	default:
		r.ack(evt)
		r.log.Debug("unhandled view submission", zap.String("callback_id", cb.View.CallbackID))
	}
}

// run executes a handler after the ack, converting failures into an
// ephemeral notice for the triggering actor. A panic is contained here; the
// event loop never sees it.
func (r *Router) run(ctx context.Context, name string, cb *slack.InteractionCallback, fn func(context.Context) error) {
	exec := func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("handler panicked", zap.String("handler", name), zap.Any("panic", rec))
			}
		}()
		if err := fn(ctx); err != nil {
			r.log.Error("handler failed", zap.String("handler", name), zap.Error(err))
			r.notify(ctx, cb, err)
		}
	}
	if r.syncHandlers {
		exec()
		return
	}
	go exec()
}

func (r *Router) notify(ctx context.Context, cb *slack.InteractionCallback, err error) {
	if err := r.chat.PostEphemeral(ctx, noticeChannel(cb), cb.User.ID, noticeFor(err)); err != nil {
		r.log.Error("failed to send error notice", zap.Error(err))
	}
}

// noticeChannel picks where an ephemeral notice can reach the actor: the
// triggering channel when there is one, the user's DM otherwise (modals have
// no channel).
func noticeChannel(cb *slack.InteractionCallback) string {
	if cb.Channel.ID != "" {
		return cb.Channel.ID
	}
	return cb.User.ID
}
