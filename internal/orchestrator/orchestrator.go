// Package orchestrator turns an inbound chat message into exactly one
// terminal system message. Sync routes get an immediate completion; async
// routes persist a placeholder reply, dispatch to the external workflow
// engine once, and fall back to the local completion provider on failure,
// always updating the placeholder in place.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kendevco/discordant/internal/domain"
	"github.com/kendevco/discordant/internal/workflow"
)

const processingContent = "🤖 **Processing Complex Request...**\n\n" +
	"I'm working on your request using advanced AI tools. This may take a moment..."

// Request is one inbound user message to answer. AsIs bypasses routing and
// persists Content verbatim as a system message (onboarding announcements).
type Request struct {
	ChannelID     string
	Content       string
	FileURL       string
	AuthorName    string
	UserMessageID string
	AsIs          bool
}

type Config struct {
	HistoryLimit  int
	HistoryWindow time.Duration
	Environment   string
}

func (c Config) withDefaults() Config {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 20
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 2 * time.Hour
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	return c
}

type Orchestrator struct {
	dispatcher *workflow.Dispatcher
	provider   domain.CompletionProvider
	store      domain.MessageStore
	members    domain.MemberDirectory
	notifier   domain.Notifier
	logger     *zap.SugaredLogger
	metrics    *Metrics
	cfg        Config
	now        func() time.Time
}

func New(
	cfg Config,
	dispatcher *workflow.Dispatcher,
	provider domain.CompletionProvider,
	store domain.MessageStore,
	members domain.MemberDirectory,
	notifier domain.Notifier,
	logger *zap.SugaredLogger,
	metrics *Metrics,
) *Orchestrator {
	return &Orchestrator{
		dispatcher: dispatcher,
		provider:   provider,
		store:      store,
		members:    members,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg.withDefaults(),
		now:        time.Now,
	}
}

// Handle executes one request to its terminal state and returns the terminal
// message. Workflow and provider failures are converted into user-visible
// message content; only store or member-resolution failures return an error.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*domain.Message, error) {
	if req.ChannelID == "" || req.Content == "" {
		return nil, domain.ErrInvalidInput
	}

	if req.AsIs {
		msg, err := o.createSystemMessage(ctx, req.ChannelID, req.Content)
		if err != nil {
			return nil, err
		}
		o.metrics.observe("none", outcomeAsIs)
		return msg, nil
	}

	route := workflow.Route(req.Content, req.FileURL != "")
	o.logger.Infow("classified message",
		"channel_id", req.ChannelID,
		"workflow_id", route.WorkflowID,
		"mode", route.Mode,
	)

	if route.Mode == workflow.ModeSync {
		return o.handleSync(ctx, req, route)
	}
	return o.handleAsync(ctx, req, route)
}

func (o *Orchestrator) handleSync(ctx context.Context, req Request, route workflow.WorkflowRoute) (*domain.Message, error) {
	reply, err := o.complete(ctx, req, "", false)
	if err != nil {
		o.logger.Errorw("sync completion failed", "channel_id", req.ChannelID, "error", err)

		msg, createErr := o.createSystemMessage(ctx, req.ChannelID, syncErrorContent(req.Content, err))
		if createErr != nil {
			return nil, createErr
		}
		o.metrics.observe(route.WorkflowID, outcomeSyncFailed)
		return msg, nil
	}

	msg, err := o.createSystemMessage(ctx, req.ChannelID, reply)
	if err != nil {
		return nil, err
	}
	o.metrics.observe(route.WorkflowID, outcomeSyncSucceeded)
	return msg, nil
}

func (o *Orchestrator) handleAsync(ctx context.Context, req Request, route workflow.WorkflowRoute) (*domain.Message, error) {
	// The placeholder must exist before the external call starts so every
	// later outcome updates the same record.
	placeholder, err := o.createSystemMessage(ctx, req.ChannelID, processingContent)
	if err != nil {
		return nil, err
	}

	content := req.Content
	if workflow.DetectIntent(content) == workflow.WorkflowCalendar {
		content = workflow.EnrichCalendarContent(content, o.now())
	}

	serverID, err := o.members.ServerOf(ctx, req.ChannelID)
	if err != nil {
		serverID = ""
	}

	payload := workflow.NewPayload(content, route, req.ChannelID, serverID, placeholder.ID)
	payload.UserMessageID = req.UserMessageID
	payload.AuthorName = req.AuthorName

	dispatchErr := o.dispatcher.Dispatch(ctx, payload)
	if dispatchErr == nil {
		// The workflow engine updates the placeholder out-of-band.
		o.logger.Infow("workflow dispatched",
			"channel_id", req.ChannelID,
			"workflow_id", route.WorkflowID,
			"processing_message_id", placeholder.ID,
		)
		o.metrics.observe(route.WorkflowID, outcomeAsyncDelegated)
		return placeholder, nil
	}

	o.logger.Warnw("workflow dispatch failed, falling back",
		"channel_id", req.ChannelID,
		"workflow_id", route.WorkflowID,
		"error", dispatchErr,
	)
	if o.metrics != nil {
		o.metrics.fallbacks.Inc()
	}

	reply, fallbackErr := o.complete(ctx, req, dispatchErr.Error(), true)
	if fallbackErr != nil {
		o.logger.Errorw("fallback completion also failed",
			"channel_id", req.ChannelID,
			"dispatch_error", dispatchErr,
			"fallback_error", fallbackErr,
		)

		updated, updateErr := o.updateSystemMessage(ctx, placeholder.ID,
			doubleFailureContent(req.Content, dispatchErr, fallbackErr, o.cfg.Environment, o.now()))
		if updateErr != nil {
			return nil, updateErr
		}
		o.metrics.observe(route.WorkflowID, outcomeFallbackFailed)
		return updated, nil
	}

	updated, err := o.updateSystemMessage(ctx, placeholder.ID, reply)
	if err != nil {
		return nil, err
	}
	o.metrics.observe(route.WorkflowID, outcomeFallbackSucceeded)
	return updated, nil
}

// complete builds the history-grounded prompt and calls the provider. The
// footer marks whether the answer came through the degraded path.
func (o *Orchestrator) complete(ctx context.Context, req Request, workflowError string, degraded bool) (string, error) {
	history, err := o.store.Recent(ctx, req.ChannelID, o.cfg.HistoryWindow, o.cfg.HistoryLimit)
	if err != nil {
		o.logger.Warnw("history lookup failed, prompting without context",
			"channel_id", req.ChannelID, "error", err)
		history = nil
	}

	now := o.now()
	prompt := buildSystemPrompt(promptContext{
		History:       history,
		Now:           now,
		WorkflowError: workflowError,
		Degraded:      degraded,
	})

	reply, err := o.provider.Complete(ctx, prompt, req.Content)
	if err != nil {
		return "", err
	}

	return reply + statusFooter(now, degraded, workflowError), nil
}

func (o *Orchestrator) createSystemMessage(ctx context.Context, channelID, content string) (*domain.Message, error) {
	systemMember, err := o.members.SystemMember(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("resolve system member: %w", err)
	}

	msg := &domain.Message{
		ChannelID: channelID,
		MemberID:  systemMember.ID,
		Role:      domain.RoleSystem,
		Content:   content,
	}
	if err := o.store.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist system message: %w", err)
	}

	if o.notifier != nil {
		if err := o.notifier.MessageCreated(ctx, msg); err != nil {
			o.logger.Warnw("message-created notification failed", "message_id", msg.ID, "error", err)
		}
	}
	return msg, nil
}

func (o *Orchestrator) updateSystemMessage(ctx context.Context, id, content string) (*domain.Message, error) {
	msg, err := o.store.Update(ctx, id, content)
	if err != nil {
		return nil, fmt.Errorf("update system message: %w", err)
	}

	if o.notifier != nil {
		if err := o.notifier.MessageUpdated(ctx, msg); err != nil {
			o.logger.Warnw("message-updated notification failed", "message_id", msg.ID, "error", err)
		}
	}
	return msg, nil
}

func syncErrorContent(userMessage string, err error) string {
	return fmt.Sprintf("🚨 **Chat System Error**\n\n"+
		"I'm having trouble processing your message right now. Please try again in a moment.\n\n"+
		"**Your message:** %q\n"+
		"**Error**: %s", userMessage, err)
}

func doubleFailureContent(userMessage string, dispatchErr, fallbackErr error, environment string, now time.Time) string {
	return fmt.Sprintf("🚨 **System Status Alert**\n\n"+
		"Both the primary AI workflow system and the backup Site AI service are currently experiencing difficulties.\n\n"+
		"**Primary System Error:** %s\n"+
		"**Backup System Error:** %s\n\n"+
		"**Your message:** %q\n\n"+
		"Please try again in a few minutes, or contact your system administrator if the issue persists.\n\n"+
		"**Environment:** %s\n"+
		"**Timestamp:** %s",
		dispatchErr, fallbackErr, userMessage, environment, now.UTC().Format(time.RFC3339))
}
