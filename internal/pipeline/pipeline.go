// Package pipeline sequences one webhook event through thread assembly,
// answer generation, token persistence, and note posting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/psouza/gleandesk/internal/glean"
	"github.com/psouza/gleandesk/internal/identity"
	"github.com/psouza/gleandesk/internal/prompt"
	"github.com/psouza/gleandesk/internal/thread"
	"github.com/psouza/gleandesk/internal/tokenstore"
	"github.com/psouza/gleandesk/internal/zendesk"
)

// DefaultBanner prefixes every posted note unless overridden by
// configuration. The suggestion must be reviewed by a human agent before
// anything reaches the end customer.
const DefaultBanner = "⚠️ This is a suggestion made automatically by a *pilot version* of Glean Assistant for Zendesk. " +
	"I am triggered by tagging Glean on any ticket!\n\n" +
	"Please review the veracity and clarity of the answer before sending to the client. " +
	"Any feedback can be sent to #glean-hub!\n\n"

// TicketStore is the ticket-system capability consumed by the pipeline.
type TicketStore interface {
	GetTicket(ctx context.Context, id string) (zendesk.Ticket, error)
	GetComments(ctx context.Context, id string) ([]zendesk.Comment, error)
	PostInternalNote(ctx context.Context, id string, body string) error
}

// AnswerClient is the conversational side of the answer service.
type AnswerClient interface {
	Chat(ctx context.Context, req glean.ChatRequest) (io.ReadCloser, error)
}

// Event is one inbound ticket-tag notification. ID correlates log lines of
// one run across the dispatcher and pipeline.
type Event struct {
	ID       string
	TicketID string
}

// Options is the pipeline configuration resolved once at startup.
type Options struct {
	// FormApplications maps a Zendesk ticket form id to the Glean
	// application id answering tickets of that category.
	FormApplications map[string]string
	// DefaultApplicationID is used when the form id is unmapped or cannot
	// be determined.
	DefaultApplicationID string

	SystemPrompt   string
	Banner         string
	ExcludedEmails []string
	Verbose        bool

	// DryRun suppresses the note post while leaving the rest of the
	// pipeline (including token persistence) intact.
	DryRun bool
	// DumpDir, when set, receives the outbound payload and final answer of
	// every run as text files.
	DumpDir string
}

// Pipeline processes ticket events end to end.
type Pipeline struct {
	tickets   TicketStore
	directory identity.Directory
	answers   AnswerClient
	tokens    tokenstore.Store
	opts      Options
	logger    *slog.Logger
}

// New creates a Pipeline. The banner falls back to DefaultBanner when unset.
func New(tickets TicketStore, directory identity.Directory, answers AnswerClient, tokens tokenstore.Store, opts Options) *Pipeline {
	if opts.Banner == "" {
		opts.Banner = DefaultBanner
	}
	return &Pipeline{
		tickets:   tickets,
		directory: directory,
		answers:   answers,
		tokens:    tokens,
		opts:      opts,
		logger:    slog.Default(),
	}
}

// Process runs the whole pipeline for one event. Each step short-circuits on
// failure; completed side effects are not rolled back. The token write and
// the note post are independent, a failure in one does not undo the other.
func (p *Pipeline) Process(ctx context.Context, ev Event) error {
	if ev.TicketID == "" {
		return errors.New("event has no ticket id")
	}
	logger := p.logger.With("event_id", ev.ID, "ticket_id", ev.TicketID)

	applicationID := p.resolveApplication(ctx, logger, ev.TicketID)

	ticket, err := p.tickets.GetTicket(ctx, ev.TicketID)
	if err != nil {
		return fmt.Errorf("fetching ticket: %w", err)
	}

	comments, err := p.tickets.GetComments(ctx, ev.TicketID)
	if err != nil {
		// Degrade to an empty thread rather than aborting; the header
		// alone may still be enough for the answer service.
		logger.Warn("fetching comments failed, continuing with none", "error", err)
		comments = nil
	}

	resolver := identity.NewResolver(p.directory)
	serializer := thread.NewSerializer(resolver, p.opts.ExcludedEmails, p.opts.Verbose)
	text := serializer.Serialize(ctx, ev.TicketID, ticket, comments)
	if strings.TrimSpace(text) == "" {
		logger.Warn("serialized thread is empty, skipping answer service")
		return nil
	}

	req := prompt.Build(text, p.opts.SystemPrompt, applicationID)
	p.dumpPayload(logger, ev, req)

	rc, err := p.answers.Chat(ctx, req)
	if err != nil {
		return fmt.Errorf("calling answer service: %w", err)
	}
	defer rc.Close()

	answer, err := glean.DecodeStream(rc)
	if err != nil {
		// Whatever accumulated before the interruption is discarded.
		return fmt.Errorf("decoding answer stream: %w", err)
	}

	if answer.TrackingToken != "" {
		if err := p.tokens.Save(ev.TicketID, answer.TrackingToken, applicationID); err != nil {
			logger.Error("persisting tracking token failed", "error", err)
		}
	} else {
		logger.Warn("answer stream carried no tracking token")
	}

	final := answer.FinalText()
	if strings.TrimSpace(final) == "" {
		logger.Warn("answer service produced no text")
		return nil
	}
	p.dumpAnswer(logger, ev, final)

	if p.opts.DryRun {
		logger.Info("dry run, not posting note", "answer_len", len(final))
		return nil
	}
	if err := p.tickets.PostInternalNote(ctx, ev.TicketID, p.opts.Banner+final); err != nil {
		return fmt.Errorf("posting internal note: %w", err)
	}

	logger.Info("pipeline completed", "application_id", applicationID,
		"citations", len(answer.Citations), "token_saved", answer.TrackingToken != "")
	return nil
}

// resolveApplication maps the ticket's form id to a Glean application id.
// Any failure along the way falls back to the configured default; routing
// problems must never abort the pipeline.
func (p *Pipeline) resolveApplication(ctx context.Context, logger *slog.Logger, ticketID string) string {
	ticket, err := p.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		logger.Warn("form lookup failed, using default application", "error", err)
		return p.opts.DefaultApplicationID
	}
	if ticket.FormID == 0 {
		logger.Warn("ticket has no form id, using default application")
		return p.opts.DefaultApplicationID
	}

	formID := strconv.FormatInt(ticket.FormID, 10)
	if appID, ok := p.opts.FormApplications[formID]; ok && appID != "" {
		return appID
	}
	logger.Warn("form id not mapped, using default application", "form_id", formID)
	return p.opts.DefaultApplicationID
}
