// Package feedback forwards agent sentiment on a suggested answer back to
// the answer service, using the tracking tokens stored when the answer was
// generated.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/psouza/gleandesk/internal/glean"
)

// ErrNoTokens is returned when no tracking token was ever stored for the ticket.
var ErrNoTokens = errors.New("no tracking tokens stored for ticket")

// ErrInvalidSentiment is returned for sentiment values other than
// "positive" or "negative", before any store access.
var ErrInvalidSentiment = errors.New("sentiment must be \"positive\" or \"negative\"")

// TokenLookup is the read side of the token store.
type TokenLookup interface {
	Lookup(ticketID string) ([]string, error)
}

// VoteSender is the answer-service feedback capability.
type VoteSender interface {
	Feedback(ctx context.Context, trackingTokens []string, event string) error
}

// Relay maps coarse agent sentiment to answer-service vote events and sends
// one event per stored token.
type Relay struct {
	tokens TokenLookup
	votes  VoteSender
	logger *slog.Logger
}

// NewRelay creates a Relay.
func NewRelay(tokens TokenLookup, votes VoteSender) *Relay {
	return &Relay{tokens: tokens, votes: votes, logger: slog.Default()}
}

// Relay looks up every token stored for the ticket and forwards the vote for
// each. A failed call for one token is logged and does not prevent the
// remaining tokens from being attempted. Returns how many votes were
// delivered.
func (r *Relay) Relay(ctx context.Context, ticketID, sentiment string) (int, error) {
	event, err := voteEvent(sentiment)
	if err != nil {
		return 0, err
	}

	tokens, err := r.tokens.Lookup(ticketID)
	if err != nil {
		return 0, fmt.Errorf("looking up tokens for ticket %s: %w", ticketID, err)
	}
	if len(tokens) == 0 {
		return 0, ErrNoTokens
	}

	sent := 0
	for _, token := range tokens {
		if err := r.votes.Feedback(ctx, []string{token}, event); err != nil {
			r.logger.Error("sending feedback failed", "ticket_id", ticketID, "event", event, "error", err)
			continue
		}
		sent++
	}
	r.logger.Info("feedback relayed", "ticket_id", ticketID, "event", event, "sent", sent, "tokens", len(tokens))
	return sent, nil
}

func voteEvent(sentiment string) (string, error) {
	switch sentiment {
	case "positive":
		return glean.EventUpvote, nil
	case "negative":
		return glean.EventDownvote, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidSentiment, sentiment)
	}
}
