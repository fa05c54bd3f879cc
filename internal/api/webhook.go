// Package api exposes the inbound webhook surface consumed by Zendesk
// triggers: the ticket-tag entry that starts an answer pipeline run and the
// feedback entry that relays agent votes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/psouza/gleandesk/internal/feedback"
	"github.com/psouza/gleandesk/internal/pipeline"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Submitter enqueues a pipeline event. Satisfied by pipeline.Dispatcher.
type Submitter interface {
	Submit(ev pipeline.Event) bool
}

// FeedbackRelay forwards agent sentiment. Satisfied by feedback.Relay.
type FeedbackRelay interface {
	Relay(ctx context.Context, ticketID, sentiment string) (int, error)
}

// Deps carries the handler dependencies.
type Deps struct {
	Dispatcher Submitter
	Feedback   FeedbackRelay
}

// NewHandler builds the webhook router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/zendesk-to-glean", handleTicketTagged(deps))
	r.Post("/webhook/feedback", handleFeedback(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// webhookTicket matches the ticket object Zendesk triggers put in webhook
// bodies. The id arrives as a number or a string depending on how the
// trigger template was written, so json.Number absorbs both.
type webhookTicket struct {
	ID       json.Number `json:"id"`
	Feedback string      `json:"feedback"`
}

type webhookPayload struct {
	Ticket webhookTicket `json:"ticket"`
	// Some trigger templates nest the ticket under "detail" instead.
	Detail webhookTicket `json:"detail"`
}

func (p webhookPayload) ticketID() string {
	if id := p.Ticket.ID.String(); id != "" {
		return id
	}
	return p.Detail.ID.String()
}

// handleTicketTagged acknowledges the webhook immediately and hands the
// event to the dispatcher; the pipeline outcome never influences the
// response Zendesk sees.
func handleTicketTagged(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		ticketID := payload.ticketID()
		if ticketID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "ticket id not found in payload")
			return
		}

		ev := pipeline.Event{ID: uuid.New().String(), TicketID: ticketID}
		if !deps.Dispatcher.Submit(ev) {
			httpError(w, http.StatusServiceUnavailable, "overloaded_error", "event queue is full, try again later")
			return
		}
		slog.Info("ticket event accepted", "event_id", ev.ID, "ticket_id", ticketID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "received"})
	}
}

func handleFeedback(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		ticketID := payload.Ticket.ID.String()
		if ticketID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "ticket id is required")
			return
		}

		sent, err := deps.Feedback.Relay(r.Context(), ticketID, payload.Ticket.Feedback)
		switch {
		case errors.Is(err, feedback.ErrInvalidSentiment):
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		case errors.Is(err, feedback.ErrNoTokens):
			httpError(w, http.StatusNotFound, "not_found_error", "no tracking token stored for ticket %s", ticketID)
			return
		case err != nil:
			httpError(w, http.StatusInternalServerError, "api_error", "relaying feedback: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "sent",
			"tokens": sent,
		})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
