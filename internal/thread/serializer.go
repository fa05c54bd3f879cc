// Package thread turns a ticket and its comment trail into the deterministic
// plain-text document submitted to the answer service.
package thread

import (
	"context"
	"fmt"
	"strings"

	"github.com/psouza/gleandesk/internal/identity"
	"github.com/psouza/gleandesk/internal/zendesk"
)

// Resolver maps an author id to an identity. Satisfied by identity.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, authorID int64) identity.Identity
}

// Serializer renders ticket threads as text. Identical inputs always produce
// byte-identical output.
type Serializer struct {
	resolver Resolver
	excluded map[string]struct{}
	verbose  bool
}

// NewSerializer creates a Serializer. Comments whose resolved author email is
// in excludedEmails (system and bot accounts) are omitted from the output.
// When verbose is set, the header also carries priority and status.
func NewSerializer(resolver Resolver, excludedEmails []string, verbose bool) *Serializer {
	excluded := make(map[string]struct{}, len(excludedEmails))
	for _, e := range excludedEmails {
		e = strings.TrimSpace(e)
		if e != "" {
			excluded[e] = struct{}{}
		}
	}
	return &Serializer{resolver: resolver, excluded: excluded, verbose: verbose}
}

// Serialize renders the header block followed by one line per retained
// comment. Comment numbers follow the position in the full comment list, so
// an excluded comment still consumes its number and leaves a gap; downstream
// consumers rely on numbers being stable regardless of the exclusion set.
func (s *Serializer) Serialize(ctx context.Context, ticketID string, ticket zendesk.Ticket, comments []zendesk.Comment) string {
	var b strings.Builder

	b.WriteString("-------------\n")
	fmt.Fprintf(&b, "Ticket ID: %s\n", ticketID)
	fmt.Fprintf(&b, " - subject: %s\n", orDefault(ticket.Subject, "Sem assunto"))
	if s.verbose {
		fmt.Fprintf(&b, " - priority: %s\n", orDefault(ticket.Priority, "Sem prioridade"))
		fmt.Fprintf(&b, " - status: %s\n", orDefault(ticket.Status, "Sem status"))
	}

	for i, comment := range comments {
		body := strings.TrimSpace(strings.ReplaceAll(comment.Body, "\n", " "))

		var email, groups string
		if comment.AuthorID == 0 {
			email = identity.UnknownAuthorEmail
			groups = "N/A"
		} else {
			ident := s.resolver.Resolve(ctx, comment.AuthorID)
			email = ident.Email
			groups = "Nenhum grupo"
			if len(ident.Groups) > 0 {
				groups = strings.Join(ident.Groups, ", ")
			}
		}

		if _, skip := s.excluded[email]; skip {
			continue
		}

		fmt.Fprintf(&b, " - comentário %d (%s | Grupos: %s): %s\n", i+1, email, groups, body)
	}

	return b.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
