// Package prompt wraps a serialized ticket thread into the two-message
// conversational request shape expected by the answer service.
package prompt

import (
	"slices"

	"github.com/psouza/gleandesk/internal/glean"
)

// DefaultSystemPrompt is the fixed instruction sent with every thread unless
// overridden by configuration. It mirrors the document structure produced by
// the thread serializer.
const DefaultSystemPrompt = "Você receberá o conteúdo de um ticket do Zendesk. A estrutura será assim:\n\n" +
	"-------------\nTicket ID: <número>\n" +
	" - subject: <assunto do ticket>\n" +
	" - comentário 1 (<autor> | Grupos: <grupos>): <conteúdo>\n" +
	" - comentário 2 (<autor> | Grupos: <grupos>): <conteúdo>\n" +
	"...\n\n" +
	"Com base nisso, gere uma sugestão de resposta para resolver o problema do cliente de forma clara e útil.\n\n" +
	"A resposta deve ser educada e profissional, mantendo um tom amigável.\n\n"

// Build assembles the streaming chat request for one serialized thread.
// The conversation is system instruction then user thread, but the API
// expects the messages array ordered most-recent-first, so the pair is
// reversed before transmission.
func Build(threadText, systemPrompt, applicationID string) glean.ChatRequest {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	messages := []glean.Message{
		{
			Author:      glean.AuthorSystem,
			MessageType: glean.MessageTypeContent,
			Fragments:   []glean.Fragment{{Text: systemPrompt}},
		},
		{
			Author:      glean.AuthorUser,
			MessageType: glean.MessageTypeContent,
			Fragments:   []glean.Fragment{{Text: threadText}},
		},
	}
	slices.Reverse(messages)

	return glean.ChatRequest{
		Stream:        true,
		ApplicationID: applicationID,
		Messages:      messages,
	}
}
