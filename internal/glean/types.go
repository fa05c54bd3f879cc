package glean

import "strings"

// Message authors and types used by the Glean chat API.
const (
	AuthorSystem = "SYSTEM"
	AuthorUser   = "USER"

	MessageTypeContent = "CONTENT"
)

// Feedback events accepted by the Glean feedback endpoint.
const (
	EventUpvote   = "UPVOTE"
	EventDownvote = "DOWNVOTE"
	EventView     = "VIEW"
)

// Fragment is one piece of message text.
type Fragment struct {
	Text string `json:"text"`
}

// SourceDocument is a document reference attached to a citation.
type SourceDocument struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// SourcePerson is a person reference attached to a citation.
type SourcePerson struct {
	Name string `json:"name,omitempty"`
}

// Citation is a source reference for part of a generated answer.
type Citation struct {
	Text           string          `json:"text,omitempty"`
	URL            string          `json:"url,omitempty"`
	SourceDocument *SourceDocument `json:"sourceDocument,omitempty"`
	SourcePerson   *SourcePerson   `json:"sourcePerson,omitempty"`
}

// ResolvedURL returns the citation's own URL, falling back to the linked
// document's URL. Empty when neither is present.
func (c Citation) ResolvedURL() string {
	if c.URL != "" {
		return c.URL
	}
	if c.SourceDocument != nil {
		return c.SourceDocument.URL
	}
	return ""
}

// Label returns the display text for a rendered source entry, trying free
// text, then the linked document title, then either URL. Empty means the
// citation is not renderable.
func (c Citation) Label() string {
	if t := strings.TrimSpace(c.Text); t != "" {
		return t
	}
	if c.SourceDocument != nil {
		if t := strings.TrimSpace(c.SourceDocument.Title); t != "" {
			return t
		}
	}
	if t := strings.TrimSpace(c.URL); t != "" {
		return t
	}
	if c.SourceDocument != nil {
		return strings.TrimSpace(c.SourceDocument.URL)
	}
	return ""
}

// Message is one message object of the chat protocol, used both in requests
// and in streamed response events.
type Message struct {
	Author        string     `json:"author"`
	MessageType   string     `json:"messageType"`
	Fragments     []Fragment `json:"fragments,omitempty"`
	Citations     []Citation `json:"citations,omitempty"`
	TrackingToken string     `json:"messageTrackingToken,omitempty"`
}

// ChatRequest is the body of the conversational endpoint. Messages are
// ordered most-recent-first on the wire.
type ChatRequest struct {
	Stream        bool      `json:"stream"`
	ApplicationID string    `json:"applicationId"`
	Messages      []Message `json:"messages"`
}

// chatEvent is one line of the streamed chat response.
type chatEvent struct {
	Messages []Message `json:"messages"`
}

// FeedbackRequest is the body of the feedback endpoint.
type FeedbackRequest struct {
	TrackingTokens []string `json:"trackingTokens"`
	Event          string   `json:"event"`
}
