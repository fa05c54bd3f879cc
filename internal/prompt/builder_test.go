package prompt

import (
	"strings"
	"testing"

	"github.com/psouza/gleandesk/internal/glean"
)

func TestBuild_ReversesMessageOrder(t *testing.T) {
	req := Build("the thread", "act as support", "app-1")

	if len(req.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(req.Messages))
	}
	// Most-recent-first on the wire: user thread before system instruction.
	if req.Messages[0].Author != glean.AuthorUser {
		t.Errorf("messages[0].Author = %q, want %q", req.Messages[0].Author, glean.AuthorUser)
	}
	if req.Messages[1].Author != glean.AuthorSystem {
		t.Errorf("messages[1].Author = %q, want %q", req.Messages[1].Author, glean.AuthorSystem)
	}
	if got := req.Messages[0].Fragments[0].Text; got != "the thread" {
		t.Errorf("user fragment = %q", got)
	}
	if got := req.Messages[1].Fragments[0].Text; got != "act as support" {
		t.Errorf("system fragment = %q", got)
	}
}

func TestBuild_StreamingRequest(t *testing.T) {
	req := Build("t", "s", "app-1")

	if !req.Stream {
		t.Error("Stream should be true")
	}
	if req.ApplicationID != "app-1" {
		t.Errorf("ApplicationID = %q", req.ApplicationID)
	}
	for _, m := range req.Messages {
		if m.MessageType != glean.MessageTypeContent {
			t.Errorf("MessageType = %q", m.MessageType)
		}
	}
}

func TestBuild_DefaultSystemPrompt(t *testing.T) {
	req := Build("t", "", "app-1")

	got := req.Messages[1].Fragments[0].Text
	if got != DefaultSystemPrompt {
		t.Errorf("system fragment = %q, want default prompt", got)
	}
	if !strings.Contains(got, "Ticket ID: <número>") {
		t.Errorf("default prompt missing document structure: %q", got)
	}
}
