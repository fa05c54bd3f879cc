package thread

import (
	"context"
	"strings"
	"testing"

	"github.com/psouza/gleandesk/internal/identity"
	"github.com/psouza/gleandesk/internal/zendesk"
)

type fakeResolver struct {
	identities map[int64]identity.Identity
}

func (r *fakeResolver) Resolve(_ context.Context, authorID int64) identity.Identity {
	if ident, ok := r.identities[authorID]; ok {
		return ident
	}
	return identity.Identity{Email: identity.LookupFailedEmail}
}

func TestSerialize_BasicThread(t *testing.T) {
	resolver := &fakeResolver{identities: map[int64]identity.Identity{
		1: {Email: "a@x.com", Groups: []string{"Support"}},
	}}
	s := NewSerializer(resolver, nil, false)

	got := s.Serialize(context.Background(), "42",
		zendesk.Ticket{ID: 42, Subject: "Login issue"},
		[]zendesk.Comment{{AuthorID: 1, Body: "It's broken\nreally"}},
	)

	want := "-------------\nTicket ID: 42\n - subject: Login issue\n - comentário 1 (a@x.com | Grupos: Support): It's broken really\n"
	if got != want {
		t.Errorf("Serialize =\n%q\nwant\n%q", got, want)
	}
}

func TestSerialize_Deterministic(t *testing.T) {
	resolver := &fakeResolver{identities: map[int64]identity.Identity{
		1: {Email: "a@x.com", Groups: []string{"Support"}},
		2: {Email: "b@x.com", Groups: []string{"Billing", "Support"}},
	}}
	s := NewSerializer(resolver, nil, true)

	ticket := zendesk.Ticket{ID: 42, Subject: "Login issue", Priority: "high", Status: "open"}
	comments := []zendesk.Comment{
		{AuthorID: 1, Body: "first"},
		{AuthorID: 2, Body: "second"},
	}

	first := s.Serialize(context.Background(), "42", ticket, comments)
	second := s.Serialize(context.Background(), "42", ticket, comments)
	if first != second {
		t.Error("two serializations of the same inputs differ")
	}
}

func TestSerialize_ExcludedAuthor(t *testing.T) {
	resolver := &fakeResolver{identities: map[int64]identity.Identity{
		1: {Email: "bot@sys.com"},
	}}
	s := NewSerializer(resolver, []string{"bot@sys.com"}, false)

	got := s.Serialize(context.Background(), "42",
		zendesk.Ticket{ID: 42, Subject: "Login issue"},
		[]zendesk.Comment{{AuthorID: 1, Body: "automated noise"}},
	)

	want := "-------------\nTicket ID: 42\n - subject: Login issue\n"
	if got != want {
		t.Errorf("Serialize = %q, want header only %q", got, want)
	}
}

func TestSerialize_ExcludedAuthorConsumesNumber(t *testing.T) {
	resolver := &fakeResolver{identities: map[int64]identity.Identity{
		1: {Email: "a@x.com", Groups: []string{"Support"}},
		2: {Email: "bot@sys.com"},
		3: {Email: "c@x.com", Groups: []string{"Billing"}},
	}}
	s := NewSerializer(resolver, []string{"bot@sys.com"}, false)

	got := s.Serialize(context.Background(), "42",
		zendesk.Ticket{ID: 42, Subject: "Login issue"},
		[]zendesk.Comment{
			{AuthorID: 1, Body: "one"},
			{AuthorID: 2, Body: "noise"},
			{AuthorID: 3, Body: "three"},
		},
	)

	// The excluded comment keeps its slot: numbering jumps from 1 to 3.
	if !strings.Contains(got, "comentário 1 (a@x.com") {
		t.Errorf("missing comment 1 in %q", got)
	}
	if strings.Contains(got, "comentário 2") {
		t.Errorf("excluded comment rendered in %q", got)
	}
	if !strings.Contains(got, "comentário 3 (c@x.com") {
		t.Errorf("comment after exclusion should keep number 3, got %q", got)
	}
}

func TestSerialize_UnknownAuthorSkipsLookup(t *testing.T) {
	// Resolver would panic on any call; an absent author id must not reach it.
	s := NewSerializer(nil, nil, false)

	got := s.Serialize(context.Background(), "42",
		zendesk.Ticket{ID: 42, Subject: "Login issue"},
		[]zendesk.Comment{{AuthorID: 0, Body: "anonymous"}},
	)

	if !strings.Contains(got, "comentário 1 (Autor Desconhecido | Grupos: N/A): anonymous") {
		t.Errorf("unexpected output %q", got)
	}
}

func TestSerialize_VerboseHeader(t *testing.T) {
	s := NewSerializer(&fakeResolver{}, nil, true)

	got := s.Serialize(context.Background(), "42",
		zendesk.Ticket{ID: 42, Subject: "Login issue", Priority: "high", Status: "open"},
		nil,
	)

	want := "-------------\nTicket ID: 42\n - subject: Login issue\n - priority: high\n - status: open\n"
	if got != want {
		t.Errorf("Serialize = %q, want %q", got, want)
	}
}

func TestSerialize_MissingFieldsGetDefaults(t *testing.T) {
	s := NewSerializer(&fakeResolver{}, nil, true)

	got := s.Serialize(context.Background(), "42", zendesk.Ticket{ID: 42}, nil)

	for _, fragment := range []string{"Sem assunto", "Sem prioridade", "Sem status"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("output %q missing %q", got, fragment)
		}
	}
}

func TestSerialize_CollapsesNewlinesAndTrims(t *testing.T) {
	resolver := &fakeResolver{identities: map[int64]identity.Identity{
		1: {Email: "a@x.com", Groups: []string{"Support"}},
	}}
	s := NewSerializer(resolver, nil, false)

	got := s.Serialize(context.Background(), "42",
		zendesk.Ticket{ID: 42, Subject: "s"},
		[]zendesk.Comment{{AuthorID: 1, Body: "\nline one\nline two\n"}},
	)

	if !strings.Contains(got, ": line one line two\n") {
		t.Errorf("body not normalized: %q", got)
	}
}

func TestSerialize_NoGroups(t *testing.T) {
	resolver := &fakeResolver{identities: map[int64]identity.Identity{
		1: {Email: "a@x.com"},
	}}
	s := NewSerializer(resolver, nil, false)

	got := s.Serialize(context.Background(), "42",
		zendesk.Ticket{ID: 42, Subject: "s"},
		[]zendesk.Comment{{AuthorID: 1, Body: "hi"}},
	)

	if !strings.Contains(got, "(a@x.com | Grupos: Nenhum grupo): hi") {
		t.Errorf("unexpected output %q", got)
	}
}
