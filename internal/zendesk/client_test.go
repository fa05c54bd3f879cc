package zendesk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(srv *httptest.Server) *Client {
	return NewClientWithBaseURL(srv.URL, "agent@example.com", "secret", 0)
}

func TestGetTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/tickets/42.json" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "agent@example.com/token" || pass != "secret" {
			t.Errorf("basic auth = %q/%q, ok=%v", user, pass, ok)
		}
		w.Write([]byte(`{"ticket":{"id":42,"subject":"Login issue","status":"open","priority":"high","ticket_form_id":900}}`))
	}))
	defer srv.Close()

	ticket, err := testClient(srv).GetTicket(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetTicket: %v", err)
	}
	if ticket.ID != 42 || ticket.Subject != "Login issue" || ticket.FormID != 900 {
		t.Errorf("unexpected ticket: %+v", ticket)
	}
}

func TestGetTicket_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"RecordNotFound"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).GetTicket(context.Background(), "42")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestGetComments_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/tickets/7/comments.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"comments":[
			{"id":1,"author_id":10,"body":"first","public":true},
			{"id":2,"author_id":20,"body":"second","public":false},
			{"id":3,"author_id":10,"body":"third","public":true}
		]}`))
	}))
	defer srv.Close()

	comments, err := testClient(srv).GetComments(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if comments[i].Body != want {
			t.Errorf("comments[%d].Body = %q, want %q", i, comments[i].Body, want)
		}
	}
}

func TestGetUserAndGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/users/10.json":
			w.Write([]byte(`{"user":{"id":10,"name":"Ana","email":"ana@example.com"}}`))
		case "/api/v2/users/10/groups.json":
			w.Write([]byte(`{"groups":[{"id":1,"name":"Support"},{"id":2,"name":"Billing"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := testClient(srv)
	user, err := c.GetUser(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("user.Email = %q", user.Email)
	}

	groups, err := c.GetUserGroups(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetUserGroups: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "Support" {
		t.Errorf("unexpected groups: %+v", groups)
	}
}

func TestPostInternalNote(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v2/tickets/42.json" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		w.Write([]byte(`{"ticket":{"id":42}}`))
	}))
	defer srv.Close()

	if err := testClient(srv).PostInternalNote(context.Background(), "42", "a suggestion"); err != nil {
		t.Fatalf("PostInternalNote: %v", err)
	}

	comment := captured["ticket"].(map[string]any)["comment"].(map[string]any)
	if comment["body"] != "a suggestion" {
		t.Errorf("body = %v", comment["body"])
	}
	if comment["public"] != false {
		t.Error("note must be private")
	}
}

func TestGetTicketForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/ticket_forms/900.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"ticket_form":{"id":900,"name":"Product Support","active":true}}`))
	}))
	defer srv.Close()

	form, err := testClient(srv).GetTicketForm(context.Background(), 900)
	if err != nil {
		t.Fatalf("GetTicketForm: %v", err)
	}
	if form.ID != 900 || form.Name != "Product Support" {
		t.Errorf("unexpected form: %+v", form)
	}
}

func TestListTicketForms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/ticket_forms.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"ticket_forms":[{"id":900,"name":"Product Support","active":true}]}`))
	}))
	defer srv.Close()

	forms, err := testClient(srv).ListTicketForms(context.Background())
	if err != nil {
		t.Fatalf("ListTicketForms: %v", err)
	}
	if len(forms) != 1 || forms[0].Name != "Product Support" {
		t.Errorf("unexpected forms: %+v", forms)
	}
}
