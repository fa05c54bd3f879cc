package zendesk

// Ticket is the subset of the Zendesk ticket object the bridge reads.
type Ticket struct {
	ID       int64  `json:"id"`
	Subject  string `json:"subject"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	FormID   int64  `json:"ticket_form_id"`
}

// Comment is one entry of a ticket's audit trail. Zendesk returns comments
// in chronological order; that order is the conversation and is preserved.
type Comment struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_id"`
	Body     string `json:"body"`
	Public   bool   `json:"public"`
}

// User carries the identity fields needed for thread serialization.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Group is a Zendesk group membership entry.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TicketForm is the form metadata attached to a ticket, used for routing.
type TicketForm struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
