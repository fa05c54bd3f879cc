// Package tokenstore persists Glean tracking tokens keyed by ticket id so
// later agent feedback can be correlated with the answer turn it refers to.
package tokenstore

// Store is the persistence capability for tracking tokens. One ticket may
// accumulate multiple tokens over its lifetime (one per answer turn), so
// Lookup returns all of them in the order they were saved.
type Store interface {
	Save(ticketID, token, applicationID string) error
	Lookup(ticketID string) ([]string, error)
	Close() error
}
