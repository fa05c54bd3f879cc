// Package identity resolves comment authors to an email and group names,
// caching lookups for the duration of one pipeline run.
package identity

import (
	"context"
	"log/slog"

	"github.com/psouza/gleandesk/internal/zendesk"
)

// Sentinel values emitted into serialized threads when an author cannot be
// resolved. They match what agents already see in existing tickets.
const (
	UnknownAuthorEmail = "Autor Desconhecido"
	LookupFailedEmail  = "Erro ao buscar email"
)

// Directory is the subset of the ticket store used for identity lookups.
type Directory interface {
	GetUser(ctx context.Context, userID int64) (zendesk.User, error)
	GetUserGroups(ctx context.Context, userID int64) ([]zendesk.Group, error)
}

// Identity is a resolved commenter: display email plus group names.
type Identity struct {
	Email  string
	Groups []string
}

// Resolver resolves author ids against a Directory with an unbounded
// in-process cache. A Resolver is scoped to a single pipeline run and must
// not be shared across concurrent runs; construct a fresh one per run.
type Resolver struct {
	dir    Directory
	cache  map[int64]Identity
	logger *slog.Logger
}

// NewResolver creates a Resolver with an empty cache.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{
		dir:    dir,
		cache:  make(map[int64]Identity),
		logger: slog.Default(),
	}
}

// Resolve returns the identity for the given author id, consulting the cache
// first. Lookup failures never propagate: they yield a sentinel identity so
// one unresolvable author cannot abort thread serialization. The sentinel is
// cached too, avoiding repeat round-trips for the same failing id within a run.
func (r *Resolver) Resolve(ctx context.Context, authorID int64) Identity {
	if ident, ok := r.cache[authorID]; ok {
		return ident
	}

	user, err := r.dir.GetUser(ctx, authorID)
	if err != nil {
		r.logger.Warn("user lookup failed", "author_id", authorID, "error", err)
		ident := Identity{Email: LookupFailedEmail}
		r.cache[authorID] = ident
		return ident
	}

	email := user.Email
	if email == "" {
		email = "Email não encontrado"
	}
	ident := Identity{Email: email}
	groups, err := r.dir.GetUserGroups(ctx, authorID)
	if err != nil {
		r.logger.Warn("group lookup failed", "author_id", authorID, "error", err)
	} else {
		for _, g := range groups {
			ident.Groups = append(ident.Groups, g.Name)
		}
	}

	r.cache[authorID] = ident
	return ident
}
