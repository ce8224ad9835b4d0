// Package entity resolves knowledge-base entities (Wikidata QIDs) and
// enriches entity infobox components with their label and description.
//
// Lookups go through a Cache that evicts entries after a TTL and coalesces
// concurrent requests for the same QID into a single fetch.
package entity

import (
	"context"
	"errors"
	"regexp"
)

// Sentinel errors for entity resolution.
var (
	ErrInvalidQID = errors.New("invalid entity id")
	ErrFetch      = errors.New("entity fetch failed")
	ErrNotFound   = errors.New("entity not found")
)

var qidPattern = regexp.MustCompile(`^Q[0-9]+$`)

// Entity is the subset of a knowledge-base record used by pages.
type Entity struct {
	ID          string
	Label       string
	Description string
}

// Empty reports whether the entity carries no displayable data.
func (e Entity) Empty() bool {
	return e.Label == "" && e.Description == ""
}

// Resolver looks up one entity by QID.
type Resolver interface {
	Resolve(ctx context.Context, qid string) (Entity, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, qid string) (Entity, error)

// Resolve calls f(ctx, qid).
func (f ResolverFunc) Resolve(ctx context.Context, qid string) (Entity, error) { return f(ctx, qid) }

// IsQID reports whether s is a well-formed QID such as Q90.
func IsQID(s string) bool {
	return qidPattern.MatchString(s)
}
