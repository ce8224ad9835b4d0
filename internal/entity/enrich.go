package entity

import (
	"context"
	"fmt"
	"sync"

	"github.com/alnah/go-ezsite/internal/dom"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel lookups during enrichment.
const DefaultConcurrency = 4

// Enricher fills entity infobox components with knowledge-base data.
type Enricher struct {
	Resolver    Resolver
	Prefix      string
	Concurrency int
	Logger      *zap.Logger
}

// Enrich resolves the distinct QIDs of every {prefix}-entity-infobox under
// root and sets label and description attributes that are not already
// present. Lookup failures leave their infoboxes untouched; they are
// returned combined alongside the number of enriched elements.
func (e *Enricher) Enrich(ctx context.Context, root *html.Node) (int, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tag := e.Prefix + "-entity-infobox"
	byQID := make(map[string][]*html.Node)
	var order []string
	for _, n := range dom.FindAll(root, dom.ByTag(tag)) {
		qid := dom.AttrOr(n, "qid")
		if qid == "" {
			continue
		}
		if _, seen := byQID[qid]; !seen {
			order = append(order, qid)
		}
		byQID[qid] = append(byQID[qid], n)
	}
	if len(order) == 0 {
		return 0, nil
	}

	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu       sync.Mutex
		resolved = make(map[string]Entity, len(order))
		errs     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, qid := range order {
		qid := qid
		g.Go(func() error {
			ent, err := e.Resolver.Resolve(gctx, qid)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", qid, err))
				return nil
			}
			resolved[qid] = ent
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Attributes are set on the caller's goroutine; the tree is not shared.
	enriched := 0
	for _, qid := range order {
		ent, ok := resolved[qid]
		if !ok || ent.Empty() {
			continue
		}
		for _, n := range byQID[qid] {
			setIfAbsent(n, "label", ent.Label)
			setIfAbsent(n, "description", ent.Description)
			enriched++
		}
	}

	log.Debug("Entities enriched",
		zap.Int("qids", len(order)),
		zap.Int("resolved", len(resolved)),
		zap.Int("elements", enriched))
	return enriched, errs
}

func setIfAbsent(n *html.Node, key, val string) {
	if val == "" {
		return
	}
	if _, ok := dom.Attr(n, key); ok {
		return
	}
	dom.SetAttr(n, key, val)
}
