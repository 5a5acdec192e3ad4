package registry

import (
	"context"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava12/hilite"
	"github.com/ava12/hilite/lexer"
)

// Score is the relevance of a text scanned with a grammar.
type Score struct {
	Name      string `json:"name"`
	Relevance int    `json:"relevance"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Rank scans text with each of the named grammars (all registered grammars if names is empty)
// concurrently and returns scores ordered by relevance descending, then by name.
// Truncated scans are ranked by partial relevance. Other errors (e.g. unknown or broken grammars)
// cancel ranking and are returned.
func (r *Registry) Rank(ctx context.Context, text string, names []string, opts *lexer.Options) ([]Score, error) {
	if len(names) == 0 {
		names = r.Names()
	}
	scores := make([]Score, len(names))
	runes := []rune(text)
	sum := r.digest(text)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if e := ctx.Err(); e != nil {
				return e
			}

			gr, e := r.Lookup(name)
			if e != nil {
				return e
			}
			res, e := r.scan(gr, runes, sum, opts)
			if e != nil && hilite.Code(e) != lexer.BudgetExceededError {
				return e
			}
			if e != nil {
				r.log.Debug("scan truncated", zap.String("grammar", gr.Name), zap.Error(e))
			}
			scores[i] = Score{Name: gr.Name, Relevance: res.Relevance, Truncated: res.Truncated}
			return nil
		})
	}
	if e := g.Wait(); e != nil {
		return nil, e
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Relevance != scores[j].Relevance {
			return scores[i].Relevance > scores[j].Relevance
		}
		return scores[i].Name < scores[j].Name
	})
	return scores, nil
}
