package registry

import (
	"crypto/sha256"

	"github.com/ava12/hilite/grammar"
	"github.com/ava12/hilite/lexer"
)

type scanKey struct {
	grammar string
	digest  [sha256.Size]byte
	opts    lexer.Options
}

// digest returns cache key part for text, zero if the cache is disabled.
func (r *Registry) digest(text string) (sum [sha256.Size]byte) {
	if r.cache != nil {
		sum = sha256.Sum256([]byte(text))
	}
	return
}

// scan scans text with g. Complete results are kept in the result cache if it is enabled.
func (r *Registry) scan(g *grammar.Grammar, text []rune, sum [sha256.Size]byte, opts *lexer.Options) (*lexer.Result, error) {
	var key scanKey
	if r.cache != nil {
		key = scanKey{grammar: g.Name, digest: sum, opts: keyOptions(opts)}
		if res, has := r.cache.Get(key); has {
			metricCacheHits.WithLabelValues(g.Name).Inc()
			return res, nil
		}
	}

	res, e := lexer.ScanRunes(g, text, opts)
	metricScans.WithLabelValues(g.Name).Inc()
	metricScannedChars.WithLabelValues(g.Name).Add(float64(len(text)))
	if res.Truncated {
		metricTruncatedScans.WithLabelValues(g.Name).Inc()
	}
	if r.cache != nil && e == nil {
		r.cache.Add(key, res)
	}
	return res, e
}

// keyOptions maps options that scan the same way to the same value.
func keyOptions(opts *lexer.Options) lexer.Options {
	o := lexer.DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.MaxStall <= 0 {
		o.MaxStall = lexer.DefaultMaxStall
	}
	if o.MaxSteps < 0 {
		o.MaxSteps = -1
	}
	if o.Timeout < 0 {
		o.Timeout = 0
	}
	return o
}
