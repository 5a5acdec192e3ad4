package lexer

import (
	"github.com/ava12/hilite/grammar"
)

// Token is a classified span of scanned text.
// Start and End are character offsets, End is exclusive.
// Children are ordered, do not overlap, and lie within the parent span.
type Token struct {
	Category grammar.Category `json:"category,omitempty"`
	Start    int              `json:"start"`
	End      int              `json:"end"`
	Children []*Token         `json:"children,omitempty"`
}

// Len returns token length in characters.
func (t *Token) Len() int {
	return t.End - t.Start
}

// Text returns token text, text must be the scanned buffer.
func (t *Token) Text(text []rune) string {
	return string(text[t.Start:t.End])
}

// IllegalMatch describes a mode closed by its illegal pattern.
type IllegalMatch struct {
	Mode       string
	Start, End int
}

// Result is the outcome of a scan.
type Result struct {
	// Tokens cover the whole input, gaps between classified tokens are filled with Unclassified ones.
	Tokens []*Token

	// Relevance is the sum of relevance weights of all entered modes.
	Relevance int

	// Truncated is set if scan budget was exceeded,
	// in this case text following the last emitted token is a single unclassified token.
	Truncated bool

	// Illegal lists modes closed by illegal matches, in order of occurrence.
	Illegal []IllegalMatch

	// Unterminated lists names of modes left open at the end of input, innermost first.
	Unterminated []string
}

// Walk calls f for each token in depth-first order, depth is 0 for top-level tokens.
// Children of a token are skipped if f returns false.
func Walk(tokens []*Token, f func(t *Token, depth int) bool) {
	walk(tokens, 0, f)
}

func walk(tokens []*Token, depth int, f func(t *Token, depth int) bool) {
	for _, t := range tokens {
		if f(t, depth) && len(t.Children) != 0 {
			walk(t.Children, depth+1, f)
		}
	}
}

// Find returns all tokens (at any depth) of given category in depth-first order.
func Find(tokens []*Token, cat grammar.Category) []*Token {
	var res []*Token
	Walk(tokens, func(t *Token, _ int) bool {
		if t.Category == cat {
			res = append(res, t)
		}
		return true
	})
	return res
}
