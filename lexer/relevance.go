package lexer

import (
	"github.com/ava12/hilite/grammar"
)

// Relevance accumulates weights of modes entered during a scan.
// It is used for grammar ranking only and never affects tokens.
type Relevance struct {
	total   int
	entered int
}

// Enter adds relevance of an entered mode.
func (r *Relevance) Enter(m *grammar.Mode) {
	r.total += m.Relevance
	r.entered++
}

// Total returns accumulated relevance.
func (r *Relevance) Total() int {
	return r.total
}

// Entered returns the number of entered modes.
func (r *Relevance) Entered() int {
	return r.entered
}
