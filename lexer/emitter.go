package lexer

import (
	"github.com/ava12/hilite/grammar"
)

// emitter assembles nested token stream.
// Tokens are appended in text order, open tokens form a stack, the bottom one is virtual.
type emitter struct {
	root  Token
	stack []*Token
}

func newEmitter() *emitter {
	e := &emitter{}
	e.stack = append(make([]*Token, 0, 16), &e.root)
	return e
}

func (e *emitter) current() *Token {
	return e.stack[len(e.stack)-1]
}

// add appends a leaf token to the innermost open token, empty tokens are dropped.
func (e *emitter) add(cat grammar.Category, start, end int) {
	if start >= end {
		return
	}
	parent := e.current()
	parent.Children = append(parent.Children, &Token{Category: cat, Start: start, End: end})
}

// open starts a nested token at start.
func (e *emitter) open(cat grammar.Category, start int) {
	t := &Token{Category: cat, Start: start, End: start}
	parent := e.current()
	parent.Children = append(parent.Children, t)
	e.stack = append(e.stack, t)
}

// close finishes the innermost open token at end, empty tokens are removed.
func (e *emitter) close(end int) {
	if len(e.stack) <= 1 {
		return
	}

	t := e.current()
	e.stack = e.stack[:len(e.stack)-1]
	if end < t.Start {
		end = t.Start
	}
	t.End = end
	if t.End == t.Start && len(t.Children) == 0 {
		parent := e.current()
		parent.Children = parent.Children[:len(parent.Children)-1]
	}
}

// finish closes all open tokens at length and returns top-level tokens covering [0, length).
func (e *emitter) finish(length int) []*Token {
	for len(e.stack) > 1 {
		e.close(length)
	}

	res := make([]*Token, 0, len(e.root.Children)*2+1)
	pos := 0
	for _, t := range e.root.Children {
		if t.Start > pos {
			res = append(res, &Token{Start: pos, End: t.Start})
		}
		res = append(res, t)
		pos = t.End
	}
	if pos < length {
		res = append(res, &Token{Start: pos, End: length})
	}
	return res
}
