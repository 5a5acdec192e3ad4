// Package test contains assertion helpers shared by package tests.
package test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ava12/hilite"
	"github.com/ava12/hilite/grammar"
	"github.com/ava12/hilite/lexer"
)

// ErrorCode asserts that e is (or wraps) *hilite.Error with expected code.
func ErrorCode(t testing.TB, expected int, e error, msgAndArgs ...any) bool {
	t.Helper()
	var he *hilite.Error
	if !assert.ErrorAs(t, e, &he, msgAndArgs...) {
		return false
	}
	return assert.Equal(t, expected, he.Code, msgAndArgs...)
}

// Coverage asserts that top-level tokens cover text without gaps and overlaps,
// and nested tokens are ordered, non-empty, and lie within their parents.
func Coverage(t testing.TB, text string, tokens []*lexer.Token) bool {
	t.Helper()
	runes := []rune(text)
	pos := 0
	for _, tok := range tokens {
		if !assert.Equal(t, pos, tok.Start, "gap or overlap at offset %d", pos) {
			return false
		}
		if !assert.Less(t, tok.Start, tok.End, "empty token at offset %d", pos) {
			return false
		}
		if !nested(t, tok) {
			return false
		}
		pos = tok.End
	}
	if !assert.Equal(t, len(runes), pos, "text is not covered") {
		return false
	}

	concat := ""
	for _, tok := range tokens {
		concat += tok.Text(runes)
	}
	return assert.Equal(t, text, concat)
}

func nested(t testing.TB, parent *lexer.Token) bool {
	t.Helper()
	pos := parent.Start
	for _, child := range parent.Children {
		if !assert.LessOrEqual(t, pos, child.Start, "child overlaps at offset %d", child.Start) ||
			!assert.Less(t, child.Start, child.End, "empty child at offset %d", child.Start) ||
			!assert.LessOrEqual(t, child.End, parent.End, "child exceeds parent at offset %d", child.End) ||
			!nested(t, child) {
			return false
		}
		pos = child.End
	}
	return true
}

// Find returns tokens (at any depth) of given category with given text.
func Find(text string, tokens []*lexer.Token, cat grammar.Category, s string) []*lexer.Token {
	runes := []rune(text)
	var res []*lexer.Token
	for _, tok := range lexer.Find(tokens, cat) {
		if tok.Text(runes) == s {
			res = append(res, tok)
		}
	}
	return res
}

// Texts returns texts of tokens.
func Texts(text string, tokens []*lexer.Token) []string {
	runes := []rune(text)
	res := make([]string, len(tokens))
	for i, tok := range tokens {
		res[i] = tok.Text(runes)
	}
	return res
}

// Categories returns categories of tokens.
func Categories(tokens []*lexer.Token) []grammar.Category {
	res := make([]grammar.Category, len(tokens))
	for i, tok := range tokens {
		res[i] = tok.Category
	}
	return res
}
