package lexer

import (
	"github.com/ava12/hilite/grammar"
)

// flush classifies pending text of f up to the given offset.
func (s *scanner) flush(f *frame, to int) error {
	from := f.pending
	if to <= from {
		return nil
	}

	f.pending = to
	return classify(f.mode, s.text, from, to, s.em.add)
}

// classify splits text[start:end] into words using mode word pattern
// and calls emit for each word found in mode keyword table.
func classify(m *grammar.Mode, text []rune, start, end int, emit func(cat grammar.Category, start, end int)) error {
	if m.WordRe == nil || m.Keywords.Len() == 0 {
		return nil
	}

	run := text[start:end]
	match, e := m.WordRe.FindRunesMatch(run)
	for match != nil && e == nil {
		if match.Length > 0 {
			word := string(run[match.Index : match.Index+match.Length])
			if cat := m.Keywords.Lookup(word); cat != grammar.Unclassified {
				emit(cat, start+match.Index, start+match.Index+match.Length)
			}
		}
		match, e = m.WordRe.FindNextMatch(match)
	}
	if e != nil {
		return matchError(start, m.WordRe)
	}
	return nil
}

// Classify splits text into words using word pattern of mode m and returns tokens for words
// found in mode keyword table. Other text is not covered by returned tokens.
func Classify(m *grammar.Mode, text string) ([]*Token, error) {
	var res []*Token
	runes := []rune(text)
	e := classify(m, runes, 0, len(runes), func(cat grammar.Category, start, end int) {
		res = append(res, &Token{Category: cat, Start: start, End: end})
	})
	return res, e
}
