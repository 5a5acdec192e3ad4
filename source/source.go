// Package source defines named text buffer addressed by character (rune) offsets.
package source

import (
	"unicode/utf8"
)

// Source is a named immutable text buffer.
// All offsets are character offsets, i.e. indexes in Runes() slice.
// Source caches the last looked up line, so it must not be used concurrently.
type Source struct {
	name          string
	text          string
	runes         []rune
	byteOffsets   []int
	lineStarts    []int
	prevLineIndex int
}

// New creates new Source.
func New(name, text string) *Source {
	s := &Source{name: name, text: text, prevLineIndex: -1}
	s.runes = []rune(text)
	s.lineStarts = append(make([]int, 0, 16), 0)
	for i, r := range s.runes {
		if r == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}

	return s
}

// Name returns source name, may be empty.
func (s *Source) Name() string {
	return s.name
}

// Text returns source content.
func (s *Source) Text() string {
	return s.text
}

// Runes returns source content as rune slice, the slice must not be modified.
func (s *Source) Runes() []rune {
	return s.runes
}

// Len returns source length in characters.
func (s *Source) Len() int {
	return len(s.runes)
}

// Slice returns text between start and end character offsets.
func (s *Source) Slice(start, end int) string {
	start, end = s.clamp(start), s.clamp(end)
	if start >= end {
		return ""
	}
	return string(s.runes[start:end])
}

// ByteOffset converts character offset to byte offset in Text().
func (s *Source) ByteOffset(pos int) int {
	pos = s.clamp(pos)
	if s.byteOffsets == nil {
		s.byteOffsets = make([]int, len(s.runes)+1)
		offset := 0
		for i, r := range s.runes {
			s.byteOffsets[i] = offset
			offset += utf8.RuneLen(r)
		}
		s.byteOffsets[len(s.runes)] = offset
	}
	return s.byteOffsets[pos]
}

func (s *Source) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(s.runes) {
		return len(s.runes)
	}
	return pos
}

// LineCol returns 1-based line and column numbers for character offset.
func (s *Source) LineCol(pos int) (line, col int) {
	var lineIndex int
	if pos < 0 {
		pos = 0
		lineIndex = 0
	} else if pos >= len(s.runes) {
		pos = len(s.runes)
		lineIndex = len(s.lineStarts) - 1
	} else {
		lineIndex = s.findLineIndex(pos)
	}

	return lineIndex + 1, pos - s.lineStarts[lineIndex] + 1
}

// Pos returns character offset for 1-based line and column numbers.
func (s *Source) Pos(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.runes)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1] + col - 1
	if res > l {
		return l
	} else {
		return res
	}
}

// SourcePos returns position descriptor for character offset.
func (s *Source) SourcePos(pos int) Pos {
	line, col := s.LineCol(pos)
	return Pos{s, s.clamp(pos), line, col}
}

func (s *Source) findLineIndex(pos int) int {
	if s.prevLineIndex >= 0 && s.lineStarts[s.prevLineIndex] <= pos {
		lineIndex := s.prevLineIndex
		last := len(s.lineStarts) - 1
		for lineIndex <= last && s.lineStarts[lineIndex] <= pos {
			lineIndex++
		}
		lineIndex--
		s.prevLineIndex = lineIndex
		return lineIndex
	}

	leftIndex := 0
	rightIndex := len(s.lineStarts) - 1
	if s.prevLineIndex >= 0 {
		rightIndex = s.prevLineIndex
	}
	for leftIndex < rightIndex {
		index := (leftIndex + rightIndex + 1) >> 1
		if s.lineStarts[index] <= pos {
			leftIndex = index
		} else {
			rightIndex = index - 1
		}
	}
	s.prevLineIndex = leftIndex
	return leftIndex
}

// Pos is a position in a source, implements hilite.SourcePos.
type Pos struct {
	src            *Source
	pos, line, col int
}

// NewPos creates position descriptor for a source that may be nil.
func NewPos(name string, line, col int) Pos {
	return Pos{src: &Source{name: name}, line: line, col: col}
}

func (p Pos) Source() *Source {
	return p.src
}

func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.name
}

func (p Pos) Pos() int {
	return p.pos
}

func (p Pos) Line() int {
	return p.line
}

func (p Pos) Col() int {
	return p.col
}
