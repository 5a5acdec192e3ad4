// Package lexer defines mode-stack scanner.
//
// Scanner walks a text against compiled grammar and produces a nested token stream.
// Top-level tokens cover the whole text, so malformed input never makes the scan fail:
// modes left open are closed at the end of input, illegal matches close the mode that declared them,
// both cases are recorded in Result. The only error is BudgetExceededError, it is returned
// along with a complete (covering) truncated result.
//
// Scan is a pure function of grammar, text, and options, compiled grammar is never modified,
// so any number of scans may run concurrently.
package lexer

import (
	"time"

	"github.com/dlclark/regexp2"

	"github.com/ava12/hilite/grammar"
)

const (
	// DefaultStepsPerChar and DefaultMinSteps define step limit when Options.MaxSteps is zero.
	DefaultStepsPerChar = 16
	DefaultMinSteps     = 4096

	// DefaultMaxStall is the number of consecutive steps not advancing scan position
	// after which one character is consumed as plain text.
	DefaultMaxStall = 32
)

// Options limit scan work.
type Options struct {
	// MaxSteps limits the number of terminator matches.
	// Zero means DefaultStepsPerChar per character plus DefaultMinSteps, negative means no limit.
	MaxSteps int

	// MaxStall limits consecutive steps not advancing scan position, zero means DefaultMaxStall.
	MaxStall int

	// Timeout limits scan duration, zero means no limit.
	// Single pattern matches are limited by the grammar (see langdef.Options.MatchTimeout).
	Timeout time.Duration
}

// DefaultOptions returns options used when nil options are passed to Scan.
func DefaultOptions() Options {
	return Options{MaxStall: DefaultMaxStall}
}

type frame struct {
	mode    *grammar.Mode
	node    bool
	pending int
	body    int // end of begin text kept by the mode
}

type scanner struct {
	g      *grammar.Grammar
	text   []rune
	frames []frame
	pos    int
	em     *emitter
	rel    Relevance
	res    *Result
}

// Scan scans text using grammar g. opts may be nil.
// Token offsets are character (not byte) offsets, see source.Source for conversion.
// Returns non-nil result in any case and hilite.Error with BudgetExceededError code
// if the scan was truncated.
func Scan(g *grammar.Grammar, text string, opts *Options) (*Result, error) {
	return ScanRunes(g, []rune(text), opts)
}

// ScanRunes is the same as Scan, but takes decoded text.
func ScanRunes(g *grammar.Grammar, text []rune, opts *Options) (*Result, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	maxSteps := o.MaxSteps
	if maxSteps == 0 {
		maxSteps = len(text)*DefaultStepsPerChar + DefaultMinSteps
	}
	maxStall := o.MaxStall
	if maxStall <= 0 {
		maxStall = DefaultMaxStall
	}
	var deadline time.Time
	if o.Timeout > 0 {
		deadline = time.Now().Add(o.Timeout)
	}

	s := &scanner{
		g:      g,
		text:   text,
		frames: append(make([]frame, 0, 16), frame{mode: g.Root()}),
		em:     newEmitter(),
		res:    &Result{},
	}

	e := s.run(maxSteps, maxStall, deadline)
	if e == nil {
		e = s.finish()
	}
	if e != nil {
		s.truncate()
	}

	s.res.Tokens = s.em.finish(len(text))
	s.res.Relevance = s.rel.Total()
	return s.res, e
}

func (s *scanner) top() *frame {
	return &s.frames[len(s.frames)-1]
}

func (s *scanner) run(maxSteps, maxStall int, deadline time.Time) error {
	stall := 0
	for steps := 1; ; steps++ {
		if maxSteps > 0 && steps > maxSteps {
			return stepLimitError(maxSteps, s.pos)
		}
		if !deadline.IsZero() && steps&0xff == 0 && time.Now().After(deadline) {
			return scanTimeoutError(s.pos)
		}

		mode := s.top().mode
		if mode.Terminator == nil {
			return nil
		}
		m, e := mode.Terminator.FindRunesMatchStartingAt(s.text, s.pos)
		if e != nil {
			return matchError(s.pos, mode.Terminator)
		}
		if m == nil {
			return nil
		}

		pos := s.pos
		start, end := m.Index, m.Index+m.Length
		group := matchedGroup(m)
		switch {
		case group == grammar.NoGroup:
			return nil
		case group == mode.EndGroup:
			e = s.end(start, end)
		case group == mode.IllegalGroup:
			e = s.illegal(start, end)
		case group <= len(mode.Children):
			e = s.begin(mode.Children[group-1], start, end)
		default:
			return nil
		}
		if e != nil {
			return e
		}

		if s.pos > pos {
			stall = 0
			continue
		}
		stall++
		if stall > maxStall {
			if s.pos >= len(s.text) {
				return nil
			}
			s.pos++
			stall = 0
		}
	}
}

func matchedGroup(m *regexp2.Match) int {
	for i := 1; ; i++ {
		g := m.GroupByNumber(i)
		if g == nil {
			return grammar.NoGroup
		}
		if len(g.Captures) != 0 {
			return i
		}
	}
}

func (s *scanner) push(m *grammar.Mode, at int) {
	f := frame{mode: m, pending: at, body: at, node: m.Category != grammar.Unclassified}
	s.frames = append(s.frames, f)
	if f.node {
		s.em.open(m.Category, at)
	}
}

// closeTop flushes the active mode up to at and pops it, the parent continues at at.
func (s *scanner) closeTop(at int) error {
	f := s.top()
	if e := s.flush(f, at); e != nil {
		return e
	}
	if f.node {
		s.em.close(at)
	}
	s.frames = s.frames[:len(s.frames)-1]
	s.top().pending = at
	return nil
}

func (s *scanner) begin(id grammar.ModeID, start, end int) error {
	child := s.g.Mode(id)
	returnBegin := child.Is(grammar.ReturnBegin)
	at := start
	if child.Is(grammar.ExcludeBegin) && !returnBegin {
		at = end
	}
	if e := s.flush(s.top(), at); e != nil {
		return e
	}

	s.push(child, at)
	s.rel.Enter(child)
	if returnBegin {
		s.pos = start
		return nil
	}

	s.top().body = end
	s.pos = end
	if child.Title != nil {
		return s.title(child.Title)
	}
	return nil
}

// title classifies text following begin text of the active mode.
func (s *scanner) title(rule *grammar.TitleRule) error {
	m, e := rule.Re.FindRunesMatchStartingAt(s.text, s.pos)
	if e != nil {
		return matchError(s.pos, rule.Re)
	}
	if m == nil || m.Index != s.pos {
		return nil
	}

	start := s.pos
	if blanks := m.GroupByNumber(1); blanks != nil {
		start += blanks.Length
	}
	end := m.Index + m.Length
	if end <= start {
		return nil
	}

	f := s.top()
	if e = s.flush(f, start); e != nil {
		return e
	}
	s.em.add(rule.Category, start, end)
	f.pending = end
	s.pos = end
	return nil
}

// end handles end alternative matched at [start, end).
// The closing mode is the innermost one whose own end matches at start,
// modes ending with parent are closed along with it.
func (s *scanner) end(start, end int) error {
	level := len(s.frames) - 1
	closeEnd := end
	for level > 0 {
		m := s.frames[level].mode
		if m.EndRe != nil {
			match, e := m.EndRe.FindRunesMatchStartingAt(s.text, start)
			if e != nil {
				return matchError(start, m.EndRe)
			}
			if match != nil && match.Index == start {
				closeEnd = start + match.Length
				break
			}
		}
		if !m.Is(grammar.EndsWithParent) || level == 1 {
			break
		}
		level--
	}

	for len(s.frames)-1 > level {
		if e := s.closeTop(start); e != nil {
			return e
		}
	}

	var e error
	m := s.top().mode
	switch {
	case m.Is(grammar.ReturnEnd):
		e = s.closeTop(start)
		s.pos = start
	case m.Is(grammar.ExcludeEnd):
		e = s.closeTop(start)
		s.pos = closeEnd
	default:
		e = s.closeTop(closeEnd)
		s.pos = closeEnd
	}
	return e
}

// illegal closes the active mode and emits illegal text to the parent.
// The mode keeps its begin text and nested modes, the rest of its unclassified run
// up to start goes to the parent. At the root level only the token is emitted.
func (s *scanner) illegal(start, end int) error {
	f := s.top()
	s.res.Illegal = append(s.res.Illegal, IllegalMatch{Mode: f.mode.Name, Start: start, End: end})
	if len(s.frames) > 1 {
		if e := s.flush(f, f.body); e != nil {
			return e
		}
		cut := f.pending
		if f.node {
			s.em.close(cut)
		}
		s.frames = s.frames[:len(s.frames)-1]
		s.top().pending = cut
	}
	if e := s.flush(s.top(), start); e != nil {
		return e
	}

	s.em.add(grammar.Illegal, start, end)
	s.top().pending = end
	s.pos = end
	return nil
}

// finish closes all modes at the end of input.
func (s *scanner) finish() error {
	n := len(s.text)
	for len(s.frames) > 1 {
		s.res.Unterminated = append(s.res.Unterminated, s.top().mode.Name)
		if e := s.closeTop(n); e != nil {
			return e
		}
	}
	return s.flush(s.top(), n)
}

// truncate closes all modes at the last classified position, the rest of text is left unclassified.
func (s *scanner) truncate() {
	cut := s.top().pending
	for len(s.frames) > 1 {
		if s.top().node {
			s.em.close(cut)
		}
		s.frames = s.frames[:len(s.frames)-1]
	}
	s.res.Truncated = true
}
