// Package grammar defines compiled grammar used by lexer.
//
// Grammar is immutable after compilation and safe for concurrent use by any number of scans.
// Modes reference each other by ModeID handles, so recursive grammars are plain tables.
package grammar

import (
	"github.com/dlclark/regexp2"
)

// ModeID is a stable handle of a compiled mode, an index in Grammar.Modes.
type ModeID int

const (
	// RootMode is the handle of the virtual root mode.
	RootMode ModeID = 0

	// NoGroup marks a terminator alternative that is not present.
	NoGroup = 0
)

// ModeFlags modify the way the scanner opens and closes a mode.
type ModeFlags uint

const (
	// ExcludeBegin makes begin text belong to the parent mode.
	ExcludeBegin ModeFlags = 1 << iota

	// ExcludeEnd makes end text belong to the parent mode.
	ExcludeEnd

	// ReturnBegin makes the scanner rescan begin text inside the mode.
	ReturnBegin

	// ReturnEnd makes the scanner rescan end text in the parent mode.
	ReturnEnd

	// EndsWithParent makes the mode close when any enclosing mode end matches.
	EndsWithParent

	// Once marks a mode that matches begin text only and closes immediately.
	Once
)

// TitleRule classifies text following the begin match of a mode.
// Re is anchored at the end of begin text, capturing group 1 contains leading blanks
// that are left unclassified.
type TitleRule struct {
	Re       *regexp2.Regexp
	Source   string
	Category Category
}

// Mode is a compiled grammar rule.
type Mode struct {
	ID       ModeID
	Name     string
	Category Category

	// Begin, End, and Illegal contain resolved pattern sources, may be empty.
	Begin, End, Illegal string

	// EndRe matches own end (or empty string for Once modes) anchored at starting position.
	// It is nil for modes closed only by their parent or end of input.
	EndRe *regexp2.Regexp

	// Children are ordered by priority (descending), then by declaration order.
	Children []ModeID

	Keywords  KeywordTable
	WordRe    *regexp2.Regexp
	Title     *TitleRule
	Relevance int
	Priority  int
	Flags     ModeFlags

	// Terminator is the alternation of children begins, end alternatives, and illegal pattern,
	// each one is a separate capturing group.
	// It is nil if the mode has nothing to match.
	Terminator *regexp2.Regexp

	// EndGroup and IllegalGroup contain terminator group numbers or NoGroup.
	// Groups 1..len(Children) correspond to Children.
	EndGroup, IllegalGroup int
}

// Is tells whether all of flags are set.
func (m *Mode) Is(flags ModeFlags) bool {
	return m.Flags&flags == flags
}

// Grammar is a compiled language grammar.
type Grammar struct {
	Name    string
	Aliases []string
	Version string

	// CaseInsensitive affects both patterns and keyword tables.
	CaseInsensitive bool

	// Modes contains all reachable modes, Modes[RootMode] is the root one.
	Modes []Mode
}

// Root returns root mode.
func (g *Grammar) Root() *Mode {
	return &g.Modes[RootMode]
}

// Mode returns mode by handle.
func (g *Grammar) Mode(id ModeID) *Mode {
	return &g.Modes[id]
}

// Names returns grammar name followed by aliases.
func (g *Grammar) Names() []string {
	return append([]string{g.Name}, g.Aliases...)
}
