package langdef

import (
	"strings"

	"github.com/ava12/hilite"
	"github.com/ava12/hilite/grammar"
	"github.com/ava12/hilite/source"
)

// Error codes used by langdef, pattern errors (pattern.UnknownFragmentError etc.) are passed through:
const (
	// DecodeError indicates malformed YAML description.
	DecodeError = hilite.GrammarErrors + 10 + iota

	// NoNameError indicates a grammar without name.
	NoNameError

	// UnknownModeError indicates a reference to undefined mode.
	UnknownModeError

	// UnclosableModeError indicates a mode that has content but no way to close.
	UnclosableModeError

	// EmptyBeginError indicates a non-root mode without begin pattern.
	EmptyBeginError

	// UnknownCategoryError indicates a category outside of the vocabulary.
	UnknownCategoryError

	// UnknownKeywordsError indicates a reference to undefined keyword table.
	UnknownKeywordsError

	// KeywordsCycleError indicates keyword tables using each other in a loop.
	KeywordsCycleError

	// BadRefError indicates a reference that has other fields set or refers to itself by name.
	BadRefError
)

func (c *compiler) pos(md *ModeDef) hilite.SourcePos {
	return source.NewPos(c.def.SourceName, md.line, md.col)
}

func (c *compiler) wrap(md *ModeDef, e error) error {
	he, ok := e.(*hilite.Error)
	if !ok || md == nil || md.line == 0 || he.Line != 0 {
		return e
	}
	return hilite.NewError(he.Code, he.Message, c.def.SourceName, md.line, md.col)
}

func noNameError(sourceName string) *hilite.Error {
	return hilite.NewError(NoNameError, "grammar name is not defined", sourceName, 0, 0)
}

func (c *compiler) unknownModeError(md *ModeDef) *hilite.Error {
	return hilite.FormatErrorPos(c.pos(md), UnknownModeError, "undefined mode %q", md.Ref)
}

func (c *compiler) badRefError(md *ModeDef) *hilite.Error {
	return hilite.FormatErrorPos(c.pos(md), BadRefError, "bad reference to mode %q", md.Ref)
}

func (c *compiler) unclosableModeError(name string, md *ModeDef) *hilite.Error {
	return hilite.FormatErrorPos(c.pos(md), UnclosableModeError,
		"mode %q has contained rules but no end pattern, set end, endsWithParent, or once", name)
}

func (c *compiler) emptyBeginError(name string, md *ModeDef) *hilite.Error {
	return hilite.FormatErrorPos(c.pos(md), EmptyBeginError, "mode %q has no begin pattern", name)
}

func (c *compiler) unknownCategoryError(name string, md *ModeDef, cat grammar.Category) *hilite.Error {
	return hilite.FormatErrorPos(c.pos(md), UnknownCategoryError, "mode %q: unknown category %q", name, string(cat))
}

func unknownKeywordsError(name string) *hilite.Error {
	return hilite.FormatError(UnknownKeywordsError, "undefined keyword table %q", name)
}

func keywordsCycleError(names []string) *hilite.Error {
	return hilite.FormatError(KeywordsCycleError, "keyword tables use each other: "+strings.Join(names, ", "))
}

func decodeError(sourceName string, e error) *hilite.Error {
	return hilite.NewError(DecodeError, "cannot decode grammar description: "+e.Error(), sourceName, 0, 0)
}
