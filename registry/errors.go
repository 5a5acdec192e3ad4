package registry

import (
	"github.com/ava12/hilite"
	"github.com/ava12/hilite/langdef"
)

func unknownLanguageError(name string) *hilite.Error {
	return hilite.FormatError(UnknownLanguageError, "unknown language %q", name)
}

func conflictError(name string, registered, def *langdef.Definition) *hilite.Error {
	return hilite.FormatError(ConflictError, "grammar %q (version %q) conflicts with %q (version %q) registered as %q",
		def.Name, def.Version, registered.Name, registered.Version, name)
}

func badVersionError(def *langdef.Definition, e error) *hilite.Error {
	return hilite.FormatError(BadVersionError, "grammar %q: bad version %q: %s", def.Name, def.Version, e.Error())
}

func noNameError(def *langdef.Definition) *hilite.Error {
	return hilite.NewError(langdef.NoNameError, "grammar name is not defined", def.SourceName, 0, 0)
}
