package pattern

import (
	"github.com/ava12/hilite"
)

func unknownFragmentError(name string) *hilite.Error {
	return hilite.FormatError(UnknownFragmentError, "undefined pattern fragment %q", name)
}

func fragmentCycleError(name string) *hilite.Error {
	return hilite.FormatError(FragmentCycleError, "pattern fragment %q references itself", name)
}

func backrefError(src string) *hilite.Error {
	return hilite.FormatError(BackrefError, "backreferences are not supported: /%s/", src)
}

func unbalancedError(src, reason string) *hilite.Error {
	return hilite.FormatError(UnbalancedPatternError, "unbalanced pattern /%s/: %s", src, reason)
}

func badPatternError(src string, e error) *hilite.Error {
	return hilite.FormatError(BadPatternError, "incorrect pattern /%s/ (%s)", src, e.Error())
}
