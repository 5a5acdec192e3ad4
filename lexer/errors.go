package lexer

import (
	"github.com/dlclark/regexp2"

	"github.com/ava12/hilite"
)

// Error codes used by lexer:
const (
	// BudgetExceededError indicates that scan was stopped by step limit, scan timeout,
	// or pattern match timeout. The error is returned along with a complete truncated result.
	BudgetExceededError = hilite.ScanErrors + iota
)

func stepLimitError(steps, pos int) *hilite.Error {
	return hilite.FormatError(BudgetExceededError, "scan step limit (%d) exceeded at offset %d", steps, pos)
}

func scanTimeoutError(pos int) *hilite.Error {
	return hilite.FormatError(BudgetExceededError, "scan timeout exceeded at offset %d", pos)
}

// matchError reports a failed match of re at pos, regexp2 only fails on timeout.
func matchError(pos int, re *regexp2.Regexp) *hilite.Error {
	return hilite.FormatError(BudgetExceededError, "pattern match timeout (%s) exceeded at offset %d", re.MatchTimeout, pos)
}
