// Package pattern turns pattern sources declared by grammars into final regular expressions.
//
// Pattern sources use regexp2 (.NET-like) syntax with lookahead and lookbehind support.
// A source may reference named fragments as {{name}}, references are substituted textually
// (wrapped in a non-capturing group) before compilation, recursively.
// Every capturing group of an author pattern is rewritten to a non-capturing one,
// because capturing group indexes of combined patterns are reserved by the scanner.
package pattern

import (
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/ava12/hilite"
)

// Error codes used by pattern compiler:
const (
	// UnknownFragmentError indicates a {{name}} reference to undefined fragment.
	UnknownFragmentError = hilite.GrammarErrors + iota

	// FragmentCycleError indicates fragments referencing each other in a loop.
	FragmentCycleError

	// BackrefError indicates a backreference, these cannot survive group rewriting.
	BackrefError

	// UnbalancedPatternError indicates unbalanced groups or character classes.
	UnbalancedPatternError

	// BadPatternError indicates a pattern rejected by regexp engine.
	BadPatternError
)

var fragmentRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_-]*)\s*\}\}`)

// Compiler resolves and compiles pattern sources using a fixed set of fragments.
// Compiler is not safe for concurrent use, compiled regexps are.
type Compiler struct {
	fragments    map[string]string
	expanded     map[string]string
	expanding    map[string]bool
	options      regexp2.RegexOptions
	matchTimeout time.Duration
}

// NewCompiler creates new Compiler. Fragments themselves may reference other fragments.
// matchTimeout is set on every compiled regexp, zero means no timeout.
func NewCompiler(fragments map[string]string, caseless bool, matchTimeout time.Duration) *Compiler {
	options := regexp2.RegexOptions(regexp2.Multiline)
	if caseless {
		options |= regexp2.IgnoreCase
	}
	return &Compiler{
		fragments:    fragments,
		expanded:     make(map[string]string),
		expanding:    make(map[string]bool),
		options:      options,
		matchTimeout: matchTimeout,
	}
}

// Options returns regexp2 options used for all compiled patterns.
func (c *Compiler) Options() regexp2.RegexOptions {
	return c.options
}

// Expand substitutes all fragment references in src.
func (c *Compiler) Expand(src string) (string, error) {
	var e error
	res := fragmentRe.ReplaceAllStringFunc(src, func(ref string) string {
		if e != nil {
			return ""
		}
		name := fragmentRe.FindStringSubmatch(ref)[1]
		var text string
		text, e = c.fragment(name)
		return "(?:" + text + ")"
	})
	if e != nil {
		return "", e
	}
	return res, nil
}

func (c *Compiler) fragment(name string) (string, error) {
	if text, has := c.expanded[name]; has {
		return text, nil
	}

	raw, has := c.fragments[name]
	if !has {
		return "", unknownFragmentError(name)
	}
	if c.expanding[name] {
		return "", fragmentCycleError(name)
	}

	c.expanding[name] = true
	text, e := c.Expand(raw)
	delete(c.expanding, name)
	if e != nil {
		return "", e
	}

	c.expanded[name] = text
	return text, nil
}

// Resolve expands fragments, neutralizes capturing groups, and checks that the result compiles.
// Returns final pattern source.
func (c *Compiler) Resolve(src string) (string, error) {
	res, e := c.Expand(src)
	if e == nil {
		res, e = Neutralize(res)
	}
	if e == nil {
		_, e = c.compile(res)
	}
	if e != nil {
		return "", e
	}
	return res, nil
}

// Compile resolves src and returns compiled regexp.
func (c *Compiler) Compile(src string) (*regexp2.Regexp, error) {
	res, e := c.Resolve(src)
	if e != nil {
		return nil, e
	}
	return c.compile(res)
}

// CompileFinal compiles a source that is already resolved, e.g. combined of several resolved sources.
// Capturing groups are left intact.
func (c *Compiler) CompileFinal(src string) (*regexp2.Regexp, error) {
	if e := checkBalance(src); e != nil {
		return nil, e
	}
	return c.compile(src)
}

func (c *Compiler) compile(src string) (*regexp2.Regexp, error) {
	re, e := regexp2.Compile(src, c.options)
	if e != nil {
		return nil, badPatternError(src, e)
	}
	if c.matchTimeout > 0 {
		re.MatchTimeout = c.matchTimeout
	}
	return re, nil
}

// Neutralize rewrites every capturing group of src (plain or named) to a non-capturing group.
// Lookarounds, atomic groups, and inline options are kept.
// Returns an error if src contains backreferences or unbalanced groups.
func Neutralize(src string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(src) + 8)
	rs := []rune(src)
	depth := 0
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch r {
		case '\\':
			if i+1 >= len(rs) {
				return "", unbalancedError(src, "trailing backslash")
			}
			next := rs[i+1]
			if (next >= '1' && next <= '9') || (next == 'k' && i+2 < len(rs) && (rs[i+2] == '<' || rs[i+2] == '\'')) {
				return "", backrefError(src)
			}
			sb.WriteRune(r)
			sb.WriteRune(next)
			i++

		case '[':
			end := classEnd(rs, i)
			if end < 0 {
				return "", unbalancedError(src, "unterminated character class")
			}
			sb.WriteString(string(rs[i : end+1]))
			i = end

		case '(':
			depth++
			if i+1 < len(rs) && rs[i+1] == '?' {
				skip := namedGroupLen(rs, i+2)
				if skip > 0 {
					sb.WriteString("(?:")
					i += 1 + skip
				} else {
					sb.WriteRune(r)
				}
			} else {
				sb.WriteString("(?:")
			}

		case ')':
			depth--
			if depth < 0 {
				return "", unbalancedError(src, "unexpected )")
			}
			sb.WriteRune(r)

		default:
			sb.WriteRune(r)
		}
	}

	if depth != 0 {
		return "", unbalancedError(src, "missing )")
	}
	return sb.String(), nil
}

// classEnd returns index of ] closing character class started at start, or -1.
// ] right after [ or [^ is a literal.
func classEnd(rs []rune, start int) int {
	i := start + 1
	if i < len(rs) && rs[i] == '^' {
		i++
	}
	if i < len(rs) && rs[i] == ']' {
		i++
	}
	for ; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			i++
		case ']':
			return i
		}
	}
	return -1
}

// namedGroupLen returns the length of a named group header ("<name>", "'name'", or "P<name>")
// starting at i (right after "(?"), or 0 if there is no named group header.
func namedGroupLen(rs []rune, i int) int {
	if i >= len(rs) {
		return 0
	}

	start := i
	closing := '>'
	switch rs[i] {
	case 'P':
		if i+1 >= len(rs) || rs[i+1] != '<' {
			return 0
		}
		i += 2
	case '<':
		if i+1 < len(rs) && (rs[i+1] == '=' || rs[i+1] == '!') {
			return 0
		}
		i++
	case '\'':
		closing = '\''
		i++
	default:
		return 0
	}

	for ; i < len(rs); i++ {
		if rs[i] == closing {
			return i - start + 1
		}
		if !isNameRune(rs[i]) {
			return 0
		}
	}
	return 0
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func checkBalance(src string) error {
	rs := []rune(src)
	depth := 0
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			i++
		case '[':
			end := classEnd(rs, i)
			if end < 0 {
				return unbalancedError(src, "unterminated character class")
			}
			i = end
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return unbalancedError(src, "unexpected )")
			}
		}
	}
	if depth != 0 {
		return unbalancedError(src, "missing )")
	}
	return nil
}

// Alternation joins resolved sources into one capturing group each: (a)|(b)|...
// Group n (1-based) of a match tells that n-th source has matched.
func Alternation(sources []string) string {
	parts := make([]string, len(sources))
	for i, src := range sources {
		parts[i] = "(" + src + ")"
	}
	return strings.Join(parts, "|")
}

// Words returns a source matching any of words as a whole word.
func Words(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp2.Escape(w)
	}
	return `\b(?:` + strings.Join(quoted, "|") + `)(?!\.)\b`
}

// Anchored wraps resolved source so that it matches only at the starting position.
func Anchored(src string) string {
	return `\G(?:` + src + `)`
}
