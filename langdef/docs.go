/*
Package langdef converts grammar description to grammar.Grammar structure.

Grammar is described as a tree of modes, usually in YAML. Description does not contain Go code.
Top-level keys are:

	name: Scala3            # required, registry key
	aliases: [scala]        # alternative names
	version: "2"            # descriptions are versioned data, registry refuses divergent duplicates
	caseInsensitive: false  # affects patterns and keyword tables
	fragments: {...}        # named pattern sources
	keywords: {...}         # named keyword tables
	modes: {...}            # named modes
	root: {...}             # root mode: keywords, contains, illegal

Patterns use regexp2 syntax (similar to .NET and ECMAScript: lookahead and lookbehind are available),
^ and $ match at line boundaries, . does not match line feed.
A pattern may reference a fragment as {{name}}, the reference is replaced with fragment source
wrapped in a non-capturing group. Fragments may reference other fragments.
Capturing groups are allowed but are treated as non-capturing ones; backreferences are not allowed.

Mode keys are:

	class           category of the token emitted for the mode, no token is emitted if omitted
	begin           pattern opening the mode (required for all modes except the root)
	beginKeywords   words opening the mode, shorthand for begin and keywords; relevance defaults to 0
	end             pattern closing the mode
	illegal         pattern closing the mode as an error
	then            title rule {match: pattern, class: category}, applied right after begin text
	keywords        keyword table
	contains        list of child modes: either a mode name, "self", or an inline mode
	variants        list of partial modes, each one overrides fields of this mode
	relevance       weight added to scan relevance when the mode is entered, default is 1
	priority        higher priority children are tried first, default is 0
	excludeBegin    begin text belongs to the parent
	excludeEnd      end text belongs to the parent
	returnBegin     begin text is scanned again inside the mode
	returnEnd       end text is scanned again by the parent
	endsWithParent  mode closes when the parent end matches
	once            mode matches its begin text only

A mode without end, endsWithParent, and once flag matches its begin text only, such mode must not
have contained modes or illegal pattern.

Keyword table is either a space-separated string of keywords or a map:

	use: [always]           # named tables merged first
	pattern: '\w+|=>'       # pattern splitting plain text into words
	keyword: 'def val'
	literal: 'true false'
	built_in: 'assert'

A word listed under several classes gets the first one of keyword, literal, built_in.

Alternatives order within a mode: children (by priority, then in declaration order), end patterns,
illegal pattern. Scanner takes the leftmost match; alternatives matching at the same position
are resolved by this order.
*/
package langdef
