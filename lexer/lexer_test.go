package lexer_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/hilite/grammar"
	"github.com/ava12/hilite/internal/test"
	"github.com/ava12/hilite/langdef"
	"github.com/ava12/hilite/lexer"
)

func parse(t *testing.T, src string) *grammar.Grammar {
	t.Helper()
	g, e := langdef.ParseString(t.Name(), src)
	require.NoError(t, e)
	return g
}

func scan(t *testing.T, g *grammar.Grammar, text string) *lexer.Result {
	t.Helper()
	res, e := lexer.Scan(g, text, nil)
	require.NoError(t, e)
	require.NotNil(t, res)
	test.Coverage(t, text, res.Tokens)
	return res
}

type flat struct {
	cat  grammar.Category
	text string
}

func flatten(text string, tokens []*lexer.Token) []flat {
	runes := []rune(text)
	var res []flat
	lexer.Walk(tokens, func(tok *lexer.Token, depth int) bool {
		res = append(res, flat{tok.Category, strings.Repeat(">", depth) + tok.Text(runes)})
		return true
	})
	return res
}

const stringGrammar = `
name: strings
modes:
  str:
    class: string
    begin: '"'
    end: '"'
    illegal: '\n'
    contains:
      - begin: '\\.'
      - class: subst
        begin: '\$\{'
        end: '\}'
        contains: [str]
  triple:
    class: string
    begin: '"""'
    end: '"""'
    priority: 1
    relevance: 10
root:
  keywords:
    keyword: if then
  illegal: '#'
  contains: [str, triple]
`

func TestEmptyText(t *testing.T) {
	g := parse(t, stringGrammar)
	res := scan(t, g, "")
	assert.Empty(t, res.Tokens)
	assert.Zero(t, res.Relevance)
	assert.False(t, res.Truncated)
}

func TestPlainTextKeywords(t *testing.T) {
	g := parse(t, stringGrammar)
	text := "if x then"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Keyword, "if"},
		{grammar.Unclassified, " x "},
		{grammar.Keyword, "then"},
	}, flatten(text, res.Tokens))
}

func TestNestedModes(t *testing.T) {
	g := parse(t, stringGrammar)
	text := `if "a\"${"b"}" x`
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Keyword, "if"},
		{grammar.Unclassified, " "},
		{grammar.String, `"a\"${"b"}"`},
		{grammar.Subst, `>${"b"}`},
		{grammar.String, `>>"b"`},
		{grammar.Unclassified, " x"},
	}, flatten(text, res.Tokens))
	assert.Equal(t, 4, res.Relevance)
	assert.Empty(t, res.Unterminated)
	assert.Empty(t, res.Illegal)
}

func TestPriority(t *testing.T) {
	g := parse(t, stringGrammar)
	text := `"""a"b`
	res := scan(t, g, text)
	assert.Equal(t, []flat{{grammar.String, text}}, flatten(text, res.Tokens))
	assert.Equal(t, []string{"triple"}, res.Unterminated)
	assert.Equal(t, 10, res.Relevance)
}

func TestIllegal(t *testing.T) {
	g := parse(t, stringGrammar)
	text := "\"a\\qif\ncd # e"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.String, `"a\q`},
		{grammar.Keyword, "if"},
		{grammar.Illegal, "\n"},
		{grammar.Unclassified, "cd "},
		{grammar.Illegal, "#"},
		{grammar.Unclassified, " e"},
	}, flatten(text, res.Tokens))
	assert.Equal(t, []lexer.IllegalMatch{
		{Mode: "str", Start: 6, End: 7},
		{Mode: "strings", Start: 10, End: 11},
	}, res.Illegal)
}

func TestIllegalKeepsNestedModes(t *testing.T) {
	g := parse(t, stringGrammar)
	text := "\"a${x}b\n"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.String, `"a${x}`},
		{grammar.Subst, ">${x}"},
		{grammar.Unclassified, "b"},
		{grammar.Illegal, "\n"},
	}, flatten(text, res.Tokens))
	assert.Equal(t, []lexer.IllegalMatch{{Mode: "str", Start: 7, End: 8}}, res.Illegal)

	text = "\"\n"
	res = scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.String, `"`},
		{grammar.Illegal, "\n"},
	}, flatten(text, res.Tokens))
}

func TestUnterminated(t *testing.T) {
	g := parse(t, stringGrammar)
	text := `x "a${"b`
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Unclassified, "x "},
		{grammar.String, `"a${"b`},
		{grammar.Subst, `>${"b`},
		{grammar.String, `>>"b`},
	}, flatten(text, res.Tokens))
	assert.Equal(t, []string{"str", "str/2", "str"}, res.Unterminated)
}

const flagsGrammar = `
name: flags
modes:
  type:
    class: type
    begin: '[A-Z]\w*'
root:
  contains:
    - name: params
      class: params
      begin: '\('
      end: '\)'
      excludeBegin: true
      excludeEnd: true
      contains:
        - name: colon
          begin: ': *'
          excludeBegin: true
          endsWithParent: true
          contains: [type]
    - name: list
      class: params
      begin: '\['
      end: '\]'
      contains:
        - name: item
          class: string
          begin: '\w'
          end: '[,\]]'
          returnEnd: true
    - name: def
      class: function
      begin: '\bdef\b'
      end: '$'
      then: {match: '[a-z]+'}
      keywords: def
      relevance: 5
    - name: annot
      class: meta
      begin: '@\w+'
      once: true
      contains:
        - name: args
          begin: '\('
          end: '\)'
          contains: [type]
    - name: label
      begin: '\w+:'
      returnBegin: true
      end: ':'
      contains:
        - class: title
          begin: '\w+'
`

func TestExcludeBeginEnd(t *testing.T) {
	g := parse(t, flagsGrammar)
	text := "f(x: Int)"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Unclassified, "f("},
		{grammar.Params, "x: Int"},
		{grammar.Type, ">Int"},
		{grammar.Unclassified, ")"},
	}, flatten(text, res.Tokens))
}

func TestReturnEnd(t *testing.T) {
	g := parse(t, flagsGrammar)
	text := "[a,b]"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Params, "[a,b]"},
		{grammar.String, ">a"},
		{grammar.String, ">b"},
	}, flatten(text, res.Tokens))
}

func TestReturnBegin(t *testing.T) {
	g := parse(t, flagsGrammar)
	text := "loop: x"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Title, "loop"},
		{grammar.Unclassified, ": x"},
	}, flatten(text, res.Tokens))
}

func TestTitleRule(t *testing.T) {
	g := parse(t, flagsGrammar)
	text := "def  run\nx"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Function, "def  run"},
		{grammar.Keyword, ">def"},
		{grammar.Title, ">run"},
		{grammar.Unclassified, "\nx"},
	}, flatten(text, res.Tokens))
	assert.Equal(t, 5, res.Relevance)
}

func TestOnceModeWithChildren(t *testing.T) {
	g := parse(t, flagsGrammar)
	text := "@ann(Foo) @bare x"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Meta, "@ann(Foo)"},
		{grammar.Type, ">Foo"},
		{grammar.Unclassified, " "},
		{grammar.Meta, "@bare"},
		{grammar.Unclassified, " x"},
	}, flatten(text, res.Tokens))
}

func TestEndsWithParent(t *testing.T) {
	g := parse(t, flagsGrammar)
	text := "(a: B"
	res := scan(t, g, text)
	assert.Equal(t, []flat{
		{grammar.Unclassified, "("},
		{grammar.Params, "a: B"},
		{grammar.Type, ">B"},
	}, flatten(text, res.Tokens))
	assert.Equal(t, []string{"colon", "params"}, res.Unterminated)
}

func TestStepLimit(t *testing.T) {
	g := parse(t, `
name: numbers
root:
  contains:
    - class: number
      begin: '\d'
`)
	text := "1 2 3 4"
	res, e := lexer.Scan(g, text, &lexer.Options{MaxSteps: 3})
	test.ErrorCode(t, lexer.BudgetExceededError, e)
	require.NotNil(t, res)
	assert.True(t, res.Truncated)
	test.Coverage(t, text, res.Tokens)
	assert.Equal(t, []flat{
		{grammar.Number, "1"},
		{grammar.Unclassified, " 2 3 4"},
	}, flatten(text, res.Tokens))

	res, e = lexer.Scan(g, text, &lexer.Options{MaxSteps: -1})
	require.NoError(t, e)
	assert.Len(t, lexer.Find(res.Tokens, grammar.Number), 4)
}

func TestScanTimeout(t *testing.T) {
	g := parse(t, `
name: words
root:
  contains:
    - class: keyword
      begin: '\w+'
`)
	text := strings.Repeat("word ", 2000)
	res, e := lexer.Scan(g, text, &lexer.Options{Timeout: time.Nanosecond})
	test.ErrorCode(t, lexer.BudgetExceededError, e)
	assert.True(t, res.Truncated)
	test.Coverage(t, text, res.Tokens)
}

func TestMatchTimeout(t *testing.T) {
	g, e := langdef.ParseBytes("slow", []byte(`
name: slow
root:
  contains:
    - class: string
      begin: '(x+x+)+y'
`), &langdef.Options{MatchTimeout: time.Millisecond})
	require.NoError(t, e)

	text := "ok " + strings.Repeat("x", 40)
	res, e := lexer.Scan(g, text, nil)
	test.ErrorCode(t, lexer.BudgetExceededError, e)
	assert.Contains(t, e.Error(), "timeout (1ms)")
	assert.NotContains(t, e.Error(), "xxxx")
	assert.True(t, res.Truncated)
	test.Coverage(t, text, res.Tokens)
	assert.Equal(t, []flat{{grammar.Unclassified, text}}, flatten(text, res.Tokens))
}

func TestStallGuard(t *testing.T) {
	g := parse(t, `
name: stall
root:
  contains:
    - class: meta
      begin: '(?=a)'
`)
	text := "aab"
	res, e := lexer.Scan(g, text, nil)
	require.NoError(t, e)
	assert.False(t, res.Truncated)
	test.Coverage(t, text, res.Tokens)
}

func TestDeterminismAndConcurrency(t *testing.T) {
	g := parse(t, stringGrammar)
	text := strings.Repeat(`if "a${"b"}" then """c""" # `, 50)
	expected := scan(t, g, text)

	var wg sync.WaitGroup
	results := make([]*lexer.Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = lexer.Scan(g, text, nil)
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, expected, res)
	}
}

func TestClassify(t *testing.T) {
	g := parse(t, `
name: kw
keywords:
  always:
    pattern: '\w+|=>'
    keyword: 'def =>'
    literal: 'true'
    built_in: 'print'
root:
  keywords:
    use: always
`)
	text := "def f => print(true) x"
	tokens, e := lexer.Classify(g.Root(), text)
	require.NoError(t, e)
	assert.Equal(t, []grammar.Category{grammar.Keyword, grammar.Keyword, grammar.BuiltIn, grammar.Literal}, test.Categories(tokens))
	assert.Equal(t, []string{"def", "=>", "print", "true"}, test.Texts(text, tokens))

	res := scan(t, g, text)
	assert.Equal(t, []string{"def", "=>"}, test.Texts(text, lexer.Find(res.Tokens, grammar.Keyword)))
}

func TestRelevance(t *testing.T) {
	g := parse(t, flagsGrammar)
	var r lexer.Relevance
	r.Enter(g.Mode(g.Root().Children[0]))
	r.Enter(g.Mode(g.Root().Children[2]))
	assert.Equal(t, 6, r.Total())
	assert.Equal(t, 2, r.Entered())
}
