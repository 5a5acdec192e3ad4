package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ava12/hilite"
	"github.com/ava12/hilite/grammar"
	"github.com/ava12/hilite/internal/test"
	"github.com/ava12/hilite/langdef"
	"github.com/ava12/hilite/lexer"
)

const wordsYaml = `
name: Words
aliases: [wrd]
version: "1"
root:
  contains:
    - class: keyword
      begin: '\b(?:alpha|beta)\b'
      relevance: 2
`

const numbersYaml = `
name: Numbers
version: "1"
root:
  contains:
    - class: number
      begin: '\d+'
      relevance: 3
`

func newRegistry(t *testing.T) (*Registry, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	r := New(&Options{Logger: zap.New(core)})
	require.NoError(t, r.RegisterYAML("words.yaml", []byte(wordsYaml)))
	require.NoError(t, r.RegisterYAML("numbers.yaml", []byte(numbersYaml)))
	return r, logs
}

func TestLookup(t *testing.T) {
	r, logs := newRegistry(t)

	g, e := r.Lookup("words")
	require.NoError(t, e)
	assert.Equal(t, "Words", g.Name)

	alias, e := r.Lookup(" WRD ")
	require.NoError(t, e)
	assert.Same(t, g, alias)
	assert.Equal(t, 1, logs.FilterMessage("grammar compiled").Len())

	_, e = r.Lookup("nope")
	test.ErrorCode(t, UnknownLanguageError, e)
	assert.False(t, r.Has("nope"))
	assert.True(t, r.Has("Numbers"))
}

func TestNamesAndInfos(t *testing.T) {
	r, _ := newRegistry(t)
	assert.Equal(t, []string{"Numbers", "Words"}, r.Names())
	assert.Equal(t, []Info{
		{Name: "Numbers", Version: "1"},
		{Name: "Words", Aliases: []string{"wrd"}, Version: "1"},
	}, r.Infos())
}

func TestConflict(t *testing.T) {
	r, logs := newRegistry(t)

	require.NoError(t, r.RegisterYAML("again.yaml", []byte(wordsYaml)))

	e := r.RegisterYAML("words2.yaml", []byte(`
name: Other
aliases: [wrd]
version: "2"
root: {}
`))
	test.ErrorCode(t, ConflictError, e)
	assert.False(t, r.Has("Other"))
	assert.Equal(t, 1, logs.FilterMessage("conflicting grammar rejected").Len())

	def, e := langdef.Decode("words3.yaml", []byte(wordsYaml))
	require.NoError(t, e)
	def.Version = "2"
	test.ErrorCode(t, ConflictError, r.Register(def))
	assert.Equal(t, []string{"Numbers", "Words"}, r.Names())

	entries := logs.FilterMessage("conflicting grammar rejected").All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[1].ContextMap()["versionOrder"])

	test.ErrorCode(t, langdef.NoNameError, r.Register(&langdef.Definition{}))
}

func TestBadVersion(t *testing.T) {
	r := New(nil)
	e := r.RegisterYAML("bad.yaml", []byte("name: Bad\nversion: one\nroot: {}\n"))
	test.ErrorCode(t, BadVersionError, e)
	assert.False(t, r.Has("bad"))

	require.NoError(t, r.RegisterYAML("good.yaml", []byte("name: Good\nversion: 2.1.0-beta\nroot: {}\n")))
}

func TestScanCache(t *testing.T) {
	r := New(&Options{CacheSize: 2})
	require.NoError(t, r.RegisterYAML("words.yaml", []byte(wordsYaml)))
	scans := testutil.ToFloat64(metricScans.WithLabelValues("Words"))
	hits := testutil.ToFloat64(metricCacheHits.WithLabelValues("Words"))
	chars := testutil.ToFloat64(metricScannedChars.WithLabelValues("Words"))

	res1, e := r.Scan("words", "alpha", nil)
	require.NoError(t, e)
	res2, e := r.Scan("wrd", "alpha", nil)
	require.NoError(t, e)
	assert.Same(t, res1, res2)

	res3, e := r.Scan("words", "alpha", &lexer.Options{MaxStall: 5})
	require.NoError(t, e)
	assert.NotSame(t, res1, res3)
	assert.Equal(t, res1, res3)

	for _, opts := range []*lexer.Options{{}, {MaxStall: -1, MaxSteps: 0, Timeout: -time.Second}} {
		res, e := r.Scan("words", "alpha", opts)
		require.NoError(t, e)
		assert.Same(t, res1, res)
	}

	scores, e := r.Rank(context.Background(), "alpha", []string{"words"}, nil)
	require.NoError(t, e)
	assert.Equal(t, []Score{{Name: "Words", Relevance: 2}}, scores)

	assert.Equal(t, scans+2, testutil.ToFloat64(metricScans.WithLabelValues("Words")))
	assert.Equal(t, hits+4, testutil.ToFloat64(metricCacheHits.WithLabelValues("Words")))
	assert.Equal(t, chars+10, testutil.ToFloat64(metricScannedChars.WithLabelValues("Words")))
}

func TestTruncatedScansAreNotCached(t *testing.T) {
	r := New(&Options{CacheSize: 2})
	require.NoError(t, r.RegisterYAML("numbers.yaml", []byte(numbersYaml)))
	truncated := testutil.ToFloat64(metricTruncatedScans.WithLabelValues("Numbers"))

	opts := &lexer.Options{MaxSteps: 1}
	res1, e := r.Scan("numbers", "1 2", opts)
	test.ErrorCode(t, lexer.BudgetExceededError, e)
	res2, e := r.Scan("numbers", "1 2", opts)
	test.ErrorCode(t, lexer.BudgetExceededError, e)
	assert.NotSame(t, res1, res2)
	assert.Equal(t, truncated+2, testutil.ToFloat64(metricTruncatedScans.WithLabelValues("Numbers")))
}

func TestBrokenGrammar(t *testing.T) {
	r, logs := newRegistry(t)
	require.NoError(t, r.RegisterYAML("broken.yaml", []byte(`
name: Broken
root:
  contains:
    - begin: '{{missing}}'
`)))

	_, e := r.Lookup("broken")
	assert.Error(t, e)
	_, e2 := r.Lookup("broken")
	assert.Equal(t, e, e2)

	entries := logs.FilterMessage("grammar compilation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestRegisterFile(t *testing.T) {
	r := New(nil)
	e := r.RegisterFile(t.TempDir() + "/missing.yaml")
	assert.Error(t, e)
	assert.Empty(t, r.Names())
}

func TestConcurrentLookup(t *testing.T) {
	r, logs := newRegistry(t)

	var wg sync.WaitGroup
	grammars := make([]*grammar.Grammar, 16)
	for i := range grammars {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			grammars[i], _ = r.Lookup("numbers")
		}(i)
	}
	wg.Wait()

	require.NotNil(t, grammars[0])
	for _, g := range grammars {
		assert.Same(t, grammars[0], g)
	}
	assert.Equal(t, 1, logs.FilterMessage("grammar compiled").Len())
}

func TestScan(t *testing.T) {
	r, _ := newRegistry(t)
	text := "alpha 12 beta"
	res, e := r.Scan("wrd", text, nil)
	require.NoError(t, e)
	test.Coverage(t, text, res.Tokens)
	assert.Equal(t, []string{"alpha", "beta"}, test.Texts(text, lexer.Find(res.Tokens, grammar.Keyword)))
	assert.Equal(t, 4, res.Relevance)

	_, e = r.Scan("nope", text, nil)
	test.ErrorCode(t, UnknownLanguageError, e)
}

func TestRank(t *testing.T) {
	r, _ := newRegistry(t)

	scores, e := r.Rank(context.Background(), "alpha beta 1", nil, nil)
	require.NoError(t, e)
	assert.Equal(t, []Score{
		{Name: "Words", Relevance: 4},
		{Name: "Numbers", Relevance: 3},
	}, scores)

	scores, e = r.Rank(context.Background(), "1 2 alpha", []string{"wrd", "numbers"}, nil)
	require.NoError(t, e)
	assert.Equal(t, []Score{
		{Name: "Numbers", Relevance: 6},
		{Name: "Words", Relevance: 2},
	}, scores)

	scores, e = r.Rank(context.Background(), "", nil, nil)
	require.NoError(t, e)
	assert.Equal(t, []Score{{Name: "Numbers"}, {Name: "Words"}}, scores)
}

func TestRankTruncated(t *testing.T) {
	r, _ := newRegistry(t)
	scores, e := r.Rank(context.Background(), "1 2 3 4 5", []string{"numbers"}, &lexer.Options{MaxSteps: 3})
	require.NoError(t, e)
	assert.Equal(t, []Score{{Name: "Numbers", Relevance: 6, Truncated: true}}, scores)
}

func TestRankErrors(t *testing.T) {
	r, _ := newRegistry(t)

	_, e := r.Rank(context.Background(), "x", []string{"words", "nope"}, nil)
	test.ErrorCode(t, UnknownLanguageError, e)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, e = r.Rank(ctx, "x", nil, nil)
	assert.ErrorIs(t, e, context.Canceled)
	assert.Zero(t, hilite.Code(e))
}
