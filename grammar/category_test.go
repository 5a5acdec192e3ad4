package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordTableIsDisjoint(t *testing.T) {
	table := NewKeywordTable(map[Category][]string{
		BuiltIn: {"assert", "true"},
		Literal: {"true", "null"},
		Keyword: {"def", "true"},
	}, false)

	assert.Equal(t, 4, table.Len())
	assert.Equal(t, Keyword, table.Lookup("true"))
	assert.Equal(t, Keyword, table.Lookup("def"))
	assert.Equal(t, Literal, table.Lookup("null"))
	assert.Equal(t, BuiltIn, table.Lookup("assert"))
	assert.Equal(t, Unclassified, table.Lookup("Def"))
	assert.Equal(t, Unclassified, table.Lookup("foo"))
}

func TestCaselessKeywordTable(t *testing.T) {
	table := NewKeywordTable(map[Category][]string{Keyword: {"SELECT"}}, true)
	assert.Equal(t, Keyword, table.Lookup("select"))
	assert.Equal(t, Keyword, table.Lookup("Select"))
}

func TestEmptyKeywordTable(t *testing.T) {
	var table KeywordTable
	assert.Equal(t, Unclassified, table.Lookup("def"))
	assert.Zero(t, table.Len())
}

func TestCategoryVocabulary(t *testing.T) {
	for _, c := range []Category{Unclassified, Keyword, DocTag, Subst, Illegal, Params} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Category("cparams").Valid())
	assert.False(t, Category("Keyword").Valid())
}
