package grammar

import (
	"strings"
)

// Category is a classification label of a token.
type Category string

// Fixed category vocabulary:
const (
	Unclassified Category = ""

	Keyword Category = "keyword"
	Literal Category = "literal"
	BuiltIn Category = "built_in"
	Type    Category = "type"
	String  Category = "string"
	Number  Category = "number"
	Comment Category = "comment"

	DocComment Category = "doc_comment"
	DocTag     Category = "doctag"
	Bold       Category = "bold"
	Emphasis   Category = "emphasis"
	Code       Category = "code"
	Bullet     Category = "bullet"
	Link       Category = "link"

	Meta     Category = "meta"
	Params   Category = "params"
	Title    Category = "title"
	Function Category = "function"
	Class    Category = "class"
	TypeDef  Category = "typedef"
	Subst    Category = "subst"
	Illegal  Category = "illegal"
)

var categories = map[Category]bool{
	Keyword: true, Literal: true, BuiltIn: true, Type: true, String: true, Number: true, Comment: true,
	DocComment: true, DocTag: true, Bold: true, Emphasis: true, Code: true, Bullet: true, Link: true,
	Meta: true, Params: true, Title: true, Function: true, Class: true, TypeDef: true, Subst: true, Illegal: true,
}

// Valid tells whether c belongs to the vocabulary. Unclassified is valid.
func (c Category) Valid() bool {
	return c == Unclassified || categories[c]
}

// KeywordClasses lists categories a keyword table may assign, in lookup order.
var KeywordClasses = []Category{Keyword, Literal, BuiltIn}

// KeywordTable maps identifier text to one of KeywordClasses.
// The table is disjoint: every word maps to exactly one category.
type KeywordTable struct {
	words    map[string]Category
	caseless bool
}

// NewKeywordTable creates a table from per-class word lists.
// A word listed for several classes gets the first one in KeywordClasses order.
func NewKeywordTable(lists map[Category][]string, caseless bool) KeywordTable {
	t := KeywordTable{caseless: caseless}
	for _, class := range KeywordClasses {
		for _, w := range lists[class] {
			if caseless {
				w = strings.ToLower(w)
			}
			if t.words == nil {
				t.words = make(map[string]Category)
			}
			if _, has := t.words[w]; !has {
				t.words[w] = class
			}
		}
	}
	return t
}

// Lookup returns category of word or Unclassified.
func (t KeywordTable) Lookup(word string) Category {
	if len(t.words) == 0 {
		return Unclassified
	}
	if t.caseless {
		word = strings.ToLower(word)
	}
	return t.words[word]
}

// Len returns number of words in the table.
func (t KeywordTable) Len() int {
	return len(t.words)
}
