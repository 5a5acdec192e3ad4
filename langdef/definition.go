package langdef

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ava12/hilite/grammar"
)

// SelfRef is a mode reference denoting the referencing mode itself.
const SelfRef = "self"

// Definition is a grammar description, usually decoded from YAML.
type Definition struct {
	Name            string   `yaml:"name" json:"name"`
	Aliases         []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Version         string   `yaml:"version,omitempty" json:"version,omitempty"`
	CaseInsensitive bool     `yaml:"caseInsensitive,omitempty" json:"caseInsensitive,omitempty"`

	// Fragments contains named pattern sources available as {{name}}.
	Fragments map[string]string `yaml:"fragments,omitempty" json:"fragments,omitempty"`

	// Keywords contains named keyword tables available for KeywordDef.Use.
	Keywords map[string]*KeywordDef `yaml:"keywords,omitempty" json:"keywords,omitempty"`

	// Modes contains named modes available for references.
	Modes map[string]*ModeDef `yaml:"modes,omitempty" json:"modes,omitempty"`

	// Root describes the root mode, only keywords, contains, and illegal make sense here.
	Root ModeDef `yaml:"root" json:"root"`

	// SourceName is used in error messages.
	SourceName string `yaml:"-" json:"-"`
}

// KeywordDef describes a keyword table. YAML scalar is a space-separated list of keywords.
type KeywordDef struct {
	// Use lists named tables merged into this one.
	Use Words `yaml:"use,omitempty" json:"use,omitempty"`

	// Pattern splits plain text into words, default is \w+.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	Keyword Words `yaml:"keyword,omitempty" json:"keyword,omitempty"`
	Literal Words `yaml:"literal,omitempty" json:"literal,omitempty"`
	BuiltIn Words `yaml:"built_in,omitempty" json:"built_in,omitempty"`
}

type plainKeywordDef KeywordDef

func (kd *KeywordDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		kd.Keyword = strings.Fields(node.Value)
		return nil
	}
	return node.Decode((*plainKeywordDef)(kd))
}

// Words is a word list. YAML value is either a sequence or a space-separated string.
type Words []string

func (w *Words) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*w = strings.Fields(node.Value)
		return nil
	}
	var list []string
	e := node.Decode(&list)
	*w = list
	return e
}

// ThenDef describes a title rule: text matched right after begin text gets Class category.
// Blanks between begin text and the match are skipped.
type ThenDef struct {
	Match string           `yaml:"match" json:"match"`
	Class grammar.Category `yaml:"class,omitempty" json:"class,omitempty"`
}

// ModeDef describes a mode or references a named one.
// YAML scalar is a reference: either a mode name or "self".
type ModeDef struct {
	// Ref is a name of referenced mode, all other fields are ignored if it is set.
	Ref string `yaml:"ref,omitempty" json:"ref,omitempty"`

	// Name is used in diagnostics, named modes get their names automatically.
	Name  string           `yaml:"name,omitempty" json:"name,omitempty"`
	Class grammar.Category `yaml:"class,omitempty" json:"class,omitempty"`

	Begin         string `yaml:"begin,omitempty" json:"begin,omitempty"`
	BeginKeywords Words  `yaml:"beginKeywords,omitempty" json:"beginKeywords,omitempty"`
	End           string `yaml:"end,omitempty" json:"end,omitempty"`
	Illegal       string `yaml:"illegal,omitempty" json:"illegal,omitempty"`

	Then     *ThenDef    `yaml:"then,omitempty" json:"then,omitempty"`
	Keywords *KeywordDef `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Contains []*ModeDef  `yaml:"contains,omitempty" json:"contains,omitempty"`
	Variants []*ModeDef  `yaml:"variants,omitempty" json:"variants,omitempty"`

	// Relevance defaults to 1, or to 0 if BeginKeywords is used.
	Relevance *int `yaml:"relevance,omitempty" json:"relevance,omitempty"`

	// Priority orders sibling alternatives, higher goes first; equal priorities keep declaration order.
	Priority int `yaml:"priority,omitempty" json:"priority,omitempty"`

	ExcludeBegin   bool `yaml:"excludeBegin,omitempty" json:"excludeBegin,omitempty"`
	ExcludeEnd     bool `yaml:"excludeEnd,omitempty" json:"excludeEnd,omitempty"`
	ReturnBegin    bool `yaml:"returnBegin,omitempty" json:"returnBegin,omitempty"`
	ReturnEnd      bool `yaml:"returnEnd,omitempty" json:"returnEnd,omitempty"`
	EndsWithParent bool `yaml:"endsWithParent,omitempty" json:"endsWithParent,omitempty"`
	Once           bool `yaml:"once,omitempty" json:"once,omitempty"`

	line, col int
}

type plainModeDef ModeDef

func (md *ModeDef) UnmarshalYAML(node *yaml.Node) error {
	md.line, md.col = node.Line, node.Column
	if node.Kind == yaml.ScalarNode {
		md.Ref = node.Value
		return nil
	}
	line, col := md.line, md.col
	e := node.Decode((*plainModeDef)(md))
	md.line, md.col = line, col
	return e
}

// Ref creates a reference to a named mode.
func Ref(name string) *ModeDef {
	return &ModeDef{Ref: name}
}

// Rel returns pointer to relevance value, for use in Go literals.
func Rel(r int) *int {
	return &r
}

// withVariant returns a copy of base overridden by fields set in variant.
func (md *ModeDef) withVariant(variant *ModeDef) *ModeDef {
	res := *md
	res.Variants = nil
	res.line, res.col = variant.line, variant.col
	if variant.Name != "" {
		res.Name = variant.Name
	}
	if variant.Class != "" {
		res.Class = variant.Class
	}
	if variant.Begin != "" || len(variant.BeginKeywords) != 0 {
		res.Begin = variant.Begin
		res.BeginKeywords = variant.BeginKeywords
	}
	if variant.End != "" {
		res.End = variant.End
	}
	if variant.Illegal != "" {
		res.Illegal = variant.Illegal
	}
	if variant.Then != nil {
		res.Then = variant.Then
	}
	if variant.Keywords != nil {
		res.Keywords = variant.Keywords
	}
	if variant.Contains != nil {
		res.Contains = variant.Contains
	}
	if variant.Relevance != nil {
		res.Relevance = variant.Relevance
	}
	if variant.Priority != 0 {
		res.Priority = variant.Priority
	}
	res.ExcludeBegin = res.ExcludeBegin || variant.ExcludeBegin
	res.ExcludeEnd = res.ExcludeEnd || variant.ExcludeEnd
	res.ReturnBegin = res.ReturnBegin || variant.ReturnBegin
	res.ReturnEnd = res.ReturnEnd || variant.ReturnEnd
	res.EndsWithParent = res.EndsWithParent || variant.EndsWithParent
	res.Once = res.Once || variant.Once
	return &res
}
