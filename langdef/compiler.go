package langdef

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/ava12/hilite/grammar"
	"github.com/ava12/hilite/pattern"
)

// DefaultMatchTimeout limits the time a single pattern match may take.
const DefaultMatchTimeout = 250 * time.Millisecond

// DefaultWordPattern splits plain text into words when a keyword table defines no pattern.
const DefaultWordPattern = `\w+`

// Options affect grammar compilation.
type Options struct {
	// MatchTimeout is set on every compiled pattern; zero means DefaultMatchTimeout, negative means no limit.
	MatchTimeout time.Duration

	// Logger receives warnings (e.g. unused modes) and debug messages, nil means no logging.
	Logger *zap.Logger
}

type instanceKey struct {
	decl *ModeDef
	ends string
}

type compiler struct {
	def       *Definition
	pc        *pattern.Compiler
	log       *zap.Logger
	modes     []*grammar.Mode
	ends      [][]string
	instances map[instanceKey]grammar.ModeID
	variants  map[*ModeDef][]*ModeDef
	tables    map[string]*KeywordDef
	wordRes   map[string]*regexp2.Regexp
	used      map[string]bool
}

// Compile converts grammar description to compiled grammar.
// opts may be nil. Returns nil and hilite.Error on error.
func Compile(def *Definition, opts *Options) (*grammar.Grammar, error) {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.MatchTimeout
	if timeout == 0 {
		timeout = DefaultMatchTimeout
	} else if timeout < 0 {
		timeout = 0
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if def.Name == "" {
		return nil, noNameError(def.SourceName)
	}

	started := time.Now()
	c := &compiler{
		def:       def,
		pc:        pattern.NewCompiler(def.Fragments, def.CaseInsensitive, timeout),
		log:       log.With(zap.String("grammar", def.Name)),
		instances: make(map[instanceKey]grammar.ModeID),
		variants:  make(map[*ModeDef][]*ModeDef),
		tables:    def.Keywords,
		wordRes:   make(map[string]*regexp2.Regexp),
		used:      make(map[string]bool),
	}

	e := c.compileRoot()
	if e == nil {
		e = c.buildTerminators()
	}
	if e != nil {
		return nil, e
	}

	c.reportUnused()
	g := &grammar.Grammar{
		Name:            def.Name,
		Aliases:         append([]string(nil), def.Aliases...),
		Version:         def.Version,
		CaseInsensitive: def.CaseInsensitive,
		Modes:           make([]grammar.Mode, len(c.modes)),
	}
	for i, m := range c.modes {
		g.Modes[i] = *m
	}
	c.log.Debug("grammar compiled", zap.Int("modes", len(g.Modes)), zap.Duration("elapsed", time.Since(started)))
	return g, nil
}

func (c *compiler) compileRoot() error {
	root := &c.def.Root
	m := &grammar.Mode{ID: grammar.RootMode, Name: c.def.Name}
	c.modes = append(c.modes, m)
	c.ends = append(c.ends, nil)

	e := c.fillKeywords(m, root)
	if e == nil && root.Illegal != "" {
		m.Illegal, e = c.pc.Resolve(root.Illegal)
	}
	if e == nil {
		e = c.fillChildren(m, root)
	}
	return c.wrap(root, e)
}

// instantiate returns handles of compiled modes for declaration md (one per variant) under parent mode.
func (c *compiler) instantiate(md *ModeDef, name string, parent grammar.ModeID) ([]grammar.ModeID, error) {
	concretes := c.expandVariants(md)
	ids := make([]grammar.ModeID, 0, len(concretes))
	for i, cd := range concretes {
		n := name
		if len(concretes) > 1 {
			n = fmt.Sprintf("%s#%d", name, i+1)
		}
		id, e := c.instance(cd, n, parent)
		if e != nil {
			return nil, e
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *compiler) expandVariants(md *ModeDef) []*ModeDef {
	if len(md.Variants) == 0 {
		return []*ModeDef{md}
	}
	if res, has := c.variants[md]; has {
		return res
	}

	res := make([]*ModeDef, len(md.Variants))
	for i, v := range md.Variants {
		res[i] = md.withVariant(v)
	}
	c.variants[md] = res
	return res
}

// instance returns a handle of compiled mode for concrete declaration cd.
// Modes ending with parent are compiled separately for each distinct set of inherited end patterns.
// The handle is registered before children are compiled, so recursive references resolve to it.
func (c *compiler) instance(cd *ModeDef, name string, parent grammar.ModeID) (grammar.ModeID, error) {
	var ends []string
	var flags grammar.ModeFlags
	ownEnd := ""
	if cd.End != "" {
		var e error
		ownEnd, e = c.pc.Resolve(cd.End)
		if e != nil {
			return 0, c.wrap(cd, e)
		}
	}

	switch {
	case cd.Once:
		flags |= grammar.Once
		ends = []string{""}
	case cd.End != "":
		ends = []string{ownEnd}
	case cd.EndsWithParent:
	case len(cd.Contains) == 0 && cd.Illegal == "":
		flags |= grammar.Once
		ends = []string{""}
	default:
		return 0, c.unclosableModeError(name, cd)
	}
	if cd.EndsWithParent {
		flags |= grammar.EndsWithParent
		ends = appendUnique(ends, c.ends[parent]...)
	}

	key := instanceKey{cd, strings.Join(ends, "\x00")}
	if id, has := c.instances[key]; has {
		return id, nil
	}

	id := grammar.ModeID(len(c.modes))
	m := &grammar.Mode{ID: id, Name: name, End: ownEnd, Priority: cd.Priority, Flags: flags}
	c.modes = append(c.modes, m)
	c.ends = append(c.ends, ends)
	c.instances[key] = id

	return id, c.wrap(cd, c.fillMode(m, cd))
}

func (c *compiler) fillMode(m *grammar.Mode, cd *ModeDef) error {
	var e error

	if cd.ExcludeBegin {
		m.Flags |= grammar.ExcludeBegin
	}
	if cd.ExcludeEnd {
		m.Flags |= grammar.ExcludeEnd
	}
	if cd.ReturnBegin {
		m.Flags |= grammar.ReturnBegin
	}
	if cd.ReturnEnd {
		m.Flags |= grammar.ReturnEnd
	}

	if !cd.Class.Valid() {
		return c.unknownCategoryError(m.Name, cd, cd.Class)
	}
	m.Category = cd.Class

	switch {
	case cd.Begin != "":
		m.Begin, e = c.pc.Resolve(cd.Begin)
	case len(cd.BeginKeywords) != 0:
		m.Begin = pattern.Words(cd.BeginKeywords)
	default:
		return c.emptyBeginError(m.Name, cd)
	}
	if e != nil {
		return e
	}

	m.Relevance = 1
	if cd.Relevance != nil {
		m.Relevance = *cd.Relevance
	} else if cd.Begin == "" {
		m.Relevance = 0
	}

	if m.Is(grammar.Once) {
		m.EndRe, e = c.pc.CompileFinal(pattern.Anchored(""))
	} else if m.End != "" {
		m.EndRe, e = c.pc.CompileFinal(pattern.Anchored(m.End))
	}
	if e == nil && cd.Illegal != "" {
		m.Illegal, e = c.pc.Resolve(cd.Illegal)
	}
	if e == nil && cd.Then != nil {
		e = c.fillTitle(m, cd)
	}
	if e == nil {
		e = c.fillKeywords(m, cd)
	}
	if e == nil {
		e = c.fillChildren(m, cd)
	}
	return e
}

func (c *compiler) fillTitle(m *grammar.Mode, cd *ModeDef) error {
	cat := cd.Then.Class
	if cat == grammar.Unclassified {
		cat = grammar.Title
	}
	if !cat.Valid() {
		return c.unknownCategoryError(m.Name, cd, cat)
	}

	src, e := c.pc.Resolve(cd.Then.Match)
	if e != nil {
		return e
	}
	re, e := c.pc.CompileFinal(`\G([ \t]*)(?:` + src + `)`)
	if e != nil {
		return e
	}
	m.Title = &grammar.TitleRule{Re: re, Source: src, Category: cat}
	return nil
}

func (c *compiler) fillKeywords(m *grammar.Mode, md *ModeDef) error {
	kd := md.Keywords
	if kd == nil && len(md.BeginKeywords) != 0 {
		kd = &KeywordDef{Keyword: md.BeginKeywords}
	}
	if kd == nil {
		return nil
	}

	lists := make(map[grammar.Category][]string)
	wordPattern, e := c.collectKeywords(kd, lists, nil)
	if e != nil {
		return e
	}
	m.Keywords = grammar.NewKeywordTable(lists, c.def.CaseInsensitive)
	if m.Keywords.Len() == 0 {
		return nil
	}

	if wordPattern == "" {
		wordPattern = DefaultWordPattern
	}
	re, has := c.wordRes[wordPattern]
	if !has {
		re, e = c.pc.Compile(wordPattern)
		if e != nil {
			return e
		}
		c.wordRes[wordPattern] = re
	}
	m.WordRe = re
	return nil
}

// collectKeywords appends words of kd and all used tables to lists, used tables go first.
// Returns word pattern of kd or of the first used table that defines one.
func (c *compiler) collectKeywords(kd *KeywordDef, lists map[grammar.Category][]string, using []string) (string, error) {
	wordPattern := kd.Pattern
	for _, name := range kd.Use {
		for _, n := range using {
			if n == name {
				return "", keywordsCycleError(append(using, name))
			}
		}
		used, has := c.tables[name]
		if !has || used == nil {
			return "", unknownKeywordsError(name)
		}
		p, e := c.collectKeywords(used, lists, append(using, name))
		if e != nil {
			return "", e
		}
		if wordPattern == "" {
			wordPattern = p
		}
	}

	lists[grammar.Keyword] = append(lists[grammar.Keyword], kd.Keyword...)
	lists[grammar.Literal] = append(lists[grammar.Literal], kd.Literal...)
	lists[grammar.BuiltIn] = append(lists[grammar.BuiltIn], kd.BuiltIn...)
	return wordPattern, nil
}

func (c *compiler) fillChildren(m *grammar.Mode, md *ModeDef) error {
	for i, child := range md.Contains {
		target, name, e := c.resolveRef(child, md, m.Name, i)
		if e != nil {
			return e
		}
		ids, e := c.instantiate(target, name, m.ID)
		if e != nil {
			return e
		}
		m.Children = append(m.Children, ids...)
	}

	sort.SliceStable(m.Children, func(i, j int) bool {
		return c.modes[m.Children[i]].Priority > c.modes[m.Children[j]].Priority
	})
	return nil
}

func (c *compiler) resolveRef(child, self *ModeDef, parentName string, index int) (*ModeDef, string, error) {
	if child == nil {
		return nil, "", c.badRefError(&ModeDef{Ref: "<nil>"})
	}

	switch child.Ref {
	case "":
		name := child.Name
		if name == "" {
			name = fmt.Sprintf("%s/%d", parentName, index+1)
		}
		return child, name, nil

	case SelfRef:
		if self == &c.def.Root {
			return nil, "", c.badRefError(child)
		}
		return self, parentName, nil
	}

	target, has := c.def.Modes[child.Ref]
	if !has || target == nil {
		return nil, "", c.unknownModeError(child)
	}
	if target.Ref != "" {
		return nil, "", c.badRefError(child)
	}
	c.used[child.Ref] = true
	return target, child.Ref, nil
}

func (c *compiler) buildTerminators() error {
	for i, m := range c.modes {
		alternatives := make([]string, 0, len(m.Children)+2)
		for _, id := range m.Children {
			alternatives = append(alternatives, c.modes[id].Begin)
		}

		if ends := c.ends[i]; len(ends) != 0 {
			wrapped := make([]string, len(ends))
			for j, end := range ends {
				wrapped[j] = "(?:" + end + ")"
			}
			alternatives = append(alternatives, strings.Join(wrapped, "|"))
			m.EndGroup = len(alternatives)
		}
		if m.Illegal != "" {
			alternatives = append(alternatives, m.Illegal)
			m.IllegalGroup = len(alternatives)
		}
		if len(alternatives) == 0 {
			continue
		}

		re, e := c.pc.CompileFinal(pattern.Alternation(alternatives))
		if e != nil {
			return e
		}
		m.Terminator = re
	}
	return nil
}

func (c *compiler) reportUnused() {
	var unused []string
	for name := range c.def.Modes {
		if !c.used[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) == 0 {
		return
	}

	sort.Strings(unused)
	c.log.Warn("unused modes", zap.Strings("modes", unused))
}

// Reachable returns handles of all modes reachable from the root, in breadth-first order.
func Reachable(g *grammar.Grammar) []grammar.ModeID {
	seen := make([]bool, len(g.Modes))
	seen[grammar.RootMode] = true
	res := append(make([]grammar.ModeID, 0, len(g.Modes)), grammar.RootMode)
	for i := 0; i < len(res); i++ {
		for _, child := range g.Mode(res[i]).Children {
			if !seen[child] {
				seen[child] = true
				res = append(res, child)
			}
		}
	}
	return res
}

func appendUnique(items []string, more ...string) []string {
	for _, m := range more {
		found := false
		for _, item := range items {
			if item == m {
				found = true
				break
			}
		}
		if !found {
			items = append(items, m)
		}
	}
	return items
}
