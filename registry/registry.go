// Package registry keeps grammars addressable by name or alias.
//
// Registered descriptions are compiled lazily, once per grammar; compiled grammars are shared
// by all callers. Grammars are versioned data: registering a different description
// under a name or alias already taken is an error, descriptions are never merged.
package registry

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-version"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/ava12/hilite"
	"github.com/ava12/hilite/grammar"
	"github.com/ava12/hilite/langdef"
	"github.com/ava12/hilite/lexer"
)

// Error codes used by registry:
const (
	// UnknownLanguageError indicates a lookup of unregistered name or alias.
	UnknownLanguageError = hilite.RegistryErrors + iota

	// ConflictError indicates a name or alias already taken by a different description.
	ConflictError

	// BadVersionError indicates a grammar version that is not a valid version number.
	BadVersionError
)

// Options affect grammar compilation and logging.
type Options struct {
	// MatchTimeout is passed to langdef.Options.
	MatchTimeout time.Duration

	// Logger receives registration and compilation messages, nil means no logging.
	Logger *zap.Logger

	// CacheSize is the number of complete scan results kept for repeated scans
	// of the same text with the same grammar and options, zero disables the cache.
	// Cached results are shared and must not be modified.
	CacheSize int
}

// Info describes a registered grammar.
type Info struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Version string   `json:"version,omitempty"`
}

type entry struct {
	def     *langdef.Definition
	version *version.Version
	content []byte
	once    sync.Once
	g       *grammar.Grammar
	e       error
}

// Registry maps grammar names and aliases to grammars. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	names   []string
	opts    langdef.Options
	log     *zap.Logger
	cache   *lru.Cache[scanKey, *lexer.Result]
}

// New creates an empty registry. opts may be nil.
func New(opts *Options) *Registry {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		entries: make(map[string]*entry),
		opts:    langdef.Options{MatchTimeout: opts.MatchTimeout, Logger: log},
		log:     log,
	}
	if opts.CacheSize > 0 {
		r.cache, _ = lru.New[scanKey, *lexer.Result](opts.CacheSize)
	}
	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds grammar description. Registering the same description again is a no-op.
// Returns hilite.Error with ConflictError code if any of grammar names is taken by a different
// description, nothing is registered in this case. A grammar without name gets langdef.NoNameError.
// Grammar version, if set, must be a valid version number (e.g. "1", "2.1.0").
func (r *Registry) Register(def *langdef.Definition) error {
	if def.Name == "" {
		return noNameError(def)
	}
	var ver *version.Version
	if def.Version != "" {
		v, e := version.NewVersion(def.Version)
		if e != nil {
			return badVersionError(def, e)
		}
		ver = v
	}
	content, e := json.Marshal(def)
	if e != nil {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{def.Name}, def.Aliases...)
	var existing *entry
	for _, n := range names {
		en, has := r.entries[key(n)]
		if !has {
			continue
		}
		if existing != nil && en != existing || !bytes.Equal(en.content, content) {
			fields := []zap.Field{
				zap.String("grammar", def.Name),
				zap.String("version", def.Version),
				zap.String("name", n),
				zap.String("registered", en.def.Name),
				zap.String("registeredVersion", en.def.Version),
			}
			if ver != nil && en.version != nil {
				fields = append(fields, zap.Int("versionOrder", ver.Compare(en.version)))
			}
			r.log.Warn("conflicting grammar rejected", fields...)
			return conflictError(n, en.def, def)
		}
		existing = en
	}
	if existing != nil {
		return nil
	}

	en := &entry{def: def, version: ver, content: content}
	for _, n := range names {
		r.entries[key(n)] = en
	}
	r.names = append(r.names, def.Name)
	registerGrammarMetrics(def.Name)
	r.log.Debug("grammar registered", zap.String("grammar", def.Name), zap.Strings("aliases", def.Aliases), zap.String("version", def.Version))
	return nil
}

// RegisterYAML decodes YAML description and registers it, name is used in error messages.
func (r *Registry) RegisterYAML(name string, content []byte) error {
	def, e := langdef.Decode(name, content)
	if e != nil {
		return e
	}
	return r.Register(def)
}

// RegisterFile reads YAML description file and registers it.
func (r *Registry) RegisterFile(path string) error {
	def, e := langdef.DecodeFile(path)
	if e != nil {
		return e
	}
	return r.Register(def)
}

func (r *Registry) entry(name string) (*entry, error) {
	r.mu.RLock()
	en, has := r.entries[key(name)]
	r.mu.RUnlock()
	if !has {
		return nil, unknownLanguageError(name)
	}
	return en, nil
}

// Lookup returns compiled grammar by name or alias (case-insensitive).
// Grammar is compiled on first lookup, compilation error is returned by every lookup.
func (r *Registry) Lookup(name string) (*grammar.Grammar, error) {
	en, e := r.entry(name)
	if e != nil {
		return nil, e
	}

	en.once.Do(func() {
		started := time.Now()
		en.g, en.e = langdef.Compile(en.def, &r.opts)
		if en.e != nil {
			r.log.Error("grammar compilation failed", zap.String("grammar", en.def.Name), zap.Error(en.e))
			return
		}
		elapsed := time.Since(started)
		metricCompileSeconds.WithLabelValues(en.def.Name).Set(elapsed.Seconds())
		r.log.Info("grammar compiled",
			zap.String("grammar", en.def.Name),
			zap.Int("modes", len(en.g.Modes)),
			zap.Duration("elapsed", elapsed))
	})
	return en.g, en.e
}

// Has tells whether name or alias is registered.
func (r *Registry) Has(name string) bool {
	_, e := r.entry(name)
	return e == nil
}

// Names returns registered grammar names (without aliases) in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	res := append([]string(nil), r.names...)
	r.mu.RUnlock()
	sort.Strings(res)
	return res
}

// Infos returns descriptions of registered grammars ordered by name.
func (r *Registry) Infos() []Info {
	names := r.Names()
	res := make([]Info, 0, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range names {
		def := r.entries[key(n)].def
		res = append(res, Info{Name: def.Name, Aliases: append([]string(nil), def.Aliases...), Version: def.Version})
	}
	return res
}

// Scan looks up grammar by name or alias and scans text with it.
// Returns nil result if the grammar cannot be found or compiled.
func (r *Registry) Scan(name, text string, opts *lexer.Options) (*lexer.Result, error) {
	g, e := r.Lookup(name)
	if e != nil {
		return nil, e
	}
	return r.scan(g, []rune(text), r.digest(text), opts)
}
