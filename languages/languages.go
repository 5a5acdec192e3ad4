// Package languages contains grammar descriptions bundled with the module.
package languages

import (
	"embed"
	"path"
	"sort"
	"sync"

	"github.com/ava12/hilite/langdef"
	"github.com/ava12/hilite/registry"
)

//go:embed *.yaml
var files embed.FS

// Files returns names of bundled description files in alphabetical order.
func Files() []string {
	entries, _ := files.ReadDir(".")
	res := make([]string, 0, len(entries))
	for _, en := range entries {
		if !en.IsDir() && path.Ext(en.Name()) == ".yaml" {
			res = append(res, en.Name())
		}
	}
	sort.Strings(res)
	return res
}

// Content returns content of bundled description file.
func Content(file string) ([]byte, error) {
	return files.ReadFile(file)
}

// Definitions decodes all bundled descriptions.
func Definitions() ([]*langdef.Definition, error) {
	var res []*langdef.Definition
	for _, f := range Files() {
		content, e := files.ReadFile(f)
		if e != nil {
			return nil, e
		}
		def, e := langdef.Decode(f, content)
		if e != nil {
			return nil, e
		}
		res = append(res, def)
	}
	return res, nil
}

// Register adds all bundled grammars to r.
func Register(r *registry.Registry) error {
	defs, e := Definitions()
	if e != nil {
		return e
	}
	for _, def := range defs {
		if e = r.Register(def); e != nil {
			return e
		}
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *registry.Registry
	defaultError    error
)

// Default returns shared registry containing bundled grammars only.
func Default() (*registry.Registry, error) {
	defaultOnce.Do(func() {
		r := registry.New(nil)
		defaultError = Register(r)
		if defaultError == nil {
			defaultRegistry = r
		}
	})
	return defaultRegistry, defaultError
}
