package langdef

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ava12/hilite/grammar"
)

// Decode decodes YAML grammar description. name is used in error messages.
// Returns nil and hilite.Error on error.
func Decode(name string, content []byte) (*Definition, error) {
	def := &Definition{}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	e := dec.Decode(def)
	if errors.Is(e, io.EOF) {
		e = errors.New("empty description")
	}
	if e != nil {
		return nil, decodeError(name, e)
	}

	def.SourceName = name
	return def, nil
}

// DecodeFile reads and decodes YAML grammar description file.
func DecodeFile(path string) (*Definition, error) {
	content, e := os.ReadFile(path)
	if e != nil {
		return nil, e
	}
	return Decode(path, content)
}

// ParseString decodes and compiles grammar description and returns a grammar on success.
// Returns nil and hilite.Error on error.
func ParseString(name, content string) (*grammar.Grammar, error) {
	return ParseBytes(name, []byte(content), nil)
}

// ParseBytes decodes and compiles grammar description and returns a grammar on success.
// opts may be nil. Returns nil and hilite.Error on error.
func ParseBytes(name string, content []byte, opts *Options) (*grammar.Grammar, error) {
	def, e := Decode(name, content)
	if e != nil {
		return nil, e
	}
	return Compile(def, opts)
}
