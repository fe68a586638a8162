// Package universe loads the scoring universe: the ordered symbol list
// a run works through. File order is meaningful, it breaks composite
// ties in the final ranking.
package universe

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Entry is one symbol of the universe with optional descriptive
// metadata. Sector and name fall back to provider data when empty.
type Entry struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Sector string `yaml:"sector,omitempty" json:"sector,omitempty"`
}

// Universe is the parsed universe file.
type Universe struct {
	Meta    Meta    `yaml:"meta" json:"meta"`
	Symbols []Entry `yaml:"symbols" json:"symbols"`

	index map[string]int
}

// Meta identifies a universe file.
type Meta struct {
	UniverseID  string `yaml:"universe_id" json:"universe_id"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// symbolPattern covers plain tickers plus the dotted and hyphenated
// share-class forms (BRK.B, BF-B).
var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,11}$`)

// Load reads and validates a universe YAML. Unknown keys fail the
// load, same as model files.
func Load(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var u Universe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&u); err != nil {
		return nil, err
	}

	if err := u.validate(); err != nil {
		return nil, err
	}

	u.index = make(map[string]int, len(u.Symbols))
	for i, e := range u.Symbols {
		u.index[e.Symbol] = i
	}

	return &u, nil
}

func (u *Universe) validate() error {
	if u.Meta.UniverseID == "" {
		return fmt.Errorf("meta.universe_id: required")
	}
	if len(u.Symbols) == 0 {
		return fmt.Errorf("symbols: must not be empty")
	}

	seen := make(map[string]bool, len(u.Symbols))
	for i, e := range u.Symbols {
		if e.Symbol == "" {
			return fmt.Errorf("symbols[%d].symbol: required", i)
		}
		if !symbolPattern.MatchString(e.Symbol) {
			return fmt.Errorf("symbols[%d].symbol: %q is not a valid ticker", i, e.Symbol)
		}
		if seen[e.Symbol] {
			return fmt.Errorf("symbols[%d].symbol: duplicate %q", i, e.Symbol)
		}
		seen[e.Symbol] = true
	}

	return nil
}

// Len returns the number of symbols.
func (u *Universe) Len() int {
	return len(u.Symbols)
}

// Tickers returns the symbols in file order.
func (u *Universe) Tickers() []string {
	out := make([]string, len(u.Symbols))
	for i, e := range u.Symbols {
		out[i] = e.Symbol
	}
	return out
}

// Position returns the file position of symbol, or -1. Lower positions
// win composite ties.
func (u *Universe) Position(symbol string) int {
	if i, ok := u.index[symbol]; ok {
		return i
	}
	return -1
}

// Find returns the entry for symbol, or nil.
func (u *Universe) Find(symbol string) *Entry {
	if i, ok := u.index[symbol]; ok {
		return &u.Symbols[i]
	}
	return nil
}
