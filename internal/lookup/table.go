package lookup

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TableEntry is one row of an offline lookup table.
type TableEntry struct {
	RA           string `yaml:"ra"`
	Dec          string `yaml:"dec"`
	Magnitude    string `yaml:"magnitude,omitempty"`
	SpectralType string `yaml:"sp_type,omitempty"`
}

// Table answers lookups from a fixed in-memory map. Names match
// case-insensitively after NormalizeName.
type Table struct {
	rows   map[string]TableEntry
	fields Fields
}

// NewTable builds a Table from rows keyed by star name.
func NewTable(rows map[string]TableEntry, fields Fields) *Table {
	t := &Table{rows: make(map[string]TableEntry, len(rows)), fields: fields}
	for name, e := range rows {
		t.rows[tableKey(name)] = e
	}
	return t
}

// LoadTable reads a YAML mapping of star name to TableEntry:
//
//	Rigel:
//	  ra: "05 14 32.27"
//	  dec: "-08 12 05.9"
//	  magnitude: 0.13
//	  sp_type: B8Ia
func LoadTable(path string, fields Fields) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read lookup table %s: %w", path, err)
	}
	var rows map[string]TableEntry
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return NewTable(rows, fields), nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Lookup implements Lookup.
func (t *Table) Lookup(_ context.Context, name string) (Result, error) {
	e, ok := t.rows[tableKey(name)]
	if !ok {
		return Result{}, ErrNotFound
	}
	res := Result{RA: e.RA, Dec: e.Dec, Magnitude: e.Magnitude, SpectralType: e.SpectralType}
	if !res.HasPosition() {
		return Result{}, ErrNotFound
	}
	return t.fields.mask(res), nil
}

func tableKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}
