// Package lookup resolves star names to catalog positions and photometry.
package lookup

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrNotFound means the catalog has no usable position for a name.
var ErrNotFound = errors.New("lookup: not found")

// Result holds the raw catalog text for one object. RA and Dec are either
// decimal degrees or sexagesimal; Magnitude and SpectralType are empty when
// the catalog has no value or the field was not requested.
type Result struct {
	RA           string
	Dec          string
	Magnitude    string
	SpectralType string
}

// HasPosition reports whether both coordinates are present.
func (r Result) HasPosition() bool {
	return strings.TrimSpace(r.RA) != "" && strings.TrimSpace(r.Dec) != ""
}

// Lookup resolves a name. Implementations return ErrNotFound (possibly
// wrapped) when the name is unknown or has no position.
type Lookup interface {
	Lookup(ctx context.Context, name string) (Result, error)
}

// Func adapts a function to Lookup.
type Func func(ctx context.Context, name string) (Result, error)

func (f Func) Lookup(ctx context.Context, name string) (Result, error) { return f(ctx, name) }

// Fields selects which optional columns an adapter fetches. Positions are
// always fetched.
type Fields struct {
	Magnitude    bool
	SpectralType bool
}

// AllFields requests every optional column.
var AllFields = Fields{Magnitude: true, SpectralType: true}

// key is a compact, stable encoding used for cache rows.
func (f Fields) key() string {
	k := "p"
	if f.Magnitude {
		k += "m"
	}
	if f.SpectralType {
		k += "s"
	}
	return k
}

// mask clears the columns f did not request.
func (f Fields) mask(r Result) Result {
	if !f.Magnitude {
		r.Magnitude = ""
	}
	if !f.SpectralType {
		r.SpectralType = ""
	}
	return r
}

// NormalizeName trims name and puts it in Unicode NFC form so the same star
// written with different code point sequences shares one cache entry.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
