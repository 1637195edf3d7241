// Package updater refreshes catalog records from a lookup and writes the
// catalog back.
package updater

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/macro2718/starcat/internal/catalog"
	"github.com/macro2718/starcat/internal/coord"
	"github.com/macro2718/starcat/internal/lookup"
	"go.uber.org/zap"
)

// FieldNames are the record keys the updater reads and writes.
type FieldNames struct {
	Name         string
	RA           string
	Dec          string
	Magnitude    string
	SpectralType string
}

// DefaultFieldNames matches the authored stars.js.
var DefaultFieldNames = FieldNames{
	Name:         "nameSIMBAD",
	RA:           "ra",
	Dec:          "dec",
	Magnitude:    "magnitude",
	SpectralType: "sp_type",
}

// Options configures UpdateDocument. Zero values select the defaults.
type Options struct {
	Fields FieldNames
	Style  *catalog.Style
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Fields == (FieldNames{}) {
		o.Fields = DefaultFieldNames
	}
	if o.Style == nil {
		s := catalog.DefaultStyle
		o.Style = &s
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Result is the outcome of UpdateDocument.
type Result struct {
	Text string
	// Unresolved lists each name with no usable lookup data once, in
	// document order.
	Unresolved []string
	Records    int
	Updated    int
	Skipped    int // records without a name field, or with an empty one
}

// UpdateDocument refreshes every named record in text from lk and returns
// the re-rendered document. Structural and format errors abort with no
// partial result; lookup failures only mark the name unresolved.
func UpdateDocument(ctx context.Context, text string, lk lookup.Lookup, opts Options) (Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	doc, records, err := catalog.Parse(text)
	if err != nil {
		return Result{}, err
	}

	res := Result{Records: len(records)}
	seen := make(map[string]bool)
	for _, r := range records {
		raw, ok := r.Get(opts.Fields.Name)
		if !ok {
			res.Skipped++
			continue
		}
		name := StarName(raw)
		if name == "" {
			log.Debug("empty name, record skipped", zap.String("field", opts.Fields.Name))
			res.Skipped++
			continue
		}

		found, err := lk.Lookup(ctx, name)
		if err == nil && !found.HasPosition() {
			err = lookup.ErrNotFound
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			if errors.Is(err, lookup.ErrNotFound) {
				log.Info("no catalog data", zap.String("name", name))
			} else {
				log.Warn("lookup failed", zap.String("name", name), zap.Error(err))
			}
			if !seen[name] {
				seen[name] = true
				res.Unresolved = append(res.Unresolved, name)
			}
			continue
		}

		if err := apply(r, found, opts.Fields, log.With(zap.String("name", name))); err != nil {
			return Result{}, fmt.Errorf("star %q: %w", name, err)
		}
		res.Updated++
	}

	res.Text = catalog.Render(doc, records, *opts.Style)
	return res, nil
}

// StarName strips whitespace and surrounding quote characters from a raw
// name value. A blank quoted value yields "".
func StarName(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `'"`))
}

func apply(r *catalog.Record, found lookup.Result, f FieldNames, log *zap.Logger) error {
	ra, err := coord.NormalizeRA(found.RA)
	if err != nil {
		return err
	}
	dec, err := coord.NormalizeDec(found.Dec)
	if err != nil {
		return err
	}
	r.Set(f.RA, strconv.FormatFloat(ra, 'f', 6, 64))
	r.Set(f.Dec, strconv.FormatFloat(dec, 'f', 6, 64))

	if f.Magnitude != "" {
		if mag := strings.TrimSpace(found.Magnitude); mag != "" {
			v, perr := strconv.ParseFloat(mag, 64)
			if perr == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
				r.Set(f.Magnitude, strconv.FormatFloat(v, 'f', 2, 64))
			} else {
				log.Debug("non-numeric magnitude left unchanged", zap.String("magnitude", mag))
			}
		}
	}

	if f.SpectralType != "" {
		if sp := strings.TrimSpace(found.SpectralType); sp != "" {
			r.Set(f.SpectralType, quote(sp))
		}
	}
	return nil
}

var singleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote renders s as a single-quoted JS string literal.
func quote(s string) string {
	return "'" + singleQuoteEscaper.Replace(s) + "'"
}
