package updater

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/macro2718/starcat/internal/catalog"
)

// Issue points at one record in a CheckReport.
type Issue struct {
	Index  int // 1-based record position
	Label  string
	Detail string
}

// CheckReport summarises a catalog without consulting any lookup.
type CheckReport struct {
	Records    int
	Named      int
	Unnamed    []Issue
	Duplicates []Issue
	BadCoords  []Issue
	// Canonical is true when re-rendering leaves the text unchanged.
	Canonical bool
}

// OK reports whether the check found nothing to warn about.
func (r CheckReport) OK() bool {
	return len(r.Duplicates) == 0 && len(r.BadCoords) == 0
}

// Check parses text and reports records an update would skip or mangle.
func Check(text string, opts Options) (CheckReport, error) {
	opts = opts.withDefaults()
	doc, records, err := catalog.Parse(text)
	if err != nil {
		return CheckReport{}, err
	}

	rep := CheckReport{Records: len(records)}
	for i, r := range records {
		label := recordLabel(r, opts.Fields.Name)
		if v, ok := r.Get(opts.Fields.Name); ok && StarName(v) != "" {
			rep.Named++
		} else {
			rep.Unnamed = append(rep.Unnamed, Issue{Index: i + 1, Label: label})
		}
		if dups := r.Duplicates(); len(dups) > 0 {
			rep.Duplicates = append(rep.Duplicates, Issue{
				Index:  i + 1,
				Label:  label,
				Detail: "repeated keys: " + strings.Join(dups, ", "),
			})
		}
		for _, key := range []string{opts.Fields.RA, opts.Fields.Dec} {
			v, ok := r.Get(key)
			if !ok {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				rep.BadCoords = append(rep.BadCoords, Issue{
					Index:  i + 1,
					Label:  label,
					Detail: fmt.Sprintf("%s is not a decimal number: %s", key, v),
				})
			}
		}
	}
	rep.Canonical = catalog.Render(doc, records, *opts.Style) == text
	return rep, nil
}

// recordLabel names a record for humans: the catalog name, then the id,
// then nothing.
func recordLabel(r *catalog.Record, nameField string) string {
	for _, k := range []string{nameField, "id"} {
		if v, ok := r.Get(k); ok && StarName(v) != "" {
			return StarName(v)
		}
	}
	return ""
}
