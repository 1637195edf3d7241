// Package coord converts right ascension and declination text into decimal
// degrees.
//
// Input is either a plain decimal literal ("157.5") or a sexagesimal triple
// separated by spaces or colons ("10 30 00", "-08:12:05.9"). Right ascension
// triples are read as hours and scaled by 15; declination triples are read as
// degrees with the sign taken from the text of the leading component.
package coord

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Axis selects which sign and scale rules apply.
type Axis int

const (
	RightAscension Axis = iota
	Declination
)

func (a Axis) String() string {
	switch a {
	case RightAscension:
		return "ra"
	case Declination:
		return "dec"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// FormatError reports angle text that cannot be converted.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unexpected sexagesimal format %q: %s", e.Input, e.Reason)
}

// minusForms are code points authors and catalogs use in place of ASCII '-'.
var minusForms = strings.NewReplacer(
	"−", "-", // MINUS SIGN
	"‒", "-", // FIGURE DASH
	"–", "-", // EN DASH
	"﹣", "-", // SMALL HYPHEN-MINUS
	"－", "-", // FULLWIDTH HYPHEN-MINUS
)

// Normalize converts text into decimal degrees along axis. The result is not
// clamped to the axis range.
func Normalize(text string, axis Axis) (float64, error) {
	s := sanitize(text)
	if s == "" {
		return 0, &FormatError{Input: text, Reason: "empty"}
	}

	if !strings.ContainsAny(s, " \t:") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &FormatError{Input: text, Reason: "not a decimal number"}
		}
		return finite(text, v)
	}

	parts := strings.Fields(strings.ReplaceAll(s, ":", " "))
	if len(parts) < 3 {
		return 0, &FormatError{Input: text, Reason: fmt.Sprintf("want 3 components, got %d", len(parts))}
	}

	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return 0, &FormatError{Input: text, Reason: fmt.Sprintf("component %q is not a number", parts[i])}
		}
		vals[i] = v
	}
	base, minutes, seconds := vals[0], vals[1], vals[2]

	if axis == Declination {
		// "-00 30 00" parses to base 0, so the sign must come from the text.
		sign := 1.0
		if strings.HasPrefix(parts[0], "-") {
			sign = -1
		}
		if base < 0 {
			base = -base
		}
		return finite(text, sign*(base+minutes/60+seconds/3600))
	}
	return finite(text, (base+minutes/60+seconds/3600)*15)
}

// finite rejects NaN and ±Inf, which ParseFloat accepts but the catalog
// cannot hold.
func finite(text string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FormatError{Input: text, Reason: "not a finite number"}
	}
	return v, nil
}

// NormalizeRA is Normalize(text, RightAscension).
func NormalizeRA(text string) (float64, error) { return Normalize(text, RightAscension) }

// NormalizeDec is Normalize(text, Declination).
func NormalizeDec(text string) (float64, error) { return Normalize(text, Declination) }

func sanitize(text string) string {
	s := norm.NFKC.String(strings.TrimSpace(text))
	return minusForms.Replace(s)
}
