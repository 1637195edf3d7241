package catalog

import (
	"strings"
)

// fieldIndent is added to Style.Indent for each field line.
const fieldIndent = "    "

// Style controls how records are rendered.
type Style struct {
	// Indent precedes each record's braces.
	Indent string
}

// DefaultStyle matches the layout of the hand-authored catalog.
var DefaultStyle = Style{Indent: "    "}

// Decode parses one record block as returned by SplitRecords.
//
// Blank lines are dropped. Lines starting with `//`, and every line of a
// `/* */` comment that opens a line, are kept aside as non-field lines. Every other line must be `key: value` with an optional
// trailing comma; the line is split on its first colon only. A repeated key
// keeps its first position and takes the last value.
func Decode(raw string) (*Record, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, &StructuralError{Offset: -1, Reason: "record is not wrapped in braces"}
	}

	r := NewRecord()
	inBlock := false
	for i, text := range strings.Split(s[1:len(s)-1], "\n") {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if inBlock || strings.HasPrefix(text, "/*") {
			r.addComment(text)
			inBlock = !strings.Contains(strings.TrimPrefix(text, "/*"), "*/")
			continue
		}
		if strings.HasPrefix(text, "//") {
			r.addComment(text)
			continue
		}
		text = strings.TrimSuffix(text, ",")
		key, value, ok := strings.Cut(text, ":")
		if !ok {
			return nil, &FormatError{Line: i + 1, Text: text, Reason: "missing ':'"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &FormatError{Line: i + 1, Text: text, Reason: "empty key"}
		}
		if _, seen := r.values[key]; seen {
			r.duplicates = append(r.duplicates, key)
		}
		r.Set(key, strings.TrimSpace(value))
	}
	return r, nil
}

// Encode renders r in canonical form: the opening brace, one
// `key: value` line per field with a comma on all but the last field, and
// the closing brace. Comment lines are written back where they were found.
func Encode(r *Record, style Style) string {
	last := -1
	for i, l := range r.lines {
		if l.comment == "" {
			last = i
		}
	}

	var b strings.Builder
	b.WriteString(style.Indent)
	b.WriteString("{\n")
	for i, l := range r.lines {
		b.WriteString(style.Indent)
		b.WriteString(fieldIndent)
		if l.comment != "" {
			b.WriteString(l.comment)
			b.WriteByte('\n')
			continue
		}
		b.WriteString(l.key)
		b.WriteString(": ")
		b.WriteString(r.values[l.key])
		if i < last {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(style.Indent)
	b.WriteByte('}')
	return b.String()
}

// JoinRecords separates encoded records with the array comma and exactly
// one blank line. The last record gets neither.
func JoinRecords(encoded []string) string {
	var b strings.Builder
	for i, e := range encoded {
		b.WriteString(e)
		if i < len(encoded)-1 {
			b.WriteString(",\n\n")
		}
	}
	return b.String()
}
