package catalog

import "fmt"

// StructuralError reports brackets or braces that do not form a document
// or a record.
type StructuralError struct {
	Offset int // byte offset into the scanned text, -1 when not applicable
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Offset < 0 {
		return "catalog structure: " + e.Reason
	}
	return fmt.Sprintf("catalog structure: %s (offset %d)", e.Reason, e.Offset)
}

// FormatError reports a record line that is not a `key: value` pair.
type FormatError struct {
	Line   int // 1-based, counted from the record's opening brace
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("record line %d %q: %s", e.Line, e.Text, e.Reason)
}
