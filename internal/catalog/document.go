package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Document is a catalog file split around its record array. Header ends with
// the opening '[' and Footer starts with the closing ']'; both are opaque.
type Document struct {
	Header string
	Body   string
	Footer string
}

// SplitDocument locates the first '[' and the last ']' in text.
func SplitDocument(text string) (Document, error) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return Document{}, &StructuralError{Offset: -1, Reason: "missing opening '['"}
	}
	end := strings.LastIndexByte(text, ']')
	if end < 0 {
		return Document{}, &StructuralError{Offset: -1, Reason: "missing closing ']'"}
	}
	if end < start {
		return Document{}, &StructuralError{Offset: end, Reason: "closing ']' precedes opening '['"}
	}
	return Document{
		Header: text[:start+1],
		Body:   text[start+1 : end],
		Footer: text[end:],
	}, nil
}

// LineEnding returns "\r\n" when any part of doc uses CRLF line endings,
// and "\n" otherwise.
func (d Document) LineEnding() string {
	if strings.Contains(d.Header, "\r\n") || strings.Contains(d.Body, "\r\n") || strings.Contains(d.Footer, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// JoinDocument splices body between doc's header and footer, leaving exactly
// one line ending before the footer.
func JoinDocument(doc Document, body string) string {
	nl := doc.LineEnding()
	var b strings.Builder
	b.Grow(len(doc.Header) + len(body) + len(doc.Footer) + len(nl))
	b.WriteString(doc.Header)
	b.WriteString(strings.TrimRight(body, "\r\n"))
	b.WriteString(nl)
	b.WriteString(doc.Footer)
	return b.String()
}

// Parse splits text into its document frame and decoded records.
func Parse(text string) (Document, []*Record, error) {
	doc, err := SplitDocument(text)
	if err != nil {
		return Document{}, nil, err
	}
	raws, err := SplitRecords(doc.Body)
	if err != nil {
		var se *StructuralError
		if errors.As(err, &se) && se.Offset >= 0 {
			se.Offset += len(doc.Header)
		}
		return Document{}, nil, err
	}
	records := make([]*Record, 0, len(raws))
	for i, raw := range raws {
		r, err := Decode(raw)
		if err != nil {
			return Document{}, nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		records = append(records, r)
	}
	return doc, records, nil
}

// Render encodes records and splices them back into doc using doc's line
// ending.
func Render(doc Document, records []*Record, style Style) string {
	encoded := make([]string, len(records))
	for i, r := range records {
		encoded[i] = Encode(r, style)
	}
	body := JoinRecords(encoded)
	if nl := doc.LineEnding(); nl != "\n" {
		body = strings.ReplaceAll(body, "\n", nl)
	}
	return JoinDocument(doc, body)
}
