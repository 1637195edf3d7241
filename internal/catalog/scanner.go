package catalog

// SplitRecords returns the brace-balanced record blocks of body in document
// order, each including its outer braces. Text between records is dropped.
//
// Braces inside quoted strings and comments are not structural. An
// unmatched brace anywhere in body fails the whole scan.
func SplitRecords(body string) ([]string, error) {
	var (
		records []string
		depth   int
		start   = -1
	)
	for i := 0; i < len(body); i++ {
		switch c := body[i]; c {
		case '\'', '"', '`':
			end, ok := skipString(body, i)
			if !ok {
				return nil, &StructuralError{Offset: i, Reason: "unterminated string literal"}
			}
			i = end
		case '/':
			if i+1 >= len(body) {
				continue
			}
			switch body[i+1] {
			case '/':
				i = skipLineComment(body, i)
			case '*':
				end, ok := skipBlockComment(body, i)
				if !ok {
					return nil, &StructuralError{Offset: i, Reason: "unterminated block comment"}
				}
				i = end
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				return nil, &StructuralError{Offset: i, Reason: "unmatched '}'"}
			}
			depth--
			if depth == 0 {
				records = append(records, body[start:i+1])
				start = -1
			}
		}
	}
	if depth != 0 {
		return nil, &StructuralError{Offset: start, Reason: "record is never closed"}
	}
	return records, nil
}

// skipString returns the index of the quote closing the literal opened at
// body[open]. Single- and double-quoted literals end at a newline.
func skipString(body string, open int) (int, bool) {
	q := body[open]
	for i := open + 1; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '\n':
			if q != '`' {
				return 0, false
			}
		case q:
			return i, true
		}
	}
	return 0, false
}

// skipLineComment returns the index of the last byte before the newline.
func skipLineComment(body string, at int) int {
	for i := at; i < len(body); i++ {
		if body[i] == '\n' {
			return i - 1
		}
	}
	return len(body) - 1
}

func skipBlockComment(body string, at int) (int, bool) {
	for i := at + 2; i+1 < len(body); i++ {
		if body[i] == '*' && body[i+1] == '/' {
			return i + 1, true
		}
	}
	return 0, false
}
