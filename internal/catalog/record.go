package catalog

// Record is one star entry as an ordered list of fields. Values hold the
// literal source text, quotes and all. Comment lines found while decoding are
// kept in place so Encode can write them back; they are not fields.
type Record struct {
	lines      []line
	values     map[string]string
	duplicates []string
}

// line is either a field key or a verbatim `//` comment.
type line struct {
	key     string
	comment string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Get returns the raw value text for key.
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set replaces the value of an existing key in place, or appends key.
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.lines = append(r.lines, line{key: key})
	}
	r.values[key] = value
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	out := make([]string, 0, len(r.values))
	for _, l := range r.lines {
		if l.comment == "" {
			out = append(out, l.key)
		}
	}
	return out
}

// Len returns the number of distinct fields.
func (r *Record) Len() int { return len(r.values) }

// Duplicates lists keys that appeared more than once while decoding, in
// the order the repeats were seen.
func (r *Record) Duplicates() []string {
	out := make([]string, len(r.duplicates))
	copy(out, r.duplicates)
	return out
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := &Record{
		lines:      make([]line, len(r.lines)),
		values:     make(map[string]string, len(r.values)),
		duplicates: make([]string, len(r.duplicates)),
	}
	copy(c.lines, r.lines)
	copy(c.duplicates, r.duplicates)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

func (r *Record) addComment(text string) {
	r.lines = append(r.lines, line{comment: text})
}
