// Package marc parses the compact tagged-field record format used by the
// catalog database to store bibliographic records, one record per text blob,
// and provides cardinality-aware value extraction over parsed records.
package marc

// Subfield is a single (code, value) pair within a data field. Codes are not
// unique within a field; order of occurrence is significant.
type Subfield struct {
	Code  byte
	Value string
}

// Field is one tagged field of a record. Tags below "010" are control fields
// and carry their entire content in ControlData; all other tags carry a
// two-character indicator code and an ordered (possibly empty) subfield list.
type Field struct {
	Tag         string
	Indicators  string
	Subfields   []Subfield
	ControlData string
}

// Control reports whether the field is a control field.
func (f Field) Control() bool {
	return f.Tag < "010"
}

// Subfield returns the value of the first subfield with the given code.
func (f Field) Subfield(code byte) (string, bool) {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}

// HasSubfield reports whether any subfield with the given code is present.
func (f Field) HasSubfield(code byte) bool {
	_, ok := f.Subfield(code)
	return ok
}

// Record is an ordered sequence of fields. Order of occurrence is preserved
// from the source text and is significant for multi-value extraction.
type Record struct {
	Fields []Field
}

// All returns every field with the given tag in order of occurrence.
func (r *Record) All(tag string) []Field {
	var out []Field
	for _, f := range r.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// First returns the first field with the given tag.
func (r *Record) First(tag string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return Field{}, false
}
