package marc

import "fmt"

// groupMarker is the subfield code linking a field occurrence to a material
// group. Extraction with the ungrouped flag set skips occurrences carrying it.
const groupMarker = '8'

// FieldMissingError indicates that a required extraction produced no value.
// It is scoped to a single record; callers at the per-record boundary catch
// it, log the record, and move on.
type FieldMissingError struct {
	Tag      string
	Subfield byte
}

func (e FieldMissingError) Error() string {
	if e.Subfield == 0 {
		return fmt.Sprintf("no value for field %s", e.Tag)
	}
	return fmt.Sprintf("no value for field %s$%c", e.Tag, e.Subfield)
}

// First returns the value of the first occurrence of tag. With a zero
// subfield code the whole control data is returned; otherwise the first
// matching subfield of the first occurrence.
func First(rec *Record, tag string, sub byte) (string, bool) {
	f, ok := rec.First(tag)
	if !ok {
		return "", false
	}
	if sub == 0 {
		if f.ControlData == "" {
			return "", false
		}
		return f.ControlData, true
	}
	v, ok := f.Subfield(sub)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// MustFirst is First, failing with FieldMissingError when nothing is found.
func MustFirst(rec *Record, tag string, sub byte) (string, error) {
	v, ok := First(rec, tag, sub)
	if !ok {
		return "", FieldMissingError{Tag: tag, Subfield: sub}
	}
	return v, nil
}

// Every returns the de-duplicated values of sub across all occurrences of
// tag, preserving first-seen order. With ungrouped set, occurrences carrying
// the group-membership marker subfield are skipped.
func Every(rec *Record, tag string, sub byte, ungrouped bool) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, f := range rec.All(tag) {
		if ungrouped && f.HasSubfield(groupMarker) {
			continue
		}
		var v string
		if sub == 0 {
			v = f.ControlData
		} else {
			v, _ = f.Subfield(sub)
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// MustEvery is Every, failing with FieldMissingError when nothing is found.
func MustEvery(rec *Record, tag string, sub byte, ungrouped bool) ([]string, error) {
	vs := Every(rec, tag, sub, ungrouped)
	if len(vs) == 0 {
		return nil, FieldMissingError{Tag: tag, Subfield: sub}
	}
	return vs, nil
}
