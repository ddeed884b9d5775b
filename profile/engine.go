package profile

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/rism-digital/muscatplus-indexer/marc"
	"github.com/rism-digital/muscatplus-indexer/solr"
)

// MissingFieldError indicates a profile-mandatory field produced no value.
// It abandons the whole record: the per-record boundary catches it, logs the
// record id, and continues with the next record.
type MissingFieldError struct {
	RecordID string
	Field    string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("record %s produced no value for required field %s", e.RecordID, e.Field)
}

// Logger is the slice of the pipeline logger the engine uses for
// configuration warnings.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// Engine applies profiles to parsed records.
type Engine struct {
	Log      Logger
	registry Registry
}

func NewEngine(reg Registry, log Logger) *Engine {
	return &Engine{Log: log, registry: reg}
}

// Apply produces the document for one record, walking the profile's fields in
// declaration order. Fields resolving to empty are omitted entirely - never
// stored as null.
func (e *Engine) Apply(p *Profile, c *Context) (solr.Document, error) {
	doc := solr.Document{}
	for _, d := range p.Fields {
		v, err := e.value(d, c)
		if err != nil {
			return nil, err
		}
		if empty(v) {
			if d.Required {
				return nil, MissingFieldError{RecordID: c.RecordID, Field: d.Name}
			}
			continue
		}
		if d.Prefix != "" {
			pv, ok := prefixed(d.Prefix, v)
			if !ok {
				// configuration error, not a record error: drop the field,
				// keep the record
				e.Log.Printf("profile %s: field %s: prefix %q does not apply to %T; dropping field",
					p.Type, d.Name, d.Prefix, v)
				continue
			}
			v = pv
		}
		if d.Nested {
			nv, err := nested(v)
			if err != nil {
				e.Log.Printf("profile %s: field %s: cannot serialize nested value: %v; dropping field",
					p.Type, d.Name, err)
				continue
			}
			v = nv
		}
		doc[d.Name] = v
	}
	return doc, nil
}

func (e *Engine) value(d Descriptor, c *Context) (any, error) {
	switch {
	case d.Static != nil:
		return d.Static, nil
	case d.Extractor != "":
		v, err := e.registry[d.Extractor](c)
		if err != nil {
			var fme marc.FieldMissingError
			if errors.As(err, &fme) {
				// the extractor found nothing; Apply decides whether that
				// is fatal for the record
				return nil, nil
			}
			return nil, errors.Wrapf(err, "extractor %s", d.Extractor)
		}
		return v, nil
	default:
		return e.generic(d, c)
	}
}

// generic applies the cardinality variant selected by the descriptor's
// required/multiple flags to its declared tag and subfield.
func (e *Engine) generic(d Descriptor, c *Context) (any, error) {
	var sub byte
	if d.Subfield != "" {
		sub = d.Subfield[0]
	}
	if d.Multiple {
		if d.Required {
			vs, err := marc.MustEvery(c.Record, d.Tag, sub, d.Ungrouped)
			if err != nil {
				return nil, MissingFieldError{RecordID: c.RecordID, Field: d.Name}
			}
			return vs, nil
		}
		return marc.Every(c.Record, d.Tag, sub, d.Ungrouped), nil
	}
	if d.Required {
		v, err := marc.MustFirst(c.Record, d.Tag, sub)
		if err != nil {
			return nil, MissingFieldError{RecordID: c.RecordID, Field: d.Name}
		}
		return v, nil
	}
	v, ok := marc.First(c.Record, d.Tag, sub)
	if !ok {
		return nil, nil
	}
	return v, nil
}

// empty reports whether a resolved value counts as absent.
func empty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr:
		return rv.IsNil()
	}
	return false
}

// prefixed rewrites a string result, or each element of a string-list result,
// as "{prefix}_{value}". Any other shape is a configuration error.
func prefixed(prefix string, v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return prefix + "_" + t, true
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = prefix + "_" + s
		}
		return out, true
	}
	return nil, false
}

// nested serializes a list or structured result into the document's embedded
// nested-structure representation.
func nested(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
