// Package profile implements the declarative field-mapping engine. A profile
// is an ordered list of field descriptors, one profile per document type,
// loaded once at startup and immutable for the run's lifetime. Each
// descriptor names exactly one value source: a static value, a named
// extractor function, or a (tag, subfield) pair resolved through the generic
// marc extractors.
package profile

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	indexer "github.com/rism-digital/muscatplus-indexer"
	"github.com/rism-digital/muscatplus-indexer/marc"
)

// Context is what a field extraction runs against: the parsed record, the
// raw source row for values living outside the record blob, and the document
// id of the record being built.
type Context struct {
	RecordID string
	Record   *marc.Record
	Row      indexer.Row
}

// Extractor is the shared signature all named extractor functions implement.
// Results may be a string, a list of scalars, or a structure destined for
// nested serialization. Returning marc.FieldMissingError signals "no value".
type Extractor func(c *Context) (any, error)

// Registry maps extractor names to implementations. It is built at compile
// time by the record-type packages and validated against every profile at
// load time, so an unknown extractor name is a startup error rather than a
// per-record runtime log line.
type Registry map[string]Extractor

// Descriptor declares how one output field is produced.
type Descriptor struct {
	Name      string `yaml:"name"`
	Tag       string `yaml:"tag,omitempty"`
	Subfield  string `yaml:"subfield,omitempty"`
	Extractor string `yaml:"extractor,omitempty"`
	Static    any    `yaml:"static,omitempty"`
	Multiple  bool   `yaml:"multiple,omitempty"`
	Required  bool   `yaml:"required,omitempty"`
	Ungrouped bool   `yaml:"ungrouped,omitempty"`
	Nested    bool   `yaml:"nested,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// Profile is the ordered field mapping for one document type.
type Profile struct {
	Type   string       `yaml:"type"`
	Fields []Descriptor `yaml:"fields"`
}

// Load parses a profile and validates it against the extractor registry.
func Load(data []byte, reg Registry) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decoding profile")
	}
	if p.Type == "" {
		return nil, errors.New("profile is missing a document type")
	}
	seen := map[string]struct{}{}
	for i, d := range p.Fields {
		if err := validate(d, reg); err != nil {
			return nil, errors.Wrapf(err, "profile %s, field %d", p.Type, i)
		}
		if _, dup := seen[d.Name]; dup {
			return nil, errors.Errorf("profile %s declares field %s twice", p.Type, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return &p, nil
}

func validate(d Descriptor, reg Registry) error {
	if d.Name == "" {
		return errors.New("descriptor is missing an output name")
	}
	sources := 0
	if d.Static != nil {
		sources++
	}
	if d.Extractor != "" {
		sources++
	}
	if d.Tag != "" {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("field %s must declare exactly one of static, extractor or tag", d.Name)
	}
	if d.Subfield != "" {
		if d.Tag == "" {
			return fmt.Errorf("field %s declares a subfield without a tag", d.Name)
		}
		if len(d.Subfield) != 1 {
			return fmt.Errorf("field %s subfield must be a single character", d.Name)
		}
	}
	if d.Extractor != "" {
		if _, ok := reg[d.Extractor]; !ok {
			return fmt.Errorf("field %s names unknown extractor %q", d.Name, d.Extractor)
		}
	}
	return nil
}
