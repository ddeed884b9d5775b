// Package records holds one document builder per record type. Each builder
// pairs a declarative profile (embedded YAML) with a compile-time registry of
// named extractor functions, and turns one source row into the documents
// submitted to the index.
package records

import (
	"embed"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	indexer "github.com/rism-digital/muscatplus-indexer"
	"github.com/rism-digital/muscatplus-indexer/dates"
	"github.com/rism-digital/muscatplus-indexer/linker"
	"github.com/rism-digital/muscatplus-indexer/marc"
	"github.com/rism-digital/muscatplus-indexer/profile"
	"github.com/rism-digital/muscatplus-indexer/solr"
)

//go:embed profiles/*.yml
var profileFS embed.FS

// marcColumn is the source column holding the raw tagged-field record blob.
const marcColumn = "marc_source"

// Services are the read-only collaborators extractors close over. They are
// shared across all workers of a run without synchronization.
type Services struct {
	Dates     *dates.Normalizer
	Links     *linker.Table
	Namespace string
	Log       indexer.Logger
}

// expandFunc derives additional documents from the same row, e.g. the
// holdings attached to a printed source.
type expandFunc func(c *profile.Context) ([]solr.Document, error)

// Builder implements indexer.DocumentBuilder for one record type.
type Builder struct {
	typ       string
	profile   *profile.Profile
	engine    *profile.Engine
	namespace string
	expand    expandFunc
}

func newBuilder(svc Services, typ, file string, reg profile.Registry, expand expandFunc) (*Builder, error) {
	data, err := profileFS.ReadFile("profiles/" + file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s profile", typ)
	}
	p, err := profile.Load(data, reg)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s profile", typ)
	}
	log := svc.Log
	if log == nil {
		log = indexer.NopLogger{}
	}
	return &Builder{
		typ:       typ,
		profile:   p,
		engine:    profile.NewEngine(reg, log),
		namespace: svc.Namespace,
		expand:    expand,
	}, nil
}

// Build parses the row's record blob and applies the type's profile. A
// malformed blob or a missing required field fails this row only.
func (b *Builder) Build(row indexer.Row) ([]solr.Document, error) {
	blob, _ := row[marcColumn].(string)
	rec, err := marc.Parse(blob)
	if err != nil {
		return nil, err
	}
	c := &profile.Context{
		RecordID: fmt.Sprintf("%s_%s", b.typ, row.ID()),
		Record:   rec,
		Row:      row,
	}
	doc, err := b.engine.Apply(b.profile, c)
	if err != nil {
		return nil, err
	}
	doc[indexer.NamespaceField] = b.namespace
	docs := []solr.Document{doc}
	if b.expand != nil {
		kids, err := b.expand(c)
		if err != nil {
			return nil, err
		}
		for _, kid := range kids {
			kid[indexer.NamespaceField] = b.namespace
		}
		docs = append(docs, kids...)
	}
	return docs, nil
}

// recordID is the extractor behind every profile's required id field.
func recordID(c *profile.Context) (any, error) {
	return c.RecordID, nil
}

// yearsOf flattens a normalized range into the (possibly empty) list of
// resolved bounds.
func yearsOf(r dates.YearRange) []int {
	var out []int
	if r.Start != nil {
		out = append(out, *r.Start)
	}
	if r.End != nil {
		out = append(out, *r.End)
	}
	return out
}

// splitBlobs cuts a column holding several concatenated record blobs at
// blank lines.
func splitBlobs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "\n\n") {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}
