package records

import (
	"fmt"

	indexer "github.com/rism-digital/muscatplus-indexer"
	"github.com/rism-digital/muscatplus-indexer/solr"
)

// The reference tables (places, subjects) carry no record blob; their rows
// map straight onto small documents.

// RowMapper is a one-shot row-to-document builder for a reference table.
type RowMapper struct {
	Type      string
	Namespace string
	// Columns maps output field names to source column names.
	Columns map[string]string
}

// Build implements indexer.DocumentBuilder.
func (m RowMapper) Build(row indexer.Row) ([]solr.Document, error) {
	doc := solr.Document{
		"id":     fmt.Sprintf("%s_%s", m.Type, row.ID()),
		"type_s": m.Type,
	}
	doc[indexer.NamespaceField] = m.Namespace
	for field, col := range m.Columns {
		if v, ok := row[col].(string); ok && v != "" {
			doc[field] = v
		}
	}
	return []solr.Document{doc}, nil
}

// NewPlaces maps the places reference table.
func NewPlaces(svc Services) RowMapper {
	return RowMapper{
		Type:      "place",
		Namespace: svc.Namespace,
		Columns: map[string]string{
			"name_s":     "name",
			"country_s":  "country",
			"district_s": "district",
		},
	}
}

// NewSubjects maps the subject-heading reference table.
func NewSubjects(svc Services) RowMapper {
	return RowMapper{
		Type:      "subject",
		Namespace: svc.Namespace,
		Columns: map[string]string{
			"term_s":  "term",
			"notes_s": "notes",
		},
	}
}
