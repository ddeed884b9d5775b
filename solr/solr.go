// Package solr is a thin client for the parts of the Solr HTTP API the
// indexing pipeline needs: bulk document writes, delete-by-query, and the
// core-admin reload/swap operations that back zero-downtime publishing.
package solr

// Document is one unit of submission to the index: output field name to
// scalar, list of scalars, or serialized nested structure. Every document
// carries a globally unique "id".
type Document map[string]any

// ID returns the document's id field, or "" when unset.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}
