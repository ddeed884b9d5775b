package indexer

import (
	"context"
	"fmt"

	"github.com/rism-digital/muscatplus-indexer/solr"
)

// NamespaceField is the document field carrying the project namespace. Clean
// and republish operations are scoped to it so that other projects sharing
// the same index are never touched.
const NamespaceField = "project_s"

// Row is one raw source row, keyed by column name.
type Row map[string]any

// ID renders the row's primary key for logging and document ids.
func (r Row) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Batch is one page of source rows: produced once by a Cursor, consumed
// exactly once by one worker, discarded after document extraction.
type Batch struct {
	Num  int
	Rows []Row
}

// Cursor yields bounded batches of source rows. Next returns io.EOF when the
// source is exhausted. Implementations need not be safe for concurrent use;
// the pipeline calls Next from a single goroutine.
type Cursor interface {
	Next(ctx context.Context) (*Batch, error)
}

// DocumentBuilder turns one source row into index documents. A single row may
// yield several documents (a printed source expands to one document per
// attached holding). Errors are scoped to the row: the caller drops the row
// and continues.
type DocumentBuilder interface {
	Build(row Row) ([]solr.Document, error)
}

// Indexer submits documents to the search index. Implementations should be
// safe for concurrent use; one bulk write happens per batch.
type Indexer interface {
	Add(ctx context.Context, docs []solr.Document) error
}
