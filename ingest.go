package indexer

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rism-digital/muscatplus-indexer/solr"
)

// SubmissionError is a failed bulk write. It is scoped to one batch: the
// batch's record type is marked failed, sibling batches proceed unaffected,
// and no retry happens at this layer.
type SubmissionError struct {
	Batch int
	Err   error
}

func (e SubmissionError) Error() string {
	return fmt.Sprintf("submitting batch %d: %v", e.Batch, e.Err)
}

func (e SubmissionError) Unwrap() error {
	return e.Err
}

// Ingester runs the batch pipeline for one record type: a sequential paging
// cursor feeds a bounded worker pool, each worker builds documents for its
// batch and submits them as one bulk write.
type Ingester struct {
	// Concurrency bounds the worker pool. Defaults to the core count; the
	// transform work is CPU-bound.
	Concurrency int
	// DryRun performs every transformation but suppresses the bulk write.
	DryRun bool
	Log    Logger
	Stats  Statter

	src     Cursor
	builder DocumentBuilder
	indexer Indexer
}

func NewIngester(src Cursor, builder DocumentBuilder, indexer Indexer) *Ingester {
	return &Ingester{
		Concurrency: runtime.NumCPU(),
		Log:         NopLogger{},
		Stats:       NopStatter{},
		src:         src,
		builder:     builder,
		indexer:     indexer,
	}
}

// Run drains the cursor. It returns the record type's success flag: false
// when any batch's bulk write failed, never because individual records were
// dropped. The error return is reserved for source fetch failures.
func (n *Ingester) Run(ctx context.Context) (bool, error) {
	run := uuid.NewString()[:8]
	ok := &atomic.Bool{}
	ok.Store(true)

	g := &errgroup.Group{}
	g.SetLimit(n.Concurrency)
	var fetchErr error
	for {
		batch, err := n.src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			fetchErr = errors.Wrap(err, "fetching batch")
			break
		}
		if len(batch.Rows) == 0 {
			continue
		}
		g.Go(func() error {
			n.processBatch(ctx, run, batch, ok)
			return nil
		})
	}
	_ = g.Wait()
	if fetchErr != nil {
		return false, fetchErr
	}
	return ok.Load(), nil
}

func (n *Ingester) processBatch(ctx context.Context, run string, batch *Batch, ok *atomic.Bool) {
	docs := make([]solr.Document, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		ds, err := n.builder.Build(row)
		if err != nil {
			// record-scoped by contract: drop the record, keep the batch
			n.Log.Printf("run %s: dropping record %s: %v", run, row.ID(), err)
			n.Stats.Count("records.dropped", 1, 1)
			continue
		}
		docs = append(docs, ds...)
		n.Stats.Count("records.built", 1, 1)
	}
	if len(docs) == 0 {
		return
	}
	if n.DryRun {
		n.Log.Debugf("run %s: dry run, skipping submission of batch %d (%d docs)", run, batch.Num, len(docs))
		n.Stats.Count("batches.skipped", 1, 1)
		return
	}
	if err := n.indexer.Add(ctx, docs); err != nil {
		n.Log.Printf("run %s: %v", run, SubmissionError{Batch: batch.Num, Err: err})
		n.Stats.Count("batches.failed", 1, 1)
		ok.Store(false)
		return
	}
	n.Stats.Count("batches.submitted", 1, 1)
	n.Stats.Count("documents.submitted", int64(len(docs)), 1)
}
