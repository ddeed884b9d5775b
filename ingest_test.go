package indexer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/rism-digital/muscatplus-indexer/solr"
)

// sliceCursor pages rows out of a fixed slice.
type sliceCursor struct {
	rows []Row
	page int
	pos  int
	num  int
}

func (c *sliceCursor) Next(ctx context.Context) (*Batch, error) {
	if c.pos >= len(c.rows) {
		return nil, io.EOF
	}
	end := c.pos + c.page
	if end > len(c.rows) {
		end = len(c.rows)
	}
	c.num++
	b := &Batch{Num: c.num, Rows: c.rows[c.pos:end]}
	c.pos = end
	return b, nil
}

type recordError struct{ id string }

func (e recordError) Error() string { return "record " + e.id + " is broken" }

// failingBuilder fails for the ids in bad and builds one document otherwise.
type failingBuilder struct {
	bad map[string]bool
}

func (b failingBuilder) Build(row Row) ([]solr.Document, error) {
	id := row.ID()
	if b.bad[id] {
		return nil, recordError{id: id}
	}
	return []solr.Document{{"id": "source_" + id}}, nil
}

// memIndexer collects every submitted document, optionally failing a chosen
// Add call.
type memIndexer struct {
	mu       sync.Mutex
	docs     []solr.Document
	calls    int
	failCall int
}

func (m *memIndexer) Add(ctx context.Context, docs []solr.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failCall != 0 && m.calls == m.failCall {
		return fmt.Errorf("bulk write refused")
	}
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *memIndexer) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.docs))
	for i, d := range m.docs {
		out[i] = d.ID()
	}
	sort.Strings(out)
	return out
}

func rows(n int) []Row {
	out := make([]Row, n)
	for i := range out {
		out[i] = Row{"id": strconv.Itoa(i + 1)}
	}
	return out
}

func TestRunDropsFailingRecordsOnly(t *testing.T) {
	src := &sliceCursor{rows: rows(500), page: 100}
	bad := map[string]bool{"7": true, "123": true, "499": true}
	idx := &memIndexer{}

	ing := NewIngester(src, failingBuilder{bad: bad}, idx)
	ing.Concurrency = 4
	ok, err := ing.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ok {
		t.Fatalf("per-record drops must not fail the record type")
	}
	got := idx.ids()
	if len(got) != 497 {
		t.Fatalf("expected 497 documents, got %d", len(got))
	}
	for id := range bad {
		i := sort.SearchStrings(got, "source_"+id)
		if i < len(got) && got[i] == "source_"+id {
			t.Fatalf("document for failing record %s was submitted", id)
		}
	}
}

func TestRunSubmissionFailureMarksTypeFailed(t *testing.T) {
	src := &sliceCursor{rows: rows(30), page: 10}
	idx := &memIndexer{failCall: 2}

	ing := NewIngester(src, failingBuilder{}, idx)
	ing.Concurrency = 1
	ok, err := ing.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ok {
		t.Fatalf("a failed bulk write must mark the record type failed")
	}
	// sibling batches still submitted
	if len(idx.ids()) != 20 {
		t.Fatalf("expected 20 documents from the surviving batches, got %d", len(idx.ids()))
	}
}

func TestRunDryRun(t *testing.T) {
	src := &sliceCursor{rows: rows(25), page: 10}
	idx := &memIndexer{}

	ing := NewIngester(src, failingBuilder{}, idx)
	ing.DryRun = true
	ok, err := ing.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ok {
		t.Fatalf("dry run must succeed")
	}
	if idx.calls != 0 {
		t.Fatalf("dry run must not touch the index, saw %d calls", idx.calls)
	}
}

type failingCursor struct{}

func (failingCursor) Next(ctx context.Context) (*Batch, error) {
	return nil, fmt.Errorf("connection lost")
}

func TestRunCursorFailure(t *testing.T) {
	ing := NewIngester(failingCursor{}, failingBuilder{}, &memIndexer{})
	ok, err := ing.Run(context.Background())
	if err == nil || ok {
		t.Fatalf("cursor failure must fail the run: ok=%v err=%v", ok, err)
	}
}
