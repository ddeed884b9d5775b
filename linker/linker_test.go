package linker

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	indexer "github.com/rism-digital/muscatplus-indexer"
)

func openTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := Open(filepath.Join(t.TempDir(), "links.db"))
	if err != nil {
		t.Fatalf("opening table: %v", err)
	}
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func TestPutGet(t *testing.T) {
	tbl := openTable(t)
	if err := tbl.Put("D-B", "institution_12"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	id, ok := tbl.Get("D-B")
	if !ok || id != "institution_12" {
		t.Fatalf("Get = %q, %v", id, ok)
	}
	if _, ok := tbl.Get("GB-Lbl"); ok {
		t.Fatalf("Get on unknown siglum must miss")
	}
}

type pagedCursor struct {
	batches []*indexer.Batch
	i       int
}

func (c *pagedCursor) Next(ctx context.Context) (*indexer.Batch, error) {
	if c.i >= len(c.batches) {
		return nil, io.EOF
	}
	b := c.batches[c.i]
	c.i++
	return b, nil
}

func TestBuild(t *testing.T) {
	tbl := openTable(t)
	cur := &pagedCursor{batches: []*indexer.Batch{
		{Num: 1, Rows: []indexer.Row{
			{"id": int64(1), "siglum": "D-B"},
			{"id": int64(2), "siglum": ""},
		}},
		{Num: 2, Rows: []indexer.Row{
			{"id": int64(3), "siglum": "GB-Lbl"},
		}},
	}}

	n, err := Build(context.Background(), tbl, cur, "siglum", func(r indexer.Row) string {
		return "institution_" + r.ID()
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n != 2 {
		t.Fatalf("Build wrote %d links", n)
	}
	if id, _ := tbl.Get("GB-Lbl"); id != "institution_3" {
		t.Fatalf("GB-Lbl links to %q", id)
	}
	if _, ok := tbl.Get(""); ok {
		t.Fatalf("empty sigla must not be linked")
	}
}
