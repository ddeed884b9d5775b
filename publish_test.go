package indexer

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

type fakeAdmin struct {
	ops     []string
	failOp  string
	queries []string
}

func (f *fakeAdmin) op(name string) error {
	if name == f.failOp {
		return fmt.Errorf("%s refused", name)
	}
	f.ops = append(f.ops, name)
	return nil
}

func (f *fakeAdmin) Reload(ctx context.Context, core string) error {
	return f.op("reload " + core)
}

func (f *fakeAdmin) Swap(ctx context.Context, core, other string) error {
	return f.op("swap " + core + " " + other)
}

func (f *fakeAdmin) Commit(ctx context.Context, core string) error {
	return f.op("commit " + core)
}

func (f *fakeAdmin) DeleteByQuery(ctx context.Context, core, query string) error {
	f.queries = append(f.queries, query)
	return f.op("delete " + core)
}

func TestPublishAllSucceeded(t *testing.T) {
	admin := &fakeAdmin{}
	p := NewPublisher(admin, "staging", "live", "muscat")

	err := p.Publish(context.Background(), map[string]bool{"sources": true, "people": true}, true)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := []string{"commit staging", "reload staging", "swap staging live"}
	if !reflect.DeepEqual(admin.ops, want) {
		t.Fatalf("publish ops = %v", admin.ops)
	}
}

func TestPublishNeverSwapsFailedRun(t *testing.T) {
	admin := &fakeAdmin{}
	p := NewPublisher(admin, "staging", "live", "muscat")

	err := p.Publish(context.Background(), map[string]bool{"sources": true, "people": false}, true)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(admin.ops) != 0 {
		t.Fatalf("a failed run must not reach the index admin, saw %v", admin.ops)
	}
}

func TestPublishEmptyRun(t *testing.T) {
	admin := &fakeAdmin{}
	p := NewPublisher(admin, "staging", "live", "muscat")

	if err := p.Publish(context.Background(), map[string]bool{}, true); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(admin.ops) != 0 {
		t.Fatalf("a run with no record types must not reach the index admin, saw %v", admin.ops)
	}
}

func TestPublishSwapNotRequested(t *testing.T) {
	admin := &fakeAdmin{}
	p := NewPublisher(admin, "staging", "live", "muscat")

	if err := p.Publish(context.Background(), map[string]bool{"sources": true}, false); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !reflect.DeepEqual(admin.ops, []string{"commit staging"}) {
		t.Fatalf("skip-swap must stop after the commit, saw %v", admin.ops)
	}
}

func TestPublishReloadFailureBlocksSwap(t *testing.T) {
	admin := &fakeAdmin{failOp: "reload staging"}
	p := NewPublisher(admin, "staging", "live", "muscat")

	err := p.Publish(context.Background(), map[string]bool{"sources": true}, true)
	pe, ok := err.(PublishError)
	if !ok {
		t.Fatalf("expected PublishError, got %v", err)
	}
	if pe.Op != "reload" {
		t.Fatalf("PublishError op = %q", pe.Op)
	}
	for _, op := range admin.ops {
		if op == "swap staging live" {
			t.Fatalf("swap must not run after a failed reload")
		}
	}
}

func TestClean(t *testing.T) {
	admin := &fakeAdmin{}
	p := NewPublisher(admin, "staging", "live", "muscat")

	if err := p.Clean(context.Background()); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if !reflect.DeepEqual(admin.queries, []string{"project_s:muscat"}) {
		t.Fatalf("clean queries = %v", admin.queries)
	}
}
