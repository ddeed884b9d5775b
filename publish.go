package indexer

import (
	"context"
	"fmt"
	"time"
)

// Admin is the slice of the index service the publish coordinator needs.
type Admin interface {
	Reload(ctx context.Context, core string) error
	Swap(ctx context.Context, core, other string) error
	Commit(ctx context.Context, core string) error
	DeleteByQuery(ctx context.Context, core, query string) error
}

// PublishError is a failed reload or swap. It blocks publishing but leaves
// the staging generation intact, so a later run can retry cleanly.
type PublishError struct {
	Op  string
	Err error
}

func (e PublishError) Error() string {
	return fmt.Sprintf("publish %s failed: %v", e.Op, e.Err)
}

func (e PublishError) Unwrap() error {
	return e.Err
}

// Publisher coordinates the zero-downtime republish: commit and reload the
// freshly written staging generation, then atomically swap it into the live
// position - but only when every record type of the run succeeded.
type Publisher struct {
	// AdminTimeout bounds each reload/swap call. A hung admin call must not
	// hang a deployment.
	AdminTimeout time.Duration
	Log          Logger

	admin     Admin
	staging   string
	live      string
	namespace string
}

func NewPublisher(admin Admin, staging, live, namespace string) *Publisher {
	return &Publisher{
		AdminTimeout: 2 * time.Minute,
		Log:          NopLogger{},
		admin:        admin,
		staging:      staging,
		live:         live,
		namespace:    namespace,
	}
}

// Publish gates the swap on the per-record-type success flags, combined with
// logical AND: a run with any failing record type is never swapped in.
func (p *Publisher) Publish(ctx context.Context, results map[string]bool, swapRequested bool) error {
	// no record types ran, so the staging generation holds nothing new
	if len(results) == 0 {
		p.Log.Printf("no record types ran; staging generation will not be published")
		return nil
	}
	for typ, ok := range results {
		if !ok {
			p.Log.Printf("record type %s failed; staging generation will not be published", typ)
			return nil
		}
	}
	if err := p.bounded(ctx, "commit", func(ctx context.Context) error {
		return p.admin.Commit(ctx, p.staging)
	}); err != nil {
		return err
	}
	if !swapRequested {
		p.Log.Printf("swap not requested; staging generation left in place")
		return nil
	}
	if err := p.bounded(ctx, "reload", func(ctx context.Context) error {
		return p.admin.Reload(ctx, p.staging)
	}); err != nil {
		return err
	}
	if err := p.bounded(ctx, "swap", func(ctx context.Context) error {
		return p.admin.Swap(ctx, p.staging, p.live)
	}); err != nil {
		return err
	}
	p.Log.Printf("swapped %s into %s", p.staging, p.live)
	return nil
}

// Clean deletes every staged document tagged with the project namespace,
// leaving other namespaces sharing the index untouched.
func (p *Publisher) Clean(ctx context.Context) error {
	query := NamespaceField + ":" + p.namespace
	if err := p.admin.DeleteByQuery(ctx, p.staging, query); err != nil {
		return PublishError{Op: "clean", Err: err}
	}
	p.Log.Printf("emptied namespace %s in %s", p.namespace, p.staging)
	return nil
}

func (p *Publisher) bounded(ctx context.Context, op string, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.AdminTimeout)
	defer cancel()
	if err := call(ctx); err != nil {
		return PublishError{Op: op, Err: err}
	}
	return nil
}
