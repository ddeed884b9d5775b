// Package run wires the pipeline together for one indexing run: source
// connection pool, date normalizer, cross-source link table, document
// builders, and the publish coordinator. Everything here is constructed
// explicitly at startup and torn down in order when the run ends.
package run

import (
	"context"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	indexer "github.com/rism-digital/muscatplus-indexer"
	"github.com/rism-digital/muscatplus-indexer/dates"
	"github.com/rism-digital/muscatplus-indexer/linker"
	"github.com/rism-digital/muscatplus-indexer/records"
	"github.com/rism-digital/muscatplus-indexer/solr"
	"github.com/rism-digital/muscatplus-indexer/source"
	"github.com/rism-digital/muscatplus-indexer/termstat"
)

// ErrRunFailed is returned when at least one record type failed, so the CLI
// exits non-zero.
var ErrRunFailed = errors.New("one or more record types failed")

// Main holds the configuration for an indexing run. Fields are bound to CLI
// flags by the cmd package.
type Main struct {
	DSN         string
	SolrURL     string
	LiveCore    string
	StagingCore string
	Namespace   string
	LinkDB      string
	BatchSize   int
	Concurrency int
	Include     []string
	Exclude     []string
	ID          int64
	Since       string
	DryRun      bool
	Empty       bool
	SkipSwap    bool
	Verbose     bool
}

func NewMain() *Main {
	return &Main{
		SolrURL:     "http://localhost:8983",
		LiveCore:    "muscat_live",
		StagingCore: "muscat_staging",
		Namespace:   "muscat",
		LinkDB:      "muscat-links.db",
		Concurrency: runtime.NumCPU(),
	}
}

type recordType struct {
	name    string
	builder indexer.DocumentBuilder
	cfg     source.Config
}

// Run executes the full pipeline: build the link table, ingest every
// selected record type, then publish.
func (m *Main) Run(ctx context.Context) error {
	logger := m.logger()

	since, err := m.since()
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, m.DSN)
	if err != nil {
		return errors.Wrap(err, "connecting to source database")
	}
	defer pool.Close()

	norm, err := dates.NewNormalizer()
	if err != nil {
		return err
	}

	links, err := linker.Open(m.LinkDB)
	if err != nil {
		return err
	}
	defer links.Close()

	stats := termstat.NewCollector(os.Stderr, 2*time.Second)
	defer stats.Stop()

	client := solr.NewClient(m.SolrURL)
	pub := indexer.NewPublisher(client, m.StagingCore, m.LiveCore, m.Namespace)
	pub.Log = logger

	if m.Empty && !m.DryRun {
		if err := pub.Clean(ctx); err != nil {
			return err
		}
	}

	// the link table must exist before any source documents are built
	linkCur := source.NewCursor(pool, source.Config{
		Table:    "muscat.institutions",
		Columns:  []string{"id", "siglum"},
		PageSize: m.BatchSize,
	})
	n, err := linker.Build(ctx, links, linkCur, "siglum", func(r indexer.Row) string {
		return "institution_" + r.ID()
	})
	if err != nil {
		return err
	}
	logger.Debugf("linked %d sigla", n)

	svc := records.Services{Dates: norm, Links: links, Namespace: m.Namespace, Log: logger}
	types, err := m.recordTypes(svc)
	if err != nil {
		return err
	}

	writer := solr.CoreWriter{Client: client, Core: m.StagingCore}
	results := map[string]bool{}
	for _, rt := range types {
		if !m.selected(rt.name) {
			continue
		}
		cfg := rt.cfg
		cfg.PageSize = m.BatchSize
		cfg.ID = m.ID
		cfg.Since = since
		ing := indexer.NewIngester(source.NewCursor(pool, cfg), rt.builder, writer)
		ing.Concurrency = m.Concurrency
		ing.DryRun = m.DryRun
		ing.Log = logger
		ing.Stats = stats
		logger.Printf("indexing %s", rt.name)
		ok, err := ing.Run(ctx)
		if err != nil {
			logger.Printf("%s run failed: %v", rt.name, err)
			ok = false
		}
		results[rt.name] = ok
	}

	if !m.DryRun {
		if err := pub.Publish(ctx, results, !m.SkipSwap); err != nil {
			return err
		}
	}
	if anyFailed(results) {
		return ErrRunFailed
	}
	return nil
}

func anyFailed(results map[string]bool) bool {
	for _, ok := range results {
		if !ok {
			return true
		}
	}
	return false
}

// recordTypes lists every indexable record type in run order.
func (m *Main) recordTypes(svc records.Services) ([]recordType, error) {
	institutions, err := records.NewInstitutions(svc)
	if err != nil {
		return nil, err
	}
	people, err := records.NewPeople(svc)
	if err != nil {
		return nil, err
	}
	sources, err := records.NewSources(svc)
	if err != nil {
		return nil, err
	}
	holdings, err := records.NewHoldings(svc)
	if err != nil {
		return nil, err
	}
	return []recordType{
		{"institutions", institutions, source.Config{
			Table:   "muscat.institutions",
			Columns: []string{"id", "marc_source", "siglum"},
		}},
		{"people", people, source.Config{
			Table:   "muscat.people",
			Columns: []string{"id", "marc_source"},
		}},
		{"sources", sources, source.Config{
			Table:   "muscat.sources",
			Columns: []string{"id", "marc_source", "siglum", "holdings_marc"},
		}},
		{"holdings", holdings, source.Config{
			Table:   "muscat.holdings",
			Columns: []string{"id", "marc_source", "source_id"},
		}},
		{"places", records.NewPlaces(svc), source.Config{
			Table:   "muscat.places",
			Columns: []string{"id", "name", "country", "district"},
		}},
		{"subjects", records.NewSubjects(svc), source.Config{
			Table:   "muscat.subjects",
			Columns: []string{"id", "term", "notes"},
		}},
	}, nil
}

// selected applies the include/exclude record-type lists.
func (m *Main) selected(name string) bool {
	for _, ex := range m.Exclude {
		if ex == name {
			return false
		}
	}
	if len(m.Include) == 0 {
		return true
	}
	for _, in := range m.Include {
		if in == name {
			return true
		}
	}
	return false
}

func (m *Main) since() (time.Time, error) {
	if m.Since == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, m.Since); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("cannot parse --since value %q", m.Since)
}

func (m *Main) logger() indexer.Logger {
	l := log.New(os.Stderr, "", log.LstdFlags)
	if m.Verbose {
		return indexer.VerboseLogger{Logger: l}
	}
	return indexer.StdLogger{Logger: l}
}

// Clean empties the project namespace in the staging core without running an
// index pass.
func (m *Main) Clean(ctx context.Context) error {
	client := solr.NewClient(m.SolrURL)
	pub := indexer.NewPublisher(client, m.StagingCore, m.LiveCore, m.Namespace)
	pub.Log = m.logger()
	return pub.Clean(ctx)
}
