package cmd

import (
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/rism-digital/muscatplus-indexer/run"
)

func NewIndexCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	main := run.NewMain()
	indexCommand := &cobra.Command{
		Use:   "index",
		Short: "index - transform catalog records into the staging index and publish",
		Long: `Pages records out of the relational sources, transforms them into
index documents, writes them to the staging core, and - when every record
type succeeds - swaps the staging core into the live position.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if err := main.Run(cmd.Context()); err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := indexCommand.Flags()
	flags.StringVarP(&main.DSN, "dsn", "d", main.DSN, "Connection string for the source database.")
	flags.StringVarP(&main.SolrURL, "solr", "s", main.SolrURL, "Base URL of the search index service.")
	flags.StringVar(&main.StagingCore, "staging-core", main.StagingCore, "Index core written during the run.")
	flags.StringVar(&main.LiveCore, "live-core", main.LiveCore, "Index core serving queries.")
	flags.StringVar(&main.Namespace, "namespace", main.Namespace, "Project namespace stamped on every document.")
	flags.StringVar(&main.LinkDB, "link-db", main.LinkDB, "Path of the cross-source link table file.")
	flags.IntVarP(&main.BatchSize, "batch-size", "b", main.BatchSize, "Rows per page; 0 uses the default page size.")
	flags.IntVarP(&main.Concurrency, "concurrency", "c", main.Concurrency, "Number of batch workers.")
	flags.StringSliceVar(&main.Include, "include", main.Include, "Record types to index; empty means all.")
	flags.StringSliceVar(&main.Exclude, "exclude", main.Exclude, "Record types to skip.")
	flags.Int64Var(&main.ID, "id", main.ID, "Restrict the run to a single source identifier.")
	flags.StringVar(&main.Since, "since", main.Since, "Incremental run: only rows updated at or after this date (RFC3339 or YYYY-MM-DD).")
	flags.BoolVar(&main.Empty, "empty", main.Empty, "Empty the project namespace in the staging core before indexing.")
	flags.BoolVar(&main.SkipSwap, "no-swap", main.SkipSwap, "Leave the staging core in place instead of swapping it live.")
	flags.BoolVar(&main.DryRun, "dry-run", main.DryRun, "Transform everything but write nothing to the index.")
	flags.BoolVarP(&main.Verbose, "verbose", "v", main.Verbose, "Enable debug logging.")
	flags.String("config", "", "Configuration file to read (TOML).")

	return indexCommand
}

func init() {
	subcommandFns["index"] = NewIndexCommand
}
