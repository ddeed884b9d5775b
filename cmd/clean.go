package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/rism-digital/muscatplus-indexer/run"
)

func NewCleanCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	main := run.NewMain()
	cleanCommand := &cobra.Command{
		Use:   "clean",
		Short: "clean - delete the project namespace from the staging core",
		Long: `Deletes every document carrying this project's namespace from the
staging core. Documents written by other projects sharing the core are
left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return main.Clean(cmd.Context())
		},
	}
	flags := cleanCommand.Flags()
	flags.StringVarP(&main.SolrURL, "solr", "s", main.SolrURL, "Base URL of the search index service.")
	flags.StringVar(&main.StagingCore, "staging-core", main.StagingCore, "Index core to clean.")
	flags.StringVar(&main.Namespace, "namespace", main.Namespace, "Project namespace whose documents are deleted.")
	flags.BoolVarP(&main.Verbose, "verbose", "v", main.Verbose, "Enable debug logging.")
	flags.String("config", "", "Configuration file to read (TOML).")

	return cleanCommand
}

func init() {
	subcommandFns["clean"] = NewCleanCommand
}
