package cmd

import (
	"github.com/spf13/cobra"
	"github.com/starpipe/starpipe/actions"
	"github.com/starpipe/starpipe/load"
)

var (
	writeModeStr  string
	strictWeights bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract, clean and load one retail entity into the warehouse",
	Long: `Extract one retail dataset from its source, run the entity's cleaning
pipeline and persist the result to its warehouse table.

Sources and credentials come from the connections file. Each entity knows its
own source and target table; pick the write mode to control what happens when
the target table already exists.`,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.PersistentFlags().StringVar(&writeModeStr, "mode", "replace", "Write mode: replace|append|fail")
	ingestCmd.PersistentFlags().BoolVar(&strictWeights, "strict-weights", false, "Abort on unrecognised product weight values instead of nulling them")
	for _, name := range actions.EntityNames() {
		ingestCmd.AddCommand(newEntityCmd(name, actions.IngestActions[name]))
	}
}

func newEntityCmd(name string, action actions.IngestAction) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: "Ingest " + name + ": " + action.Description,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(name)
		},
	}
}

func runIngest(entity string) error {
	mode, err := load.ParseMode(writeModeStr)
	if err != nil {
		return err
	}
	cfg := &actions.IngestConfig{
		Log:           newLogger(),
		Connections:   getConnectionsFile(),
		WriteMode:     mode,
		StrictWeights: strictWeights,
	}
	return actions.RunIngestAction(entity, cfg)
}
