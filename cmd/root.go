package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/starpipe/starpipe/config"
	"github.com/starpipe/starpipe/logger"
)

var (
	// Default values may be set at compile time.
	version   = "0.1.0"
	buildDate = "2021-01-02T03:04+0500"

	logLevel         string
	stackDumpOnPanic bool
	connectionsFile  string
)

var rootCmd = &cobra.Command{
	Use: "sp",
	Long: `
         __                       .__
  ______/  |______ _____________  |__|_____   ____
 /  ___\   __\__  \\_  __ \____ \ |  |\____ \_/ __ \
 \___ \ |  |  / __ \|  | \/  |_> >|  ||  |_> >  ___/
/____  >|__| (____  /__|  |   __/ |__||   __/ \___  >
     \/           \/      |__|        |__|        \/

Starpipe loads the retail data warehouse. It pulls the legacy datasets from
their scattered sources (Postgres, PDF, REST API, S3, JSON), cleans each one
and writes the result to the star-schema tables in Postgres.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: error|warn|info|debug|trace")
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	rootCmd.PersistentFlags().StringVar(&connectionsFile, "connections-file", "", "Connections `<file>` (default: "+config.Connections.FullPath+")")
	_ = rootCmd.MarkPersistentFlagFilename("connections-file", "yaml")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// newLogger builds the logger for one command run using the global flags.
func newLogger() logger.Logger {
	return logger.NewLogger("starpipe", logLevel, stackDumpOnPanic)
}

// getConnectionsFile resolves the connections file for this run.
func getConnectionsFile() *config.File {
	if connectionsFile != "" { // if the user overrides the default path...
		config.SetConnectionsFile(connectionsFile)
	}
	return config.Connections
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
