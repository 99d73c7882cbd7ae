package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dDocs/cmd/docs"
	"github.com/ValentinKolb/dDocs/cmd/id"
	"github.com/ValentinKolb/dDocs/cmd/serve"
	"github.com/ValentinKolb/dDocs/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ddocs",
		Short: "document database client",
		Long: fmt.Sprintf(`dDocs (v%s)

A client for remote document databases with per-database connection
caching, unit-of-work sessions and Hi-Lo identifier generation.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dDocs",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dDocs v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(docs.DocumentCommands)
	RootCmd.AddCommand(id.IDCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
