package docs

import (
	"github.com/ValentinKolb/dDocs/cmd/util"
	"github.com/ValentinKolb/dDocs/lib/store"
	"github.com/spf13/cobra"
)

var (
	documentStore *store.DocumentStore

	// DocumentCommands represents the docs command group
	DocumentCommands = &cobra.Command{
		Use:               "docs",
		Short:             "Perform document operations",
		PersistentPreRunE: setupStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the docs command
	util.SetupClientFlags(DocumentCommands)

	// Add subcommands
	DocumentCommands.AddCommand(putCmd)
	DocumentCommands.AddCommand(getCmd)
	DocumentCommands.AddCommand(delCmd)
	DocumentCommands.AddCommand(hasCmd)
	DocumentCommands.AddCommand(statsCmd)
	DocumentCommands.AddCommand(pingCmd)
}

// setupStore creates and initializes the document store client
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get serializer
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	// Create and initialize the store
	documentStore, err = store.New(store.Config{
		Client:     *util.GetClientConfig(),
		Serializer: s,
	}).Initialize()

	return err
}
