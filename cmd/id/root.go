package id

import (
	"fmt"
	"github.com/ValentinKolb/dDocs/cmd/util"
	"github.com/ValentinKolb/dDocs/lib/store"
	"github.com/spf13/cobra"
)

var (
	count int

	// IDCmd generates document ids for a type
	IDCmd = &cobra.Command{
		Use:   "id [type]",
		Short: "Generate document ids for a type",
		Long:  "Generate one or more document ids for a type name using the Hi-Lo scheme. Unused ids of the reserved range are returned to the server on exit.",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags
	util.SetupClientFlags(IDCmd)

	// Add flags specific to id generation
	IDCmd.Flags().IntVarP(&count, "count", "n", 1, "How many ids to generate")
}

func run(cmd *cobra.Command, args []string) error {
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
	documentStore, err := store.New(store.Config{
		Client:     *util.GetClientConfig(),
		Serializer: s,
	}).Initialize()
	if err != nil {
		return err
	}

	// Generate the ids
	for i := 0; i < count; i++ {
		generated, err := documentStore.GenerateIDForType(cmd.Context(), nil, args[0], "")
		if err != nil {
			return err
		}
		fmt.Println(generated)
	}

	// Return the unused part of the reserved range
	return documentStore.Close(cmd.Context())
}
