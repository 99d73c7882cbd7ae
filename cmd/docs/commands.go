package docs

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [id] [json]",
		Short: "Stores a document under an id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			document := args[1]

			// Validate the payload before sending it
			if !json.Valid([]byte(document)) {
				return fmt.Errorf("document is not valid json")
			}

			sess, err := documentStore.OpenSession()
			if err != nil {
				return err
			}
			if _, err := sess.Store(cmd.Context(), json.RawMessage(document), id); err != nil {
				return err
			}
			if err := sess.SaveChanges(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Loads a document by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			sess, err := documentStore.OpenSession()
			if err != nil {
				return err
			}
			var document json.RawMessage
			found, err := sess.Load(cmd.Context(), id, &document)
			if err != nil {
				return err
			}
			fmt.Printf("id=%s, found=%v, document=%s\n", id, found, document)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [id]",
		Short: "Deletes a document by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			sess, err := documentStore.OpenSession()
			if err != nil {
				return err
			}
			sess.Delete(id)
			if err := sess.SaveChanges(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [id]",
		Short: "Checks if a document exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			ch, err := documentStore.GetChannel("")
			if err != nil {
				return err
			}
			resp, err := ch.Execute(cmd.Context(), common.NewHasRequest(id))
			if err != nil {
				return err
			}
			fmt.Printf("id=%s, found=%t\n", id, resp.Ok)
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Prints the statistics of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := documentStore.Operations()
			if err != nil {
				return err
			}
			stats, err := ops.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("documents=%d\n", stats.Documents)
			return nil
		},
	}
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks that the database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := documentStore.Operations()
			if err != nil {
				return err
			}
			if err := ops.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("pong")
			return nil
		},
	}
)
