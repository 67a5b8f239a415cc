package main

import (
	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"coll"},
	Short:   "Manage indexed document collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections and their chunk counts",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsList,
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete [name...]",
	Short: "Delete one or more collections",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCollectionsDelete,
}

func init() {
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	colls := store.ListCollections()
	if len(colls) == 0 {
		cmd.Println("No collections.")
		return nil
	}
	for _, c := range colls {
		cmd.Printf("%s\t%d chunks\n", c.Name, c.Count)
	}
	return nil
}

func runCollectionsDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	for _, name := range args {
		if err := store.DeleteCollection(name); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", name)
	}
	return nil
}
