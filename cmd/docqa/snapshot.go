package main

import (
	"github.com/spf13/cobra"
)

var exportCompress bool

var exportCmd = &cobra.Command{
	Use:   "export [file] [collection...]",
	Short: "Write collections to a snapshot file",
	Long: `Export writes the given collections, or all of them when none are named,
to a single snapshot file that "import" can load on another machine.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file] [collection...]",
	Short: "Load collections from a snapshot file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportCompress, "gzip", false, "compress the snapshot")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Export(args[0], exportCompress, args[1:]...); err != nil {
		return err
	}
	cmd.Printf("Exported to %s\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Import(args[0], args[1:]...); err != nil {
		return err
	}
	cmd.Printf("Imported %s\n", args[0])
	return nil
}
