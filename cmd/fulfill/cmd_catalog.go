package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/scenario"
	"github.com/funvibe/fulfill/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <scenario.yaml>...",
	Short: "Store the declarations of scenarios in the impl catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the impl catalog",
	Args:  cobra.NoArgs,
	RunE:  runDump,
}

func runImport(cmd *cobra.Command, args []string) error {
	catalog, err := store.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer catalog.Close()

	for _, path := range args {
		s, err := scenario.Load(path)
		if err != nil {
			return err
		}
		batch, err := catalog.Import(s, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Info("imported", zap.String("scenario", path), zap.String("batch", batch), zap.Int("impls", len(s.Impls)))
	}
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	catalog, err := store.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer catalog.Close()

	batches, err := catalog.Batches()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH\tSOURCE\tIMPORTED\tIMPLS")
	for _, b := range batches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", b.ID, b.Source, b.ImportedAt, b.Impls)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	specs, err := catalog.Specs()
	if err != nil {
		return err
	}
	data, err := specs.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s", data)
	return nil
}
