// Package importcmd folds a platform statement export into the unified
// ledger: raw rows are mapped to the canonical shape, then merged and
// deduplicated against the existing ledger.
package importcmd

import (
	"fmt"

	"ledgerunify/cmd/root"
	"ledgerunify/internal/csvio"
	"ledgerunify/internal/logging"
	"ledgerunify/internal/mapper"
	"ledgerunify/internal/merger"
	"ledgerunify/internal/models"
	"ledgerunify/internal/store"

	"github.com/spf13/cobra"
)

var (
	inputFile  string
	platform   string
	strictRows bool

	// Cmd is the import command.
	Cmd = &cobra.Command{
		Use:   "import",
		Short: "Import a statement export into the unified ledger",
		Long: `Import reads pre-parsed statement rows from a CSV file, maps them to the
canonical transaction shape using the platform's field mapping, and merges
them into the ledger, removing duplicates.`,
		RunE: runImport,
	}
)

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "CSV file of raw statement rows")
	Cmd.Flags().StringVarP(&platform, "platform", "p", "", "Source platform of the rows")
	Cmd.Flags().BoolVar(&strictRows, "strict", false, "Abort the whole import when any row fails to map")
	_ = Cmd.MarkFlagRequired("input")
	_ = Cmd.MarkFlagRequired("platform")
}

func runImport(cmd *cobra.Command, args []string) error {
	log := root.Log

	mappingStore := store.NewMappingStore(root.SharedFlags.Mappings, log)
	mappings, err := mappingStore.LoadMappings()
	if err != nil {
		return err
	}

	mapping, ok := mappings[models.SourcePlatform(platform)]
	if !ok {
		return fmt.Errorf("no field mapping configured for platform %q", platform)
	}

	rows, err := csvio.ReadRawRows(inputFile)
	if err != nil {
		return err
	}

	transactions, rowErrs := mapper.New(log).MapRows(rows, mapping)
	if len(rowErrs) > 0 && strictRows {
		return fmt.Errorf("import aborted: %d of %d rows failed to map (first: %w)",
			len(rowErrs), len(rows), rowErrs[0])
	}

	existing, err := csvio.ReadLedger(root.SharedFlags.Ledger)
	if err != nil {
		return err
	}

	m := merger.New(root.Cfg.DedupTolerance(), log)
	merged := m.Merge(existing, transactions)

	if err := csvio.WriteLedger(root.SharedFlags.Ledger, merged); err != nil {
		return err
	}

	log.Info("Import complete",
		logging.Field{Key: "platform", Value: platform},
		logging.Field{Key: "rows", Value: len(rows)},
		logging.Field{Key: "skipped", Value: len(rowErrs)},
		logging.Field{Key: "ledger", Value: len(merged)})
	return nil
}
