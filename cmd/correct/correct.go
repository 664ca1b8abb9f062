// Package correct records a manual category relabel for one transaction.
package correct

import (
	"fmt"

	"ledgerunify/cmd/root"
	"ledgerunify/internal/categorizer"
	"ledgerunify/internal/csvio"
	"ledgerunify/internal/logging"
	"ledgerunify/internal/store"

	"github.com/spf13/cobra"
)

var (
	transactionID string
	newCategory   string

	// Cmd is the correct command.
	Cmd = &cobra.Command{
		Use:   "correct",
		Short: "Manually relabel a transaction's category",
		Long: `Correct appends a record to the correction log and sets the transaction's
category with manual provenance. Manual assignments are sticky: re-imports
and re-classification will not overwrite them, and future transactions with
the same counterparty inherit the corrected category.`,
		RunE: runCorrect,
	}
)

func init() {
	Cmd.Flags().StringVar(&transactionID, "id", "", "Transaction ID to relabel")
	Cmd.Flags().StringVarP(&newCategory, "category", "c", "", "New category")
	_ = Cmd.MarkFlagRequired("id")
	_ = Cmd.MarkFlagRequired("category")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	log := root.Log
	cfg := root.Cfg

	transactions, err := csvio.ReadLedger(root.SharedFlags.Ledger)
	if err != nil {
		return err
	}

	idx := -1
	for i := range transactions {
		if transactions[i].ID == transactionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("transaction %q not found in ledger %s", transactionID, root.SharedFlags.Ledger)
	}

	corrections := store.NewCorrectionStore(cfg.Data.CorrectionsFile, log)
	if _, err := corrections.Load(); err != nil {
		return err
	}

	cat := categorizer.New(nil, nil, corrections, categorizer.Options{
		DefaultCategory: cfg.Categorization.DefaultCategory,
	}, log)

	if err := cat.RecordCorrection(&transactions[idx], newCategory); err != nil {
		return err
	}

	if err := csvio.WriteLedger(root.SharedFlags.Ledger, transactions); err != nil {
		return err
	}

	log.Info("Correction recorded",
		logging.Field{Key: "transaction", Value: transactionID},
		logging.Field{Key: "category", Value: newCategory})
	return nil
}
