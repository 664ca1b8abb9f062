// Package classify assigns a category to every transaction in the ledger
// through the rule-then-AI pipeline.
package classify

import (
	"context"

	"ledgerunify/cmd/root"
	"ledgerunify/internal/ai"
	"ledgerunify/internal/categorizer"
	"ledgerunify/internal/csvio"
	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"
	"ledgerunify/internal/rules"
	"ledgerunify/internal/store"

	"github.com/spf13/cobra"
)

var (
	rerun bool

	// Cmd is the classify command.
	Cmd = &cobra.Command{
		Use:   "classify",
		Short: "Categorize every transaction in the ledger",
		Long: `Classify runs the hybrid pipeline over the ledger: manual-correction
history first, then keyword/pattern rules, then the AI adapter if enabled,
then the default category. Manually corrected transactions are not
overwritten unless --rerun is given.`,
		RunE: runClassify,
	}
)

func init() {
	Cmd.Flags().BoolVar(&rerun, "rerun", false, "Re-run rules and AI even for manually corrected transactions")
}

func runClassify(cmd *cobra.Command, args []string) error {
	log := root.Log
	cfg := root.Cfg
	ctx := cmd.Context()

	ruleStore := store.NewRuleStore(cfg.Data.RulesFile, log)
	configured, err := ruleStore.LoadRules()
	if err != nil {
		return err
	}
	ruleSet, err := rules.Compile(configured)
	if err != nil {
		return err
	}

	corrections := store.NewCorrectionStore(cfg.Data.CorrectionsFile, log)
	if _, err := corrections.Load(); err != nil {
		return err
	}

	var aiClient ai.Client
	if cfg.AI.Enabled {
		gemini, err := ai.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, log)
		if err != nil {
			log.WithError(err).Warn("AI adapter unavailable, continuing without it")
		} else {
			defer func() { _ = gemini.Close() }()
			aiClient = gemini
		}
	}

	cat := categorizer.New(ruleSet, aiClient, corrections, categorizer.Options{
		AIEnabled:         cfg.AI.Enabled,
		AITimeout:         cfg.AITimeout(),
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		MaxInFlight:       cfg.AI.MaxInFlight,
		DefaultCategory:   cfg.Categorization.DefaultCategory,
		RuleConfidence:    cfg.Categorization.RuleConfidence,
	}, log)

	transactions, err := csvio.ReadLedger(root.SharedFlags.Ledger)
	if err != nil {
		return err
	}

	results := classifyAll(ctx, cat, transactions)
	for i := range transactions {
		results[i].Apply(&transactions[i])
	}

	if err := csvio.WriteLedger(root.SharedFlags.Ledger, transactions); err != nil {
		return err
	}

	log.Info("Classification complete",
		logging.Field{Key: "transactions", Value: len(transactions)},
		logging.Field{Key: "rerun", Value: rerun})
	return nil
}

func classifyAll(ctx context.Context, cat *categorizer.Categorizer, txs []models.Transaction) []models.ClassificationResult {
	if !rerun {
		return cat.ClassifyBatch(ctx, txs)
	}

	// Explicit re-run: the sticky manual short-circuit is bypassed per
	// transaction, so this path stays sequential and deliberate.
	results := make([]models.ClassificationResult, len(txs))
	for i, tx := range txs {
		results[i] = cat.Reclassify(ctx, tx)
	}
	return results
}
