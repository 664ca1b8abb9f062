// Package categorizer orchestrates transaction classification: manual
// correction history first, then the rule engine, then the AI adapter, then
// the configured default category. Every outcome is a value; failure to match
// is never an error.
package categorizer

import (
	"context"
	"time"

	"ledgerunify/internal/ai"
	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"
	"ledgerunify/internal/rules"

	"golang.org/x/time/rate"
)

// CorrectionLog is the slice of the correction store the categorizer needs.
type CorrectionLog interface {
	Append(record models.CorrectionRecord) error
	ByTransaction(transactionID string) (models.CorrectionRecord, bool)
	LatestByCounterparty(counterparty string) (string, bool)
}

// Options configures the orchestrator. The zero value is usable; defaults
// fill in below.
type Options struct {
	AIEnabled         bool
	AITimeout         time.Duration
	RequestsPerMinute int
	MaxInFlight       int
	DefaultCategory   string
	RuleConfidence    int
}

const (
	defaultAITimeout   = 30 * time.Second
	defaultMaxInFlight = 4
)

// Categorizer sequences the classification pipeline. It holds no global
// state: the AI adapter, correction log and options are all injected, which
// keeps it trivially testable with mocks.
type Categorizer struct {
	ruleSet     *rules.RuleSet
	engine      *rules.Engine
	aiClient    ai.Client
	corrections CorrectionLog
	opts        Options
	limiter     *rate.Limiter
	categories  []string
	logger      logging.Logger
}

// New creates a Categorizer. aiClient may be nil when AI is disabled;
// corrections may be nil when no correction history is available.
func New(ruleSet *rules.RuleSet, aiClient ai.Client, corrections CorrectionLog, opts Options, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = models.CategoryUncategorized
	}
	if opts.RuleConfidence <= 0 || opts.RuleConfidence > 100 {
		opts.RuleConfidence = models.ConfidenceRule
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = defaultAITimeout
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = defaultMaxInFlight
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	var categories []string
	if ruleSet != nil {
		categories = ruleSet.Categories()
	}

	return &Categorizer{
		ruleSet:     ruleSet,
		engine:      rules.NewEngine(logger),
		aiClient:    aiClient,
		corrections: corrections,
		opts:        opts,
		limiter:     limiter,
		categories:  categories,
		logger:      logger,
	}
}

// Classify runs the full pipeline for one transaction. A manual correction
// recorded for this exact transaction is sticky: re-imports never overwrite
// it. Use Reclassify for an explicit user-requested re-run.
func (c *Categorizer) Classify(ctx context.Context, tx models.Transaction) models.ClassificationResult {
	return c.classify(ctx, tx, false)
}

// Reclassify ignores the transaction's correction history and re-runs rules
// and AI. Only an explicit user request should reach this path.
func (c *Categorizer) Reclassify(ctx context.Context, tx models.Transaction) models.ClassificationResult {
	return c.classify(ctx, tx, true)
}

func (c *Categorizer) classify(ctx context.Context, tx models.Transaction, force bool) models.ClassificationResult {
	if !force {
		if result, ok := c.classifyFromCorrections(tx); ok {
			return result
		}
	}

	if result, ok := c.classifyByRules(tx); ok {
		return result
	}

	if c.opts.AIEnabled && c.aiClient != nil {
		if result, ok := c.classifyByAI(ctx, tx); ok {
			return result
		} else if result.Err != nil {
			// Recoverable AI failure: fall through to the default with the
			// cause attached for the caller's information.
			return c.defaulted(tx, result.Err)
		}
	}

	return c.defaulted(tx, nil)
}

// classifyFromCorrections consults the manual-correction history: first a
// correction for this exact transaction (sticky override), then the latest
// correction for the same counterparty (inherited). Both short-circuit rules
// and AI with provenance manual.
func (c *Categorizer) classifyFromCorrections(tx models.Transaction) (models.ClassificationResult, bool) {
	if c.corrections == nil {
		return models.ClassificationResult{}, false
	}

	if record, ok := c.corrections.ByTransaction(tx.ID); ok {
		return models.ClassificationResult{
			TransactionID: tx.ID,
			Status:        models.StatusManualOverridden,
			Category:      record.NewCategory,
			Confidence:    models.ConfidenceManual,
			Provenance:    models.ProvenanceManual,
		}, true
	}

	if category, ok := c.corrections.LatestByCounterparty(tx.Counterparty); ok {
		c.logger.Debug("Category inherited from counterparty correction history",
			logging.Field{Key: "transaction", Value: tx.ID},
			logging.Field{Key: "counterparty", Value: tx.Counterparty},
			logging.Field{Key: "category", Value: category})
		return models.ClassificationResult{
			TransactionID: tx.ID,
			Status:        models.StatusManualOverridden,
			Category:      category,
			Confidence:    models.ConfidenceManual,
			Provenance:    models.ProvenanceManual,
		}, true
	}

	return models.ClassificationResult{}, false
}

func (c *Categorizer) classifyByRules(tx models.Transaction) (models.ClassificationResult, bool) {
	category, matched := c.engine.Classify(tx, c.ruleSet)
	if !matched {
		return models.ClassificationResult{}, false
	}
	return models.ClassificationResult{
		TransactionID: tx.ID,
		Status:        models.StatusRuleMatched,
		Category:      category,
		Confidence:    c.opts.RuleConfidence,
		Provenance:    models.ProvenanceRule,
	}, true
}

// classifyByAI attempts one AI classification with the configured timeout and
// request budget. Any failure, timeout included, is recoverable and reported
// through the result's Err; there is no automatic retry within a batch run.
func (c *Categorizer) classifyByAI(ctx context.Context, tx models.Transaction) (models.ClassificationResult, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.ClassificationResult{Err: err}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.AITimeout)
	defer cancel()

	suggestion, err := c.aiClient.Classify(callCtx, tx, c.categories)
	if err != nil {
		c.logger.WithError(err).WithFields(
			logging.Field{Key: "transaction", Value: tx.ID},
			logging.Field{Key: "counterparty", Value: tx.Counterparty},
		).Warn("AI classification failed, falling back to default")
		return models.ClassificationResult{Err: err}, false
	}

	return models.ClassificationResult{
		TransactionID: tx.ID,
		Status:        models.StatusAIMatched,
		Category:      suggestion.Category,
		Confidence:    suggestion.Confidence,
		Provenance:    models.ProvenanceAI,
	}, true
}

func (c *Categorizer) defaulted(tx models.Transaction, cause error) models.ClassificationResult {
	return models.ClassificationResult{
		TransactionID: tx.ID,
		Status:        models.StatusDefaulted,
		Category:      c.opts.DefaultCategory,
		Confidence:    models.ConfidenceDefault,
		Provenance:    models.ProvenanceNone,
		Err:           cause,
	}
}

// RecordCorrection appends a manual relabel to the correction log (written
// through synchronously) and applies the manual provenance to the
// transaction. The previous assignment stays in the log, never deleted.
func (c *Categorizer) RecordCorrection(tx *models.Transaction, newCategory string) error {
	record := models.NewCorrectionRecord(tx.ID, tx.Counterparty, tx.Category, newCategory)

	if c.corrections != nil {
		if err := c.corrections.Append(record); err != nil {
			return err
		}
	}

	tx.Category = newCategory
	tx.CategoryConfidence = models.ConfidenceManual
	tx.CategoryProvenance = models.ProvenanceManual

	c.logger.Info("Recorded manual correction",
		logging.Field{Key: "transaction", Value: tx.ID},
		logging.Field{Key: "previous", Value: record.PreviousCategory},
		logging.Field{Key: "category", Value: newCategory})
	return nil
}
