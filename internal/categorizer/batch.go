package categorizer

import (
	"context"
	"sync"

	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"
)

// ClassifyBatch classifies a batch, returning one result per input position.
// Transactions are independent: one item's AI failure or timeout defaults
// that item only and never blocks or retries siblings.
//
// Correction-history and rule matches resolve synchronously first; only the
// remainder goes to the AI adapter, with at most MaxInFlight calls in flight
// and the shared request budget applied. Results are keyed by input index,
// not arrival order. Cancelling ctx abandons in-flight calls; items already
// resolved keep their results and unresolved items default.
func (c *Categorizer) ClassifyBatch(ctx context.Context, txs []models.Transaction) []models.ClassificationResult {
	results := make([]models.ClassificationResult, len(txs))

	var pending []int
	for i, tx := range txs {
		if result, ok := c.classifyFromCorrections(tx); ok {
			results[i] = result
			continue
		}
		if result, ok := c.classifyByRules(tx); ok {
			results[i] = result
			continue
		}
		if c.opts.AIEnabled && c.aiClient != nil {
			pending = append(pending, i)
			continue
		}
		results[i] = c.defaulted(tx, nil)
	}

	if len(pending) == 0 {
		return results
	}

	c.logger.Debug("Dispatching batch AI classification",
		logging.Field{Key: "batch", Value: len(txs)},
		logging.Field{Key: "pending", Value: len(pending)},
		logging.Field{Key: "max_in_flight", Value: c.opts.MaxInFlight})

	sem := make(chan struct{}, c.opts.MaxInFlight)
	var wg sync.WaitGroup

	for _, idx := range pending {
		if ctx.Err() != nil {
			// Batch abandoned: everything not yet dispatched defaults.
			results[idx] = c.defaulted(txs[idx], ctx.Err())
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = c.defaulted(txs[i], ctx.Err())
				return
			}

			result, ok := c.classifyByAI(ctx, txs[i])
			if !ok {
				result = c.defaulted(txs[i], result.Err)
			}
			// Each goroutine writes only its own result slot, so no
			// locking is needed.
			results[i] = result
		}(idx)
	}

	wg.Wait()

	return results
}
