// Package ai defines the external AI categorization capability the core
// depends on but does not implement. The adapter may be unavailable, slow, or
// wrong; callers always validate its output and treat any failure as
// recoverable.
package ai

import (
	"context"

	"ledgerunify/internal/models"
)

// Suggestion is a category proposal from an AI provider. Confidence is 0-100.
type Suggestion struct {
	Category   string
	Confidence int
}

// Client is the capability interface for AI-based categorization. The caller
// supplies the timeout through ctx. Implementations must validate the
// returned category against availableCategories and report an
// out-of-vocabulary response as an error, never substitute silently.
type Client interface {
	Classify(ctx context.Context, tx models.Transaction, availableCategories []string) (Suggestion, error)
}
