package models

// ClassificationStatus tracks where in the rule -> AI -> default sequence a
// transaction ended up. Failure to match is a normal value, not an error.
type ClassificationStatus string

const (
	StatusUnclassified     ClassificationStatus = "unclassified"
	StatusRuleMatched      ClassificationStatus = "rule_matched"
	StatusAIMatched        ClassificationStatus = "ai_matched"
	StatusDefaulted        ClassificationStatus = "defaulted"
	StatusManualOverridden ClassificationStatus = "manual_overridden"
)

// ClassificationResult is the per-transaction outcome of classification.
// Err carries a recoverable AI failure for the caller's information; it is
// never a hard failure, the result is still usable (defaulted).
type ClassificationResult struct {
	TransactionID string
	Status        ClassificationStatus
	Category      string
	Confidence    int
	Provenance    CategoryProvenance
	Err           error
}

// Apply writes the result back onto a transaction.
func (r ClassificationResult) Apply(tx *Transaction) {
	tx.Category = r.Category
	tx.CategoryConfidence = r.Confidence
	tx.CategoryProvenance = r.Provenance
}
