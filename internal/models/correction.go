package models

import (
	"time"

	"github.com/google/uuid"
)

// CorrectionRecord is one entry in the append-only manual-correction log.
// Records are never deleted; later records for the same counterparty shadow
// earlier ones when corrections are consulted for classification.
type CorrectionRecord struct {
	ID               string    `yaml:"id" json:"id"`
	TransactionID    string    `yaml:"transaction_id" json:"transaction_id"`
	Counterparty     string    `yaml:"counterparty" json:"counterparty"`
	PreviousCategory string    `yaml:"previous_category" json:"previous_category"`
	NewCategory      string    `yaml:"new_category" json:"new_category"`
	Timestamp        time.Time `yaml:"timestamp" json:"timestamp"`
}

// NewCorrectionRecord creates a correction record with a generated ID and the
// current time.
func NewCorrectionRecord(transactionID, counterparty, previousCategory, newCategory string) CorrectionRecord {
	return CorrectionRecord{
		ID:               uuid.New().String(),
		TransactionID:    transactionID,
		Counterparty:     counterparty,
		PreviousCategory: previousCategory,
		NewCategory:      newCategory,
		Timestamp:        time.Now(),
	}
}

// CorrectionsConfig is the structure of the corrections YAML file.
type CorrectionsConfig struct {
	Corrections []CorrectionRecord `yaml:"corrections"`
}
