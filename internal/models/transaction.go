// Package models provides the data structures used throughout the application.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SourcePlatform identifies which statement source a transaction was mapped
// from. It is fixed at mapping time and never inferred after merge.
type SourcePlatform string

const (
	PlatformAlipay   SourcePlatform = "alipay"
	PlatformWeChat   SourcePlatform = "wechat"
	PlatformBankCMB  SourcePlatform = "bank-cmb"
	PlatformBankICBC SourcePlatform = "bank-icbc"
	PlatformGeneric  SourcePlatform = "generic"
)

// CategoryProvenance records how a transaction's category was assigned.
type CategoryProvenance string

const (
	ProvenanceRule   CategoryProvenance = "rule"
	ProvenanceAI     CategoryProvenance = "ai"
	ProvenanceManual CategoryProvenance = "manual"
	ProvenanceNone   CategoryProvenance = "none"
)

// Confidence conventions per provenance. AI confidence is whatever the
// adapter returned; these cover the deterministic assignment paths.
const (
	ConfidenceManual  = 100
	ConfidenceRule    = 95
	ConfidenceDefault = 0
)

// Transaction is the canonical, unified representation every platform row is
// mapped into. Amount is signed: negative = expense, positive = income. That
// sign convention is established by the mapper and never flipped afterwards.
type Transaction struct {
	ID                 string             `csv:"ID" json:"id" yaml:"id"`
	Timestamp          time.Time          `csv:"Timestamp" json:"timestamp" yaml:"timestamp"`
	Amount             decimal.Decimal    `csv:"Amount" json:"amount" yaml:"amount"`
	BalanceAfter       *decimal.Decimal   `csv:"BalanceAfter,omitempty" json:"balance_after,omitempty" yaml:"balance_after,omitempty"`
	Counterparty       string             `csv:"Counterparty" json:"counterparty" yaml:"counterparty"`
	Description        string             `csv:"Description" json:"description" yaml:"description"`
	SourcePlatform     SourcePlatform     `csv:"SourcePlatform" json:"source_platform" yaml:"source_platform"`
	AccountRef         string             `csv:"AccountRef" json:"account_ref,omitempty" yaml:"account_ref,omitempty"`
	ReferenceNumber    string             `csv:"ReferenceNumber" json:"reference_number,omitempty" yaml:"reference_number,omitempty"`
	Category           string             `csv:"Category" json:"category,omitempty" yaml:"category,omitempty"`
	CategoryConfidence int                `csv:"CategoryConfidence" json:"category_confidence" yaml:"category_confidence"`
	CategoryProvenance CategoryProvenance `csv:"CategoryProvenance" json:"category_provenance" yaml:"category_provenance"`
}

// IsExpense returns true if the transaction is an outflow.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome returns true if the transaction is an inflow.
func (t *Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// HasReference returns true if the source assigned a transaction ID.
func (t *Transaction) HasReference() bool {
	return t.ReferenceNumber != ""
}

// RichnessScore counts the optional fields a record actually carries. The
// merger keeps the higher-scoring record when collapsing duplicates.
func (t *Transaction) RichnessScore() int {
	score := 0
	if t.BalanceAfter != nil {
		score++
	}
	if t.AccountRef != "" {
		score++
	}
	if t.ReferenceNumber != "" {
		score++
	}
	if t.Description != "" {
		score++
	}
	return score
}

// DeriveID computes the stable identifier for a mapped transaction. When the
// source supplied a reference number the ID is derived from platform plus
// reference, so re-importing the same statement yields the same ID. Without a
// reference it falls back to a content hash over the identity-relevant fields.
func (t *Transaction) DeriveID() string {
	var payload string
	if t.ReferenceNumber != "" {
		payload = fmt.Sprintf("%s|%s", t.SourcePlatform, t.ReferenceNumber)
	} else {
		payload = fmt.Sprintf("%s|%s|%s|%s|%s",
			t.SourcePlatform,
			t.Timestamp.Format("2006-01-02 15:04:05"),
			t.Amount.String(),
			t.Counterparty,
			t.Description)
	}
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:16])
}
