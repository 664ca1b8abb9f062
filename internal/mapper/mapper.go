// Package mapper converts raw platform-specific statement rows into the
// canonical transaction shape, driven by a per-platform field mapping that is
// validated at load time rather than at row-processing time.
package mapper

import (
	"fmt"
	"strings"

	"ledgerunify/internal/ledgererror"
	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"
	"ledgerunify/internal/timeutils"

	"github.com/shopspring/decimal"
)

// RawRow is one pre-parsed statement row, keyed by source column header.
// Reading bytes out of files is the upstream parser's concern.
type RawRow map[string]string

// FieldBinding binds one canonical field to its source: either a column key
// or a constant value. An empty binding leaves the field at its zero value.
type FieldBinding struct {
	Column   string `yaml:"column,omitempty"`
	Constant string `yaml:"constant,omitempty"`
}

// IsBound reports whether the binding produces a value at all.
func (b FieldBinding) IsBound() bool {
	return b.Column != "" || b.Constant != ""
}

func (b FieldBinding) resolve(row RawRow) string {
	if b.Column != "" {
		return strings.TrimSpace(row[b.Column])
	}
	return b.Constant
}

// AmountBinding describes how the signed canonical amount is derived.
// Exactly one of Column or the Credit/Debit pair must be set. Platforms that
// split income and expense into two columns get amount = credit - debit.
// Platforms that report all amounts positive with a separate direction column
// set DirectionColumn plus the values that mark an expense.
type AmountBinding struct {
	Column        string   `yaml:"column,omitempty"`
	CreditColumn  string   `yaml:"credit_column,omitempty"`
	DebitColumn   string   `yaml:"debit_column,omitempty"`
	DirectionCol  string   `yaml:"direction_column,omitempty"`
	ExpenseValues []string `yaml:"expense_values,omitempty"`
}

func (b AmountBinding) isSplit() bool {
	return b.CreditColumn != "" || b.DebitColumn != ""
}

// FieldMapping is the per-platform configuration mapping canonical fields to
// raw columns and derivations. Timestamp and Amount are required; everything
// else defaults to empty when unbound.
type FieldMapping struct {
	Platform        models.SourcePlatform `yaml:"platform"`
	Timestamp       FieldBinding          `yaml:"timestamp"`
	TimestampHints  []string              `yaml:"timestamp_hints,omitempty"`
	Amount          AmountBinding         `yaml:"amount"`
	Counterparty    FieldBinding          `yaml:"counterparty,omitempty"`
	Description     FieldBinding          `yaml:"description,omitempty"`
	AccountRef      FieldBinding          `yaml:"account_ref,omitempty"`
	ReferenceNumber FieldBinding          `yaml:"reference_number,omitempty"`
	BalanceAfter    FieldBinding          `yaml:"balance_after,omitempty"`
}

// Validate checks the mapping at load time so misconfiguration surfaces
// before any row is processed.
func (m FieldMapping) Validate() error {
	if m.Platform == "" {
		return fmt.Errorf("field mapping: platform is required")
	}
	if !m.Timestamp.IsBound() {
		return fmt.Errorf("field mapping for %s: timestamp binding is required", m.Platform)
	}
	if m.Amount.Column == "" && !m.Amount.isSplit() {
		return fmt.Errorf("field mapping for %s: amount binding is required", m.Platform)
	}
	if m.Amount.Column != "" && m.Amount.isSplit() {
		return fmt.Errorf("field mapping for %s: amount must bind either a single column or a credit/debit pair, not both", m.Platform)
	}
	if m.Amount.DirectionCol != "" && len(m.ExpenseValues()) == 0 {
		return fmt.Errorf("field mapping for %s: direction column requires expense_values", m.Platform)
	}
	return nil
}

// ExpenseValues returns the direction values marking an outflow.
func (m FieldMapping) ExpenseValues() []string {
	return m.Amount.ExpenseValues
}

// Mapper maps raw rows into canonical transactions. It is stateless apart
// from its logger; mapping itself is pure.
type Mapper struct {
	logger logging.Logger
}

// New creates a Mapper. A nil logger falls back to the shared default.
func New(logger logging.Logger) *Mapper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Mapper{logger: logger}
}

// MapRow converts a single raw row. rowIndex is carried into MappingError so
// the caller can point at the offending line.
func (m *Mapper) MapRow(rowIndex int, row RawRow, mapping FieldMapping) (models.Transaction, error) {
	tx := models.Transaction{
		SourcePlatform:     mapping.Platform,
		Counterparty:       mapping.Counterparty.resolve(row),
		Description:        mapping.Description.resolve(row),
		AccountRef:         mapping.AccountRef.resolve(row),
		ReferenceNumber:    mapping.ReferenceNumber.resolve(row),
		CategoryProvenance: models.ProvenanceNone,
	}

	rawTimestamp := mapping.Timestamp.resolve(row)
	if rawTimestamp == "" {
		return models.Transaction{}, &ledgererror.MappingError{
			Platform: string(mapping.Platform),
			RowIndex: rowIndex,
			Field:    "timestamp",
			Reason:   "source value is empty",
		}
	}
	timestamp, err := timeutils.ParseTimestamp(rawTimestamp, mapping.TimestampHints)
	if err != nil {
		return models.Transaction{}, err
	}
	tx.Timestamp = timestamp

	amount, err := m.resolveAmount(rowIndex, row, mapping)
	if err != nil {
		return models.Transaction{}, err
	}
	tx.Amount = amount

	if mapping.BalanceAfter.IsBound() {
		if raw := mapping.BalanceAfter.resolve(row); raw != "" {
			if balance, err := models.ParseAmount(raw); err == nil {
				tx.BalanceAfter = &balance
			}
			// Unparseable optional balance is dropped, never fatal.
		}
	}

	tx.ID = tx.DeriveID()
	return tx, nil
}

// MapRows converts a batch of rows. Row failures never abort siblings: the
// caller receives every successfully mapped transaction plus one error per
// failed row and decides skip-vs-abort itself.
func (m *Mapper) MapRows(rows []RawRow, mapping FieldMapping) ([]models.Transaction, []error) {
	transactions := make([]models.Transaction, 0, len(rows))
	var errs []error

	for i, row := range rows {
		tx, err := m.MapRow(i, row, mapping)
		if err != nil {
			m.logger.WithError(err).WithFields(
				logging.Field{Key: "platform", Value: mapping.Platform},
				logging.Field{Key: "row", Value: i},
			).Warn("Failed to map statement row")
			errs = append(errs, err)
			continue
		}
		transactions = append(transactions, tx)
	}

	m.logger.Info("Mapped statement rows",
		logging.Field{Key: "platform", Value: mapping.Platform},
		logging.Field{Key: "rows", Value: len(rows)},
		logging.Field{Key: "mapped", Value: len(transactions)},
		logging.Field{Key: "failed", Value: len(errs)})

	return transactions, errs
}

// resolveAmount derives the signed canonical amount. Negative = expense is a
// hard invariant: the sign is fixed here and never flipped downstream.
func (m *Mapper) resolveAmount(rowIndex int, row RawRow, mapping FieldMapping) (decimal.Decimal, error) {
	if mapping.Amount.isSplit() {
		credit, debit := decimal.Zero, decimal.Zero

		if mapping.Amount.CreditColumn != "" {
			if raw := strings.TrimSpace(row[mapping.Amount.CreditColumn]); raw != "" {
				parsed, err := models.ParseAmount(raw)
				if err != nil {
					return decimal.Zero, m.amountError(rowIndex, mapping, err)
				}
				credit = parsed
			}
		}
		if mapping.Amount.DebitColumn != "" {
			if raw := strings.TrimSpace(row[mapping.Amount.DebitColumn]); raw != "" {
				parsed, err := models.ParseAmount(raw)
				if err != nil {
					return decimal.Zero, m.amountError(rowIndex, mapping, err)
				}
				debit = parsed
			}
		}
		if credit.IsZero() && debit.IsZero() {
			return decimal.Zero, &ledgererror.MappingError{
				Platform: string(mapping.Platform),
				RowIndex: rowIndex,
				Field:    "amount",
				Reason:   "both credit and debit columns are empty",
			}
		}
		return credit.Sub(debit.Abs()), nil
	}

	raw := strings.TrimSpace(row[mapping.Amount.Column])
	if raw == "" {
		return decimal.Zero, &ledgererror.MappingError{
			Platform: string(mapping.Platform),
			RowIndex: rowIndex,
			Field:    "amount",
			Reason:   "source value is empty",
		}
	}
	amount, err := models.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, m.amountError(rowIndex, mapping, err)
	}

	// Platforms reporting unsigned amounts mark direction in a separate
	// column; match marks an expense and forces the amount negative.
	if mapping.Amount.DirectionCol != "" {
		direction := strings.TrimSpace(row[mapping.Amount.DirectionCol])
		if isExpenseDirection(direction, mapping.ExpenseValues()) {
			amount = amount.Abs().Neg()
		} else {
			amount = amount.Abs()
		}
	}

	return amount, nil
}

func (m *Mapper) amountError(rowIndex int, mapping FieldMapping, cause error) error {
	return &ledgererror.MappingError{
		Platform: string(mapping.Platform),
		RowIndex: rowIndex,
		Field:    "amount",
		Reason:   cause.Error(),
	}
}

func isExpenseDirection(value string, expenseValues []string) bool {
	for _, ev := range expenseValues {
		if strings.EqualFold(value, ev) {
			return true
		}
	}
	return false
}
