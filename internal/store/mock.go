package store

import (
	"ledgerunify/internal/models"
)

// MockRuleStore is an in-memory rule store for tests.
type MockRuleStore struct {
	Rules   []models.CategoryRule
	LoadErr error
	SaveErr error
}

func (m *MockRuleStore) LoadRules() ([]models.CategoryRule, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Rules, nil
}

func (m *MockRuleStore) SaveRules(rules []models.CategoryRule) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Rules = rules
	return nil
}

// MockCorrectionStore is an in-memory correction log for tests.
type MockCorrectionStore struct {
	Records   []models.CorrectionRecord
	AppendErr error
}

func (m *MockCorrectionStore) Append(record models.CorrectionRecord) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Records = append(m.Records, record)
	return nil
}

func (m *MockCorrectionStore) ByTransaction(transactionID string) (models.CorrectionRecord, bool) {
	for i := len(m.Records) - 1; i >= 0; i-- {
		if m.Records[i].TransactionID == transactionID {
			return m.Records[i], true
		}
	}
	return models.CorrectionRecord{}, false
}

func (m *MockCorrectionStore) LatestByCounterparty(counterparty string) (string, bool) {
	normalized := normalizeCounterparty(counterparty)
	for i := len(m.Records) - 1; i >= 0; i-- {
		if normalizeCounterparty(m.Records[i].Counterparty) == normalized {
			return m.Records[i].NewCategory, true
		}
	}
	return "", false
}
