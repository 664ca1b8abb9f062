// Package store provides YAML-backed persistence for category rules and the
// manual-correction log. The persisted schema is a collaborator convenience;
// the core consumes rules and corrections as plain values.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"

	"gopkg.in/yaml.v3"
)

// RuleStore loads and saves the category rule configuration.
type RuleStore struct {
	RulesFile string
	logger    logging.Logger
}

// NewRuleStore creates a rule store over the given YAML file.
func NewRuleStore(rulesFile string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &RuleStore{RulesFile: rulesFile, logger: logger}
}

// LoadRules reads the configured rule list. A missing file yields an empty
// list, not an error: the rule vocabulary is user-editable and may not exist
// yet.
func (s *RuleStore) LoadRules() ([]models.CategoryRule, error) {
	data, err := os.ReadFile(s.RulesFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Rules file not found",
				logging.Field{Key: "file", Value: s.RulesFile})
			return []models.CategoryRule{}, nil
		}
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	var config models.RulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing rules file: %w", err)
	}

	s.logger.Debug("Loaded category rules",
		logging.Field{Key: "count", Value: len(config.Rules)},
		logging.Field{Key: "file", Value: s.RulesFile})

	return config.Rules, nil
}

// SaveRules writes the rule list back to disk.
func (s *RuleStore) SaveRules(rules []models.CategoryRule) error {
	data, err := yaml.Marshal(models.RulesConfig{Rules: rules})
	if err != nil {
		return fmt.Errorf("error marshaling rules: %w", err)
	}

	if err := ensureParentDir(s.RulesFile); err != nil {
		return err
	}
	if err := os.WriteFile(s.RulesFile, data, 0644); err != nil {
		return fmt.Errorf("error writing rules file: %w", err)
	}

	s.logger.Debug("Saved category rules",
		logging.Field{Key: "count", Value: len(rules)},
		logging.Field{Key: "file", Value: s.RulesFile})
	return nil
}

// CorrectionStore manages the append-only manual-correction log. Appends are
// written through to disk synchronously so a mid-batch interruption never
// loses a recorded correction.
type CorrectionStore struct {
	CorrectionsFile string
	logger          logging.Logger

	mu      sync.RWMutex
	records []models.CorrectionRecord
	loaded  bool
}

// NewCorrectionStore creates a correction store over the given YAML file.
func NewCorrectionStore(correctionsFile string, logger logging.Logger) *CorrectionStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &CorrectionStore{CorrectionsFile: correctionsFile, logger: logger}
}

// Load reads the correction log. A missing file yields an empty log.
func (s *CorrectionStore) Load() ([]models.CorrectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	out := make([]models.CorrectionRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *CorrectionStore) loadLocked() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.CorrectionsFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.records = []models.CorrectionRecord{}
			s.loaded = true
			return nil
		}
		return fmt.Errorf("error reading corrections file: %w", err)
	}

	var config models.CorrectionsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("error parsing corrections file: %w", err)
	}

	s.records = config.Corrections
	s.loaded = true

	s.logger.Debug("Loaded correction log",
		logging.Field{Key: "count", Value: len(s.records)},
		logging.Field{Key: "file", Value: s.CorrectionsFile})
	return nil
}

// Append adds a correction record and writes the log through to disk before
// returning. Records are never rewritten or deleted.
func (s *CorrectionStore) Append(record models.CorrectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}

	s.records = append(s.records, record)

	data, err := yaml.Marshal(models.CorrectionsConfig{Corrections: s.records})
	if err != nil {
		return fmt.Errorf("error marshaling corrections: %w", err)
	}
	if err := ensureParentDir(s.CorrectionsFile); err != nil {
		return err
	}
	if err := os.WriteFile(s.CorrectionsFile, data, 0644); err != nil {
		return fmt.Errorf("error writing corrections file: %w", err)
	}

	s.logger.Debug("Appended correction record",
		logging.Field{Key: "transaction", Value: record.TransactionID},
		logging.Field{Key: "category", Value: record.NewCategory})
	return nil
}

// ByTransaction returns the latest correction recorded for a transaction ID.
func (s *CorrectionStore) ByTransaction(transactionID string) (models.CorrectionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].TransactionID == transactionID {
			return s.records[i], true
		}
	}
	return models.CorrectionRecord{}, false
}

// LatestByCounterparty returns the most recent corrected category for a
// counterparty. Lookup is case- and whitespace-insensitive; the latest
// record wins, matching the append order.
func (s *CorrectionStore) LatestByCounterparty(counterparty string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := normalizeCounterparty(counterparty)
	if normalized == "" {
		return "", false
	}

	for i := len(s.records) - 1; i >= 0; i-- {
		if normalizeCounterparty(s.records[i].Counterparty) == normalized {
			return s.records[i].NewCategory, true
		}
	}
	return "", false
}

func normalizeCounterparty(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func ensureParentDir(file string) error {
	dir := filepath.Dir(file)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	return nil
}
