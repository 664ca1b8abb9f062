package store

import (
	"fmt"
	"os"

	"ledgerunify/internal/logging"
	"ledgerunify/internal/mapper"
	"ledgerunify/internal/models"

	"gopkg.in/yaml.v3"
)

// mappingsConfig is the structure of the field-mappings YAML file.
type mappingsConfig struct {
	Mappings []mapper.FieldMapping `yaml:"mappings"`
}

// MappingStore loads per-platform field-mapping configurations.
type MappingStore struct {
	MappingsFile string
	logger       logging.Logger
}

// NewMappingStore creates a mapping store over the given YAML file.
func NewMappingStore(mappingsFile string, logger logging.Logger) *MappingStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &MappingStore{MappingsFile: mappingsFile, logger: logger}
}

// LoadMappings reads and validates every configured field mapping, keyed by
// platform. Validation happens here, at load time, so a broken mapping never
// reaches row processing.
func (s *MappingStore) LoadMappings() (map[models.SourcePlatform]mapper.FieldMapping, error) {
	data, err := os.ReadFile(s.MappingsFile)
	if err != nil {
		return nil, fmt.Errorf("error reading mappings file: %w", err)
	}

	var config mappingsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing mappings file: %w", err)
	}

	mappings := make(map[models.SourcePlatform]mapper.FieldMapping, len(config.Mappings))
	for _, m := range config.Mappings {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("invalid mapping in %s: %w", s.MappingsFile, err)
		}
		if _, exists := mappings[m.Platform]; exists {
			return nil, fmt.Errorf("duplicate mapping for platform %s in %s", m.Platform, s.MappingsFile)
		}
		mappings[m.Platform] = m
	}

	s.logger.Debug("Loaded field mappings",
		logging.Field{Key: "count", Value: len(mappings)},
		logging.Field{Key: "file", Value: s.MappingsFile})

	return mappings, nil
}
