package rules

import (
	"testing"

	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() []models.CategoryRule {
	return []models.CategoryRule{
		{Name: models.CategoryDining, Keywords: []string{"starbucks", "coffee", "restaurant"}, Priority: 10},
		{Name: models.CategoryGroceries, Keywords: []string{"grocer", "supermarket"}, Priority: 10},
		{Name: models.CategoryTransport, Keywords: []string{"metro", "taxi"}, Patterns: []string{`didi\s*chuxing`}, Priority: 20},
		{Name: models.CategoryTransfers, Patterns: []string{`^transfer to`}, Priority: 5},
	}
}

func TestCompile(t *testing.T) {
	t.Run("valid rules compile", func(t *testing.T) {
		set, err := Compile(testRules())
		require.NoError(t, err)
		assert.Equal(t, 4, set.Len())
	})

	t.Run("missing category name fails the load", func(t *testing.T) {
		_, err := Compile([]models.CategoryRule{{Keywords: []string{"x"}}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "category name is required")
	})

	t.Run("broken regex fails the load", func(t *testing.T) {
		_, err := Compile([]models.CategoryRule{
			{Name: models.CategoryDining, Patterns: []string{"("}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid pattern")
	})

	t.Run("empty rule list compiles to an empty set", func(t *testing.T) {
		set, err := Compile(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, set.Len())
	})
}

func TestRuleSetCategories(t *testing.T) {
	set, err := Compile([]models.CategoryRule{
		{Name: models.CategoryDining, Priority: 1},
		{Name: models.CategoryTransport, Priority: 2},
		{Name: models.CategoryDining, Priority: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{models.CategoryDining, models.CategoryTransport}, set.Categories())
}

func TestEngineClassify(t *testing.T) {
	set, err := Compile(testRules())
	require.NoError(t, err)
	engine := NewEngine(&logging.MockLogger{})

	tests := []struct {
		name         string
		counterparty string
		description  string
		expected     string
		matched      bool
	}{
		{
			name:         "keyword match on counterparty",
			counterparty: "Starbucks Coffee",
			expected:     models.CategoryDining,
			matched:      true,
		},
		{
			name:        "keyword match on description",
			description: "dinner at a restaurant",
			expected:    models.CategoryDining,
			matched:     true,
		},
		{
			name:         "keyword match is case-insensitive",
			counterparty: "CITY SUPERMARKET",
			expected:     models.CategoryGroceries,
			matched:      true,
		},
		{
			name:         "pattern match",
			counterparty: "DiDi Chuxing",
			expected:     models.CategoryTransport,
			matched:      true,
		},
		{
			name:         "lowest priority value wins when several rules match",
			counterparty: "transfer to savings",
			description:  "taxi reimbursement",
			expected:     models.CategoryTransfers,
			matched:      true,
		},
		{
			name:         "no match is a normal outcome",
			counterparty: "Unknown Vendor 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, matched := engine.Classify(models.Transaction{
				Counterparty: tt.counterparty,
				Description:  tt.description,
			}, set)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.expected, category)
		})
	}
}

func TestEngineClassify_EqualPriorityDeclarationOrderWins(t *testing.T) {
	set, err := Compile([]models.CategoryRule{
		{Name: models.CategoryDining, Keywords: []string{"market"}, Priority: 10},
		{Name: models.CategoryGroceries, Keywords: []string{"market"}, Priority: 10},
	})
	require.NoError(t, err)
	engine := NewEngine(&logging.MockLogger{})

	tx := models.Transaction{Counterparty: "Night Market"}
	for i := 0; i < 10; i++ {
		category, matched := engine.Classify(tx, set)
		require.True(t, matched)
		assert.Equal(t, models.CategoryDining, category)
	}
}

func TestEngineClassify_NilAndEmptySet(t *testing.T) {
	engine := NewEngine(&logging.MockLogger{})
	tx := models.Transaction{Counterparty: "Starbucks"}

	category, matched := engine.Classify(tx, nil)
	assert.False(t, matched)
	assert.Empty(t, category)

	empty, err := Compile(nil)
	require.NoError(t, err)
	category, matched = engine.Classify(tx, empty)
	assert.False(t, matched)
	assert.Empty(t, category)
}
