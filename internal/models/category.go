package models

// CategoryUncategorized is the fallback category assigned when neither rules
// nor the AI adapter produce a match.
const CategoryUncategorized = "Other"

// Common category names used in defaults and tests. The actual category
// vocabulary is owned by the rule configuration, not by the core.
const (
	CategoryDining    = "Dining"
	CategoryGroceries = "Groceries"
	CategoryTransport = "Transport"
	CategoryShopping  = "Shopping"
	CategoryTransfers = "Transfers"
	CategorySalary    = "Salary"
	CategoryHousing   = "Housing"
)

// Category represents a transaction category.
type Category struct {
	Name        string
	Description string
}

// CategoryRule describes one category's matching logic. Keywords are exact
// case-insensitive substrings, Patterns are regular expressions. Lower
// Priority values take precedence when several rules match.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
	Priority int      `yaml:"priority"`
	Icon     string   `yaml:"icon,omitempty"`
	Color    string   `yaml:"color,omitempty"`
}

// RulesConfig is the structure of the rules YAML file.
type RulesConfig struct {
	Rules []CategoryRule `yaml:"rules"`
}

// CategoryNames extracts the category vocabulary from a rule list, preserving
// declaration order. This is what gets offered to the AI adapter.
func CategoryNames(rules []CategoryRule) []string {
	seen := make(map[string]bool, len(rules))
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}
