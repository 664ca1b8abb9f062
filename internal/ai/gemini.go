package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ledgerunify/internal/ledgererror"
	"ledgerunify/internal/logging"
	"ledgerunify/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiProvider = "gemini"

// GeminiClient implements Client against the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger logging.Logger
}

// NewGeminiClient creates a Gemini-backed Client. The API key and model name
// come from configuration; credentials are opaque to the core.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Classify asks Gemini to pick one category from the available vocabulary.
// Malformed or out-of-vocabulary responses come back as AIError; the core
// never propagates them as hard failures.
func (c *GeminiClient) Classify(ctx context.Context, tx models.Transaction, availableCategories []string) (Suggestion, error) {
	if len(availableCategories) == 0 {
		return Suggestion{}, &ledgererror.AIError{Provider: geminiProvider, Reason: "no categories available"}
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)

	prompt := buildPrompt(tx, availableCategories)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Suggestion{}, &ledgererror.AIError{Provider: geminiProvider, Reason: "request failed", Err: err}
	}

	text := extractText(resp)
	if text == "" {
		return Suggestion{}, &ledgererror.AIError{Provider: geminiProvider, Reason: "empty response"}
	}

	suggestion, err := ParseSuggestion(text, availableCategories)
	if err != nil {
		return Suggestion{}, err
	}

	c.logger.Debug("Gemini classified transaction",
		logging.Field{Key: "transaction", Value: tx.ID},
		logging.Field{Key: "category", Value: suggestion.Category},
		logging.Field{Key: "confidence", Value: suggestion.Confidence})

	return suggestion, nil
}

func buildPrompt(tx models.Transaction, categories []string) string {
	var b strings.Builder
	b.WriteString("Classify this financial transaction into exactly one of the given categories.\n")
	b.WriteString("Answer with a single line in the form: category|confidence\n")
	b.WriteString("where confidence is an integer between 0 and 100.\n\n")
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(categories, ", "))
	fmt.Fprintf(&b, "Counterparty: %s\n", tx.Counterparty)
	fmt.Fprintf(&b, "Description: %s\n", tx.Description)
	fmt.Fprintf(&b, "Amount: %s\n", tx.Amount.String())
	fmt.Fprintf(&b, "Date: %s\n", tx.Timestamp.Format("2006-01-02"))
	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// ParseSuggestion parses a "category|confidence" response line and validates
// the category against the vocabulary. A response missing either part is
// malformed and rejected as AIError, never patched up. Exported so tests can
// exercise the validation path without a live provider.
func ParseSuggestion(text string, availableCategories []string) (Suggestion, error) {
	line := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	parts := strings.SplitN(line, "|", 2)
	if len(parts) != 2 {
		return Suggestion{}, &ledgererror.AIError{
			Provider: geminiProvider,
			Reason:   fmt.Sprintf("missing confidence in response %q", line),
		}
	}

	category := strings.TrimSpace(parts[0])
	confidence, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || confidence < 0 || confidence > 100 {
		return Suggestion{}, &ledgererror.AIError{
			Provider: geminiProvider,
			Reason:   fmt.Sprintf("malformed confidence in response %q", line),
		}
	}

	for _, available := range availableCategories {
		if strings.EqualFold(category, available) {
			return Suggestion{Category: available, Confidence: confidence}, nil
		}
	}

	return Suggestion{}, &ledgererror.AIError{
		Provider: geminiProvider,
		Reason:   fmt.Sprintf("category %q is not in the available vocabulary", category),
	}
}
