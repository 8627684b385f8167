package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultLLMModel is used when no model is configured.
const DefaultLLMModel = "claude-3-5-haiku-latest"

// LLMClient classifies complaints with an Anthropic completion constrained
// to a JSON verdict.
type LLMClient struct {
	client anthropic.Client
	model  string
}

// NewLLMClient builds a client. An empty model selects DefaultLLMModel.
func NewLLMClient(apiKey, model string) *LLMClient {
	if model == "" {
		model = DefaultLLMModel
	}
	return &LLMClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

type llmVerdict struct {
	Category      string  `json:"category"`
	Subcategory   string  `json:"subcategory"`
	Severity      string  `json:"severity"`
	Confidence    float64 `json:"confidence"`
	ExtractedInfo string  `json:"extracted_info"`
}

// Classify sends the complaint text to the model and parses its JSON verdict.
// Malformed output or values outside the category/severity enums are errors
// so the cascade falls through to the keyword tier.
func (c *LLMClient) Classify(ctx context.Context, title, description, locationText string) (Result, error) {
	userPrompt := fmt.Sprintf("Title: %s\nDescription: %s\nLocation: %s", title, description, locationText)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: c.systemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("anthropic request failed: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return Result{}, fmt.Errorf("anthropic response contained no text")
	}

	var verdict llmVerdict
	if err := json.Unmarshal([]byte(stripFences(text)), &verdict); err != nil {
		return Result{}, fmt.Errorf("failed to parse model verdict: %w", err)
	}

	profile, ok := CategoryByName(verdict.Category)
	if !ok {
		return Result{}, fmt.Errorf("model returned unknown category %q", verdict.Category)
	}
	severity, ok := ValidSeverity(verdict.Severity)
	if !ok {
		return Result{}, fmt.Errorf("model returned unknown severity %q", verdict.Severity)
	}

	subcategory := ""
	for _, candidate := range profile.Subcategories {
		if strings.EqualFold(candidate, verdict.Subcategory) {
			subcategory = candidate
			break
		}
	}
	if subcategory == "" {
		subcategory = SuggestSubcategory(title+" "+description, profile.Name)
	}

	return Result{
		Category:      profile.Name,
		Subcategory:   subcategory,
		Severity:      severity,
		Confidence:    verdict.Confidence,
		Source:        SourceLLM,
		Department:    profile.Department,
		ExtractedInfo: verdict.ExtractedInfo,
	}, nil
}

func (c *LLMClient) systemPrompt() string {
	return fmt.Sprintf(`You classify citizen complaints for the government of Jharkhand, India.

Respond with a single JSON object and nothing else:
{"category": "...", "subcategory": "...", "severity": "...", "confidence": 0.0, "extracted_info": "..."}

Rules:
- category must be exactly one of: %s
- severity must be exactly one of: %s
- confidence is your certainty between 0 and 1
- extracted_info is a short note of any landmark, ward, or affected-population detail found in the text, or ""`,
		strings.Join(CategoryNames(), ", "),
		strings.Join(SeverityLevels(), ", "))
}

// stripFences removes a surrounding markdown code fence, which models add
// despite instructions.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
