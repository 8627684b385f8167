package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
)

// RetrievalClient calls the external retrieval-based classifier service.
// The service indexes historical complaints and answers with the category
// and severity of the nearest matches.
type RetrievalClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRetrievalClient builds a client for the service at baseURL. The HTTP
// timeout backstops the per-call context deadline.
func NewRetrievalClient(baseURL string) *RetrievalClient {
	return &RetrievalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.RetrievalTimeout,
		},
	}
}

type retrievalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type retrievalResponse struct {
	Success       bool            `json:"success"`
	Category      string          `json:"category"`
	Severity      string          `json:"severity"`
	Confidence    float64         `json:"confidence"`
	ExtractedInfo json.RawMessage `json:"extractedInfo"`
}

// Classify posts the complaint text to the service's /classify endpoint.
// A response with success=false, an unknown category, or an invalid severity
// is reported as an error so the cascade falls through.
func (c *RetrievalClient) Classify(ctx context.Context, title, description, locationText string) (Result, error) {
	payload, err := json.Marshal(retrievalRequest{
		Title:       title,
		Description: description,
		Location:    locationText,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewBuffer(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classify request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read classify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed retrievalResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to parse classify response: %w", err)
	}
	if !parsed.Success {
		return Result{}, fmt.Errorf("classifier service reported failure")
	}

	profile, ok := CategoryByName(parsed.Category)
	if !ok {
		return Result{}, fmt.Errorf("classifier service returned unknown category %q", parsed.Category)
	}
	severity, ok := ValidSeverity(parsed.Severity)
	if !ok {
		return Result{}, fmt.Errorf("classifier service returned unknown severity %q", parsed.Severity)
	}

	extracted := ""
	if len(parsed.ExtractedInfo) > 0 && string(parsed.ExtractedInfo) != "null" {
		extracted = string(parsed.ExtractedInfo)
	}

	return Result{
		Category:      profile.Name,
		Subcategory:   SuggestSubcategory(title+" "+description, profile.Name),
		Severity:      severity,
		Confidence:    parsed.Confidence,
		Source:        SourceRetrieval,
		Department:    profile.Department,
		ExtractedInfo: extracted,
	}, nil
}
