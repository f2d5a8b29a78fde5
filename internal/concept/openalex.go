// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concept

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/review-engine/internal/httputil"
	"github.com/pdiddy/review-engine/pkg/types"
)

// openAlexConceptsBase is the OpenAlex Concepts search endpoint.
// Declared as a var so tests can substitute an httptest server.
var openAlexConceptsBase = "https://api.openalex.org/concepts"

// OpenAlexLookup searches the OpenAlex concept graph by display name.
type OpenAlexLookup struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email     string
	UserAgent string
}

// Search queries the Concepts endpoint for up to limit candidates.
func (l *OpenAlexLookup) Search(ctx context.Context, phrase string, limit int) ([]types.Concept, error) {
	if phrase == "" {
		return nil, fmt.Errorf("empty concept search phrase")
	}
	if limit <= 0 {
		limit = 5
	}
	if limit > 25 {
		limit = 25
	}

	params := url.Values{
		"search":   {phrase},
		"per_page": {fmt.Sprintf("%d", limit)},
	}
	if l.Email != "" {
		params.Set("mailto", l.Email)
	}

	reqURL := openAlexConceptsBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", l.UserAgent)

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex concepts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex concepts API returned HTTP %d", resp.StatusCode)
	}

	var cr conceptsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex concepts response: %w", err)
	}

	var concepts []types.Concept
	for _, c := range cr.Results {
		if c.ID == "" {
			continue
		}
		concepts = append(concepts, types.Concept{
			ID:          c.ID,
			DisplayName: c.DisplayName,
			Level:       c.Level,
			WorksCount:  c.WorksCount,
		})
	}
	return concepts, nil
}

// OpenAlex Concepts API JSON structures.
type conceptsResponse struct {
	Results []openAlexConcept `json:"results"`
}

type openAlexConcept struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	WorksCount  int    `json:"works_count"`
}
