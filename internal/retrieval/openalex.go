// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval fetches candidate papers from OpenAlex. See
// docs/ARCHITECTURE.md § Retrieval.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/review-engine/internal/httputil"
	"github.com/pdiddy/review-engine/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var
// so tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// Query selects which works to retrieve. When ConceptID is set the
// retrieval filters on the concept; otherwise FreeText is used as a
// plain search.
type Query struct {
	ConceptID string
	FreeText  string
}

// OpenAlexBackend retrieves works from the OpenAlex API.
type OpenAlexBackend struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email     string
	UserAgent string
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return "openalex" }

// Retrieve fetches up to cfg.MaxResults works matching the query,
// restricted to works with abstracts published within the last
// cfg.SinceYears years. Each work's referenced_works become the
// candidate's CitedIDs, the raw material for the citation subgraph.
func (b *OpenAlexBackend) Retrieve(ctx context.Context, query Query, cfg types.RetrievalConfig) ([]types.Candidate, error) {
	if query.ConceptID == "" && strings.TrimSpace(query.FreeText) == "" {
		return nil, fmt.Errorf("empty OpenAlex works query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	if maxResults > 200 {
		maxResults = 200
	}

	sinceYears := cfg.SinceYears
	if sinceYears <= 0 {
		sinceYears = 10
	}
	fromDate := time.Now().UTC().AddDate(-sinceYears, 0, 0).Format("2006-01-02")

	filters := []string{
		"has_abstract:true",
		"from_publication_date:" + fromDate,
	}
	if query.ConceptID != "" {
		filters = append(filters, "concepts.id:"+conceptKey(query.ConceptID))
	}

	params := url.Values{
		"filter":   {strings.Join(filters, ",")},
		"per_page": {fmt.Sprintf("%d", maxResults)},
		"page":     {"1"},
		"sort":     {"relevance_score:desc"},
	}
	// Free text stays as a search signal even when the concept filter
	// is active.
	if strings.TrimSpace(query.FreeText) != "" {
		params.Set("search", query.FreeText)
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	reqURL := openAlexWorksBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex works request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex works API returned HTTP %d", resp.StatusCode)
	}

	var oar worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex works response: %w", err)
	}

	var candidates []types.Candidate
	for _, work := range oar.Results {
		if work.ID == "" {
			continue
		}
		c := types.Candidate{
			ID:        workKey(work.ID),
			Title:     work.Title,
			Abstract:  reconstructAbstract(work.AbstractInvertedIndex),
			Year:      work.PublicationYear,
			CitedBy:   work.CitedByCount,
			Community: -1,
		}
		for _, authorship := range work.Authorships {
			if authorship.Author.DisplayName != "" {
				c.Authors = append(c.Authors, authorship.Author.DisplayName)
			}
		}
		for _, ref := range work.ReferencedWorks {
			if ref != "" {
				c.CitedIDs = append(c.CitedIDs, workKey(ref))
			}
		}
		for _, topic := range work.Topics {
			if topic.DisplayName != "" {
				c.Topics = append(c.Topics, topic.DisplayName)
			}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// workKey strips the https://openalex.org/ prefix so candidate ids and
// referenced_works ids compare equal.
func workKey(id string) string {
	return strings.TrimPrefix(id, "https://openalex.org/")
}

// conceptKey accepts either a bare concept id (C12345) or the full
// OpenAlex URL form.
func conceptKey(id string) string {
	return strings.TrimPrefix(id, "https://openalex.org/")
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back
// to plain text. The inverted index maps each word to a list of
// positions where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	// Build position→word pairs.
	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex Works API JSON structures.
type worksResponse struct {
	Meta    worksMeta      `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type worksMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	ReferencedWorks       []string             `json:"referenced_works"`
	Topics                []openAlexTopic      `json:"topics"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexTopic struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
