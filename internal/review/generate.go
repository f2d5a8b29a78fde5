// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Synthesizer abstracts the generative AI API so tests can supply a
// mock.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string) (string, error)
}

// synthesisPromptTmpl asks the model for a thematic narrative review of
// the grouped papers. Representatives are listed per theme so the model
// grounds its prose in the actual candidates.
var synthesisPromptTmpl = template.Must(template.New("synthesis").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`You are an expert research librarian writing a short literature review.

Research question: {{.Query}}

The candidate papers have been clustered into {{len .Groups}} thematic groups.
For each group, write one paragraph that names the theme, summarizes what the
representative papers contribute, and notes how the theme relates to the
research question. Cite papers by title. Close with a two-sentence synthesis
across all groups. Respond in plain Markdown with one "## Theme" heading per
group.

{{range $i, $g := .Groups}}
Group {{$g.Community}} ({{$g.Size}} papers{{if $g.Keywords}}; keywords: {{join $g.Keywords ", "}}{{end}}):
{{- range $g.Representatives}}
- {{.Title}}{{if .Year}} ({{.Year}}){{end}}{{if .Authors}} — {{join .Authors ", "}}{{end}}
{{- end}}
{{end}}
`))

// genBackoffBase controls the backoff between synthesis attempts.
// Tests override this to avoid real sleeps.
var genBackoffBase = 2 * time.Second

// GenerateReview renders the synthesis prompt for the grouped
// candidates and calls the backend with bounded retries. Groups
// without representatives are skipped; with no usable groups at all
// the function returns an empty review and no error.
func GenerateReview(ctx context.Context, backend Synthesizer, query string, groups []types.Group, cfg types.GenerationConfig) (string, error) {
	prompt, err := renderSynthesisPrompt(query, groups, cfg.PapersPerGroup)
	if err != nil {
		return "", err
	}
	if prompt == "" {
		return "", nil
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * genBackoffBase):
			}
		}
		text, err := backend.Synthesize(ctx, prompt)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("synthesis failed after %d attempts: %w", maxRetries, lastErr)
}

// renderSynthesisPrompt builds the prompt text. It returns "" when no
// group has representatives.
func renderSynthesisPrompt(query string, groups []types.Group, papersPerGroup int) (string, error) {
	if papersPerGroup <= 0 {
		papersPerGroup = 3
	}

	var usable []types.Group
	for _, g := range groups {
		if len(g.Representatives) == 0 {
			continue
		}
		reps := g.Representatives
		if len(reps) > papersPerGroup {
			reps = reps[:papersPerGroup]
		}
		trimmed := g
		trimmed.Representatives = reps
		usable = append(usable, trimmed)
	}
	if len(usable) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	data := struct {
		Query  string
		Groups []types.Group
	}{Query: query, Groups: usable}
	if err := synthesisPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering synthesis prompt: %w", err)
	}
	return buf.String(), nil
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude API to synthesize the review text.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Synthesize sends the prompt to the Claude Messages API and returns
// the text content of the response.
func (c *ClaudeBackend) Synthesize(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}
