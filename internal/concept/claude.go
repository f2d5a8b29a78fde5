// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concept

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"unicode"
)

// phrasePromptTmpl instructs the model to translate a research query
// into concise English academic concept phrases as strict JSON.
var phrasePromptTmpl = template.Must(template.New("phrases").Parse(`You are a search engineer for academic retrieval.
Convert the user query into 3-5 concise English academic concept phrases
suitable for looking up controlled-vocabulary concepts.

Rules:
- Phrases must be noun phrases; avoid full sentences.
- Order from most specific to most general.
- Respond with ONLY a JSON object of the form {"phrases": ["...", "..."]}.
  No text outside the JSON object.

User query: {{.Query}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudePhraseBackend asks the Claude API for phrase suggestions.
type ClaudePhraseBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

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

// phraseList is the structured response shape the prompt requests.
type phraseList struct {
	Phrases []string `json:"phrases"`
}

// Phrases calls the Claude API and parses the structured phrase list.
// When the response is not valid JSON it falls back to treating each
// non-empty line as one phrase, so a chatty model still yields usable
// candidates.
func (c *ClaudePhraseBackend) Phrases(ctx context.Context, query string) ([]string, error) {
	var buf bytes.Buffer
	if err := phrasePromptTmpl.Execute(&buf, struct{ Query string }{Query: query}); err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 512,
		Messages: []claudeMessage{
			{Role: "user", Content: buf.String()},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
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
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return nil, fmt.Errorf("decoding Claude response: %w", err)
	}

	text := ""
	for _, block := range cResp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("Claude API returned empty content")
	}

	var pl phraseList
	if err := json.Unmarshal([]byte(text), &pl); err == nil && len(pl.Phrases) > 0 {
		return pl.Phrases, nil
	}

	phrases := parsePhraseLines(text)
	if len(phrases) == 0 {
		return nil, fmt.Errorf("no phrases in Claude response")
	}
	return phrases, nil
}

// parsePhraseLines extracts one phrase per line from free text,
// stripping bullets and leading numbering.
func parsePhraseLines(text string) []string {
	var phrases []string
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		s = strings.TrimLeft(s, "-*• \t")
		s = stripNumbering(s)
		if len(s) < 3 {
			continue
		}
		phrases = append(phrases, s)
		if len(phrases) == maxSuggestedPhrases {
			break
		}
	}
	return phrases
}

// stripNumbering removes a leading "1." / "2)" style list marker.
func stripNumbering(s string) string {
	i := 0
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
