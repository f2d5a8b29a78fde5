// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/review-engine/internal/httputil"
	"github.com/pdiddy/review-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// --- reconstructAbstract ---

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{
			name:  "empty map",
			index: map[string][]int{},
			want:  "",
		},
		{
			name:  "nil map",
			index: nil,
			want:  "",
		},
		{
			name:  "single word",
			index: map[string][]int{"hello": {0}},
			want:  "hello",
		},
		{
			name: "multi-word ordered",
			index: map[string][]int{
				"We":      {0},
				"propose": {1},
				"a":       {2},
				"new":     {3},
				"method":  {4},
			},
			want: "We propose a new method",
		},
		{
			name: "repeated word",
			index: map[string][]int{
				"the": {0, 2},
				"cat": {1},
				"sat": {3},
			},
			want: "the cat the sat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconstructAbstract(tt.index)
			if got != tt.want {
				t.Errorf("reconstructAbstract() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- workKey / conceptKey ---

func TestWorkKeyStripsPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://openalex.org/W1234", "W1234"},
		{"W1234", "W1234"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := workKey(tt.in); got != tt.want {
			t.Errorf("workKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := conceptKey("https://openalex.org/C42"); got != "C42" {
		t.Errorf("conceptKey() = %q, want %q", got, "C42")
	}
}

// --- Retrieve ---

const worksFixture = `{
  "meta": {"count": 2, "per_page": 20, "page": 1},
  "results": [
    {
      "id": "https://openalex.org/W1",
      "title": "Graph ranking for literature search",
      "publication_year": 2023,
      "cited_by_count": 42,
      "authorships": [
        {"author": {"id": "https://openalex.org/A1", "display_name": "Ada Lovelace"}},
        {"author": {"id": "https://openalex.org/A2", "display_name": ""}}
      ],
      "abstract_inverted_index": {"Ranking": [0], "papers": [1], "by": [2], "citations": [3]},
      "referenced_works": ["https://openalex.org/W2", "https://openalex.org/W99", ""],
      "topics": [
        {"id": "https://openalex.org/T1", "display_name": "Information retrieval"},
        {"id": "https://openalex.org/T2", "display_name": ""}
      ]
    },
    {
      "id": "https://openalex.org/W2",
      "title": "Foundations of citation analysis",
      "publication_year": 2018,
      "cited_by_count": 900,
      "authorships": [],
      "abstract_inverted_index": {"Citations": [0], "matter": [1]},
      "referenced_works": [],
      "topics": []
    },
    {
      "id": "",
      "title": "broken entry"
    }
  ]
}`

func TestRetrieveParsesWorks(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(worksFixture))
	}))
	defer srv.Close()

	orig := openAlexWorksBase
	openAlexWorksBase = srv.URL
	defer func() { openAlexWorksBase = orig }()

	backend := &OpenAlexBackend{Client: srv.Client(), Email: "reviewer@example.org"}
	cfg := types.RetrievalConfig{MaxResults: 20, SinceYears: 10}

	candidates, err := backend.Retrieve(context.Background(), Query{ConceptID: "C42", FreeText: "citation ranking"}, cfg)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}

	if !strings.Contains(gotURL, "concepts.id%3AC42") {
		t.Errorf("request URL missing concept filter: %s", gotURL)
	}
	if !strings.Contains(gotURL, "has_abstract%3Atrue") {
		t.Errorf("request URL missing abstract filter: %s", gotURL)
	}
	if !strings.Contains(gotURL, "mailto=reviewer%40example.org") {
		t.Errorf("request URL missing mailto: %s", gotURL)
	}

	// Entries without an id are dropped.
	if len(candidates) != 2 {
		t.Fatalf("Retrieve() returned %d candidates, want 2", len(candidates))
	}

	first := candidates[0]
	if first.ID != "W1" {
		t.Errorf("ID = %q, want W1", first.ID)
	}
	if first.Abstract != "Ranking papers by citations" {
		t.Errorf("Abstract = %q", first.Abstract)
	}
	if want := []string{"Ada Lovelace"}; !reflect.DeepEqual(first.Authors, want) {
		t.Errorf("Authors = %v, want %v", first.Authors, want)
	}
	if want := []string{"W2", "W99"}; !reflect.DeepEqual(first.CitedIDs, want) {
		t.Errorf("CitedIDs = %v, want %v", first.CitedIDs, want)
	}
	if want := []string{"Information retrieval"}; !reflect.DeepEqual(first.Topics, want) {
		t.Errorf("Topics = %v, want %v", first.Topics, want)
	}
	if first.CitedBy != 42 {
		t.Errorf("CitedBy = %d, want 42", first.CitedBy)
	}
	if first.Community != -1 {
		t.Errorf("Community = %d, want -1 before clustering", first.Community)
	}
}

func TestRetrieveFreeTextWithoutConcept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "graph clustering" {
			t.Errorf("search param = %q, want %q", got, "graph clustering")
		}
		if filter := r.URL.Query().Get("filter"); strings.Contains(filter, "concepts.id") {
			t.Errorf("unexpected concept filter: %q", filter)
		}
		w.Write([]byte(`{"meta": {}, "results": []}`))
	}))
	defer srv.Close()

	orig := openAlexWorksBase
	openAlexWorksBase = srv.URL
	defer func() { openAlexWorksBase = orig }()

	backend := &OpenAlexBackend{Client: srv.Client()}
	candidates, err := backend.Retrieve(context.Background(), Query{FreeText: "graph clustering"}, types.RetrievalConfig{})
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Retrieve() = %d candidates, want 0", len(candidates))
	}
}

func TestRetrieveRejectsEmptyQuery(t *testing.T) {
	backend := &OpenAlexBackend{}
	if _, err := backend.Retrieve(context.Background(), Query{}, types.RetrievalConfig{}); err == nil {
		t.Fatal("Retrieve() with empty query did not error")
	}
}

func TestRetrieveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	orig := openAlexWorksBase
	openAlexWorksBase = srv.URL
	defer func() { openAlexWorksBase = orig }()

	backend := &OpenAlexBackend{Client: srv.Client()}
	_, err := backend.Retrieve(context.Background(), Query{FreeText: "x y z"}, types.RetrievalConfig{})
	if err == nil {
		t.Fatal("Retrieve() on HTTP 403 did not error")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error %q does not mention status", err)
	}
}
