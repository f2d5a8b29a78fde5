// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Concept is a controlled-vocabulary node from the OpenAlex concept
// graph. Resolution maps a free-form query onto one of these so retrieval
// can filter precisely instead of relying on full-text search.
type Concept struct {
	// ID is the OpenAlex concept identifier (e.g. "https://openalex.org/C41008148").
	ID string `json:"id" yaml:"id"`

	// DisplayName is the canonical concept name.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Level is the depth in the concept hierarchy; larger is more specific.
	Level int `json:"level" yaml:"level"`

	// WorksCount is the number of works tagged with this concept.
	WorksCount int `json:"works_count" yaml:"works_count"`
}
