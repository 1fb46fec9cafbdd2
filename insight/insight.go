package insight

import (
	"fmt"
	"strings"
)

// UnknownRegion fills the region half of a key when no region is given.
const UnknownRegion = "Unknown"

// Query identifies a place to describe. Region is optional.
type Query struct {
	Place  string
	Region string
}

// Validate checks that the query names a place.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Place) == "" {
		return ErrEmptyPlace
	}
	return nil
}

// Key returns the cache key for the query: "<place>, <region>" with both
// halves trimmed and an absent region written as UnknownRegion.
// Comparison is exact, so keys differing only in case are distinct.
func (q Query) Key() string {
	region := strings.TrimSpace(q.Region)
	if region == "" {
		region = UnknownRegion
	}
	return strings.TrimSpace(q.Place) + ", " + region
}

// Spot is a single recommendation inside an Insight.
type Spot struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	WhyCool  string `json:"why_cool"`
	Avoid    string `json:"avoid"`
}

// Insight is the document returned for a place.
type Insight struct {
	Summary string `json:"summary"`
	Spots   []Spot `json:"spots"`
}

// Degraded returns the placeholder served when generation fails.
// It is never cached.
func Degraded(place string) Insight {
	return Insight{
		Summary: fmt.Sprintf("Unable to fetch local insights for %s. The agent might be taking a break.", strings.TrimSpace(place)),
		Spots:   []Spot{},
	}
}
