package cache

import "github.com/rohannair2022/unscene-uofthacks13/insight"

// Keyer derives cache keys from queries.
//
// Contract:
// - Determinism: equal queries must produce equal keys.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(q insight.Query) (string, error)
}

// DefaultKeyer uses insight.Query.Key. Every query with a non-blank place
// has a key, whatever its length or content.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns "<place>, <region>" for q.
func (k *DefaultKeyer) Key(q insight.Query) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	return q.Key(), nil
}

var _ Keyer = (*DefaultKeyer)(nil)
