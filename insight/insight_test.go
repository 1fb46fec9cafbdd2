package insight

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryKey(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"place and region", Query{Place: "Springfield", Region: "Illinois"}, "Springfield, Illinois"},
		{"missing region", Query{Place: "Springfield"}, "Springfield, Unknown"},
		{"blank region", Query{Place: "Springfield", Region: "   "}, "Springfield, Unknown"},
		{"surrounding whitespace", Query{Place: "  Paris ", Region: " France\t"}, "Paris, France"},
		{"case preserved", Query{Place: "paris", Region: "france"}, "paris, france"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Key())
		})
	}
}

func TestQueryKey_CaseSensitive(t *testing.T) {
	assert.NotEqual(t, Query{Place: "Paris"}.Key(), Query{Place: "paris"}.Key())
}

func TestQueryValidate(t *testing.T) {
	require.NoError(t, Query{Place: "Oslo"}.Validate())
	assert.ErrorIs(t, Query{}.Validate(), ErrEmptyPlace)
	assert.ErrorIs(t, Query{Place: " \n", Region: "Norway"}.Validate(), ErrEmptyPlace)
}

func TestDegraded(t *testing.T) {
	d := Degraded(" Springfield ")
	assert.Equal(t, "Unable to fetch local insights for Springfield. The agent might be taking a break.", d.Summary)
	require.NotNil(t, d.Spots)
	assert.Empty(t, d.Spots)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"Unable to fetch local insights for Springfield. The agent might be taking a break.","spots":[]}`, string(b))
}

func TestInsightJSON_SpotFieldNames(t *testing.T) {
	in := Insight{Summary: "s", Spots: []Spot{{Name: "n", Category: "Food", WhyCool: "w", Avoid: "a"}}}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"s","spots":[{"name":"n","category":"Food","why_cool":"w","avoid":"a"}]}`, string(b))
}
