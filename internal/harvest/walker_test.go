package harvest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "adspulse/internal/errors"
)

func decodeJSON(t *testing.T, src string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(src), &v))
	return v
}

func TestWalkObjects(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantVisits int
	}{
		{
			name:       "root object",
			src:        `{"a": 1}`,
			wantVisits: 1,
		},
		{
			name:       "nested objects under keys and arrays",
			src:        `{"meta": {"v": 1}, "days": [{"d": 1}, {"d": 2}]}`,
			wantVisits: 4,
		},
		{
			name:       "array root",
			src:        `[{"a": 1}, {"b": 2}]`,
			wantVisits: 2,
		},
		{
			name:       "scalar root",
			src:        `42`,
			wantVisits: 0,
		},
		{
			name:       "array of scalars",
			src:        `[1, 2, 3]`,
			wantVisits: 0,
		},
		{
			name:       "same shape twice yields twice",
			src:        `{"a": {"d": 1}, "b": {"d": 1}}`,
			wantVisits: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visits := 0
			err := WalkObjects(decodeJSON(t, tt.src), 100, func(map[string]interface{}) {
				visits++
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantVisits, visits)
		})
	}
}

func TestWalkObjects_ParentsBeforeChildrenInKeyOrder(t *testing.T) {
	doc := decodeJSON(t, `{"b": {"tag": "second"}, "a": {"tag": "first"}, "tag": "root"}`)

	var order []string
	err := WalkObjects(doc, 100, func(rec map[string]interface{}) {
		if tag, ok := rec["tag"].(string); ok {
			order = append(order, tag)
		}
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"root", "first", "second"}, order)
}

func TestWalkObjects_DepthLimit(t *testing.T) {
	deep := decodeJSON(t, `{"a": {"a": {"a": {"a": {"a": 1}}}}}`)

	var visits int
	err := WalkObjects(deep, 3, func(map[string]interface{}) { visits++ })
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTooDeep)

	visits = 0
	err = WalkObjects(deep, 10, func(map[string]interface{}) { visits++ })
	require.NoError(t, err)
	assert.Equal(t, 5, visits)
}

func TestWalkObjects_ArraysConsumeDepth(t *testing.T) {
	doc := decodeJSON(t, `[[[{"a": 1}]]]`)

	err := WalkObjects(doc, 2, func(map[string]interface{}) {})
	assert.ErrorIs(t, err, apperrors.ErrTooDeep)

	err = WalkObjects(doc, 10, func(map[string]interface{}) {})
	assert.NoError(t, err)
}
