package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedProviderLoads(t *testing.T) {
	p, err := NewEmbeddedProvider()
	require.NoError(t, err)

	for _, category := range []string{"context", "premise", "elaboration", "directive", "reference", "query", "background", "closing"} {
		fragments, err := p.GetPool(category, "")
		require.NoError(t, err, "category %q", category)
		assert.NotEmpty(t, fragments)
		for _, f := range fragments {
			assert.Equal(t, category, f.Category)
			assert.NotEmpty(t, f.Text)
			assert.Greater(t, f.Weight, 0.0)
		}
	}
}

func TestEmbeddedProviderUnknownCategory(t *testing.T) {
	p, err := NewEmbeddedProvider()
	require.NoError(t, err)

	_, err = p.GetPool("nonexistent", "")
	var unknownErr *UnknownCategoryError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "nonexistent", unknownErr.Category)
}

func TestEmbeddedProviderTargetFiltering(t *testing.T) {
	p, err := NewEmbeddedProvider()
	require.NoError(t, err)

	all, err := p.GetPool("query", "")
	require.NoError(t, err)

	filtered, err := p.GetPool("query", "study")
	require.NoError(t, err)
	assert.NotEmpty(t, filtered)
	assert.LessOrEqual(t, len(filtered), len(all))

	for _, f := range filtered {
		if len(f.Targets) == 0 {
			continue
		}
		assert.Contains(t, f.Targets, "study")
	}
}

func TestEmbeddedProviderUnmatchedTargetFallsBack(t *testing.T) {
	p, err := NewEmbeddedProvider()
	require.NoError(t, err)

	// A target nobody lists must still yield the untargeted fragments, never
	// an empty pool for a known category.
	fragments, err := p.GetPool("context", "no-such-target")
	require.NoError(t, err)
	assert.NotEmpty(t, fragments)
}

func TestLoadFragmentsRejectsInvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing fragments key", `{"items": []}`},
		{"empty fragment list", `{"fragments": []}`},
		{"unknown category", `{"fragments": [{"text": "x", "category": "bogus"}]}`},
		{"missing text", `{"fragments": [{"category": "context"}]}`},
		{"negative weight", `{"fragments": [{"text": "x", "category": "context", "weight": -1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFragments([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation")
		})
	}
}

func TestLoadFragmentsDefaultsWeight(t *testing.T) {
	p, err := loadFragments([]byte(`{"fragments": [{"text": "x", "category": "context"}]}`))
	require.NoError(t, err)

	fragments, err := p.GetPool("context", "")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, 1.0, fragments[0].Weight)
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider([]Fragment{
		{Text: "a", Category: "context"},
		{Text: "b", Category: "context", Weight: 2},
		{Text: "c", Category: "query"},
	})

	contexts, err := p.GetPool("context", "anything")
	require.NoError(t, err)
	assert.Len(t, contexts, 2)

	_, err = p.GetPool("missing", "")
	var unknownErr *UnknownCategoryError
	require.ErrorAs(t, err, &unknownErr)
}
