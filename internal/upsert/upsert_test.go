package upsert

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	desired := map[string]any{"displayName": "Group", "description": "managed", "count": 2}

	tests := []struct {
		name     string
		existing *model.ExistingRef
		opts     Options
		want     model.DecisionAction
	}{
		{
			name: "missing creates",
			want: model.DecisionCreate,
		},
		{
			name:     "force overrides equality",
			existing: &model.ExistingRef{ID: "1", Raw: map[string]any{"displayName": "Group", "description": "managed", "count": float64(2)}},
			opts:     Options{ForceUpdate: true},
			want:     model.DecisionUpdate,
		},
		{
			name:     "equal skips",
			existing: &model.ExistingRef{ID: "1", Raw: map[string]any{"id": "1", "displayName": "Group", "description": "managed", "count": float64(2), "createdDateTime": "x"}},
			want:     model.DecisionSkip,
		},
		{
			name:     "drift updates by default",
			existing: &model.ExistingRef{ID: "1", Raw: map[string]any{"displayName": "Group", "description": "old", "count": 2}},
			want:     model.DecisionUpdate,
		},
		{
			name:     "drift skips under skip policy",
			existing: &model.ExistingRef{ID: "1", Raw: map[string]any{"displayName": "Group", "description": "old", "count": 2}},
			opts:     Options{Policy: PolicySkip},
			want:     model.DecisionSkip,
		},
		{
			name:     "unknown attributes update",
			existing: &model.ExistingRef{ID: "1"},
			want:     model.DecisionUpdate,
		},
		{
			name:     "ignored drift skips",
			existing: &model.ExistingRef{ID: "1", Raw: map[string]any{"displayName": "Group", "description": "old", "count": 2}},
			opts:     Options{Ignore: []string{"description"}},
			want:     model.DecisionSkip,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Decide(tt.existing, desired, tt.opts)
			require.Equal(t, tt.want, got.Action)
			require.NotEmpty(t, got.Reason)
		})
	}
}

func TestDecideIsPure(t *testing.T) {
	t.Parallel()

	existing := &model.ExistingRef{ID: "1", Raw: map[string]any{"displayName": "A"}}
	desired := map[string]any{"displayName": "A", "extra": []any{"x"}}

	first := Decide(existing, desired, Options{})
	second := Decide(existing, desired, Options{})
	require.Equal(t, first, second)
	require.Equal(t, map[string]any{"displayName": "A"}, existing.Raw)
	require.Equal(t, "changed: extra", first.Reason)
}

func TestDifferences(t *testing.T) {
	t.Parallel()

	existing := map[string]any{
		"a":              map[string]any{"k": []any{float64(1), "two"}},
		"b":              "same",
		"onlyRemote":     true,
		"@odata.context": "ctx",
	}
	desired := map[string]any{
		"a":                    map[string]any{"k": []int{1}},
		"b":                    "same",
		"c":                    nil,
		"@odata.type":          "#microsoft.graph.group",
		"members@odata.bind":   []string{"x"},
		"lastModifiedDateTime": "now",
	}

	require.Equal(t, []string{"a", "c"}, Differences(existing, desired, nil))
}

func TestEqualNormalizesNumbers(t *testing.T) {
	t.Parallel()

	require.True(t, Equal(map[string]any{"n": 1}, map[string]any{"n": float64(1)}))
	require.True(t, Equal([]string{"a"}, []any{"a"}))
	require.False(t, Equal([]any{"a", "b"}, []any{"b", "a"}))
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyUpdate, p)

	p, err = ParsePolicy(" Skip ")
	require.NoError(t, err)
	require.Equal(t, PolicySkip, p)

	_, err = ParsePolicy("merge")
	require.Error(t, err)
}
