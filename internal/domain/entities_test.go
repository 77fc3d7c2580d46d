package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteSet_CopyOnWrite(t *testing.T) {
	base := NewFavoriteSet("1")

	added := base.With("2")
	removed := base.Without("1")

	assert.Equal(t, []string{"1"}, base.IDs())
	assert.Equal(t, []string{"1", "2"}, added.IDs())
	assert.Equal(t, 0, removed.Len())
	assert.True(t, base.WithMembership("3", true).Has("3"))
	assert.False(t, base.WithMembership("1", false).Has("1"))
}

func TestFavoriteSet_ZeroValue(t *testing.T) {
	var s FavoriteSet
	assert.False(t, s.Has("1"))
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.With("1").Has("1"))
	assert.True(t, s.Equal(NewFavoriteSet()))
}

func TestFavoriteSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewFavoriteSet("b", "a"))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(data))

	var s FavoriteSet
	require.NoError(t, json.Unmarshal([]byte(`["x","y",""]`), &s))
	assert.True(t, s.Equal(NewFavoriteSet("x", "y")))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{fmt.Errorf("%w: dial tcp", ErrNetwork), KindNetwork},
		{ErrAuth, KindAuth},
		{fmt.Errorf("movie 9: %w", ErrNotFound), KindNotFound},
		{ErrNoContent, KindNoContent},
		{ErrMutationInProgress, KindMutationInProgress},
		{fmt.Errorf("boom"), KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "error %v", tt.err)
	}
	assert.True(t, KindNetwork.Retryable())
	assert.False(t, KindAuth.Retryable())
}
