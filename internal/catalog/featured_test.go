package catalog

import (
	"context"
	"testing"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturedStore_PinsUntilInvalidated(t *testing.T) {
	n := 0
	gw := &fakeGateway{featured: func() (domain.Title, error) {
		n++
		return sample[n%len(sample)], nil
	}}
	s := NewFeaturedStore(gw, nil)

	first, err := s.Ensure(context.Background())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := s.Ensure(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again, "pick is stable across ensures")
	}
	assert.Equal(t, int32(1), gw.featuredCalls.Load())

	s.Invalidate()
	next, err := s.Ensure(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Equal(t, int32(2), gw.featuredCalls.Load())
}

func TestFeaturedStore_NoContent(t *testing.T) {
	gw := &fakeGateway{featured: func() (domain.Title, error) { return domain.Title{}, domain.ErrNoContent }}
	s := NewFeaturedStore(gw, nil)

	_, err := s.Ensure(context.Background())
	require.ErrorIs(t, err, domain.ErrNoContent)
	assert.Equal(t, cache.StatusError, s.Entry().Status)
	assert.Equal(t, domain.KindNoContent, s.Entry().Kind())
}

func TestFeaturedStore_PicksFromPool(t *testing.T) {
	gw := &poolGateway{pool: sample}
	var rolls []int
	s := NewFeaturedStore(gw, nil, WithRandom(func(n int) int {
		rolls = append(rolls, n)
		return n - 1
	}))

	pick, err := s.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3", pick.ID)
	assert.Equal(t, int32(0), gw.featuredCalls.Load(), "pool is preferred over single candidate")

	// Re-rolling never hands back the title being replaced.
	s.Invalidate()
	pick, err = s.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", pick.ID)
	assert.Equal(t, []int{3, 2}, rolls)
}

func TestFeaturedStore_EmptyPool(t *testing.T) {
	s := NewFeaturedStore(&poolGateway{}, nil)
	_, err := s.Ensure(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoContent)
}
