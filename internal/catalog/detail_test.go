package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detailGateway() *fakeGateway {
	return &fakeGateway{detail: func(id string) (domain.Title, error) {
		for _, t := range sample {
			if t.ID == id {
				return t, nil
			}
		}
		return domain.Title{}, domain.ErrNotFound
	}}
}

func TestDetailStore_KeyedPerTitle(t *testing.T) {
	gw := detailGateway()
	s := NewDetailStore(gw, nil, nil)

	a, err := s.Ensure(context.Background(), "1")
	require.NoError(t, err)
	b, err := s.Ensure(context.Background(), "2")
	require.NoError(t, err)

	assert.Equal(t, "Alpha", a.Title)
	assert.Equal(t, "beta", b.Title)
	assert.Equal(t, cache.StatusReady, s.Entry("1").Status)
	assert.Equal(t, cache.StatusIdle, s.Entry("3").Status)
	assert.Equal(t, int32(2), gw.detailCalls.Load())
}

func TestDetailStore_NotFoundIsTerminalError(t *testing.T) {
	s := NewDetailStore(detailGateway(), nil, nil)

	_, err := s.Ensure(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	e := s.Entry("missing")
	assert.Equal(t, cache.StatusError, e.Status)
	assert.Equal(t, domain.KindNotFound, e.Kind())
	assert.False(t, e.Kind().Retryable())
	assert.False(t, e.HasValue)
}

func TestDetailStore_LazyHydration(t *testing.T) {
	snap := newMemSnapshot()
	snap.catalogAt = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, snap.SaveTitle(domain.Title{ID: "1", Title: "Alpha (cached)"}, snap.catalogAt))

	gw := detailGateway()
	s := NewDetailStore(gw, snap, nil)

	e := s.Entry("1")
	assert.Equal(t, cache.StatusReady, e.Status)
	assert.Equal(t, "Alpha (cached)", e.Value.Title)
	assert.Equal(t, int32(0), gw.detailCalls.Load())

	s.Invalidate("1")
	title, err := s.Ensure(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", title.Title)
	assert.Equal(t, "Alpha", snap.titles["1"].Title, "fresh detail is persisted")
}
