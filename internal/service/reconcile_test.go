package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialcore/internal/counter"
	"socialcore/internal/model"
)

func TestRebuild_RepairsDriftedCounters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	post := h.store.AddPost(h.alice.ID, "Sunset")

	_, err := toggle(h, h.bob.ID, model.TargetPost, post.ID)
	require.NoError(t, err)
	require.NoError(t, h.follows.Follow(ctx, h.bob.ID, h.alice.ID))

	h.store.SetPostLikes(post.ID, 7)
	h.store.SetFollowCounts(h.alice.ID, -2, 4)

	stats, err := h.counters.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, counter.RebuildStats{Posts: 1, Users: 1}, stats)

	assert.Equal(t, 1, h.store.Post(post.ID).Likes)
	assert.Equal(t, 1, h.store.User(h.alice.ID).FollowersCount)
	assert.Equal(t, 0, h.store.User(h.alice.ID).FollowingCount)

	stats, err = h.counters.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, counter.RebuildStats{}, stats, "a consistent store needs no fixes")
}
