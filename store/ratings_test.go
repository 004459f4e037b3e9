package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beatpress/models"
	"beatpress/store"
)

func TestRateValidation(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	assert.ErrorIs(t, cs.Rate(context.Background(), post.ID, author, 0), store.ErrInvalidArgument)
	assert.ErrorIs(t, cs.Rate(context.Background(), post.ID, author, 6), store.ErrInvalidArgument)
	// Value is checked before post existence
	assert.ErrorIs(t, cs.Rate(context.Background(), 9999, author, 0), store.ErrInvalidArgument)
	assert.ErrorIs(t, cs.Rate(context.Background(), 9999, author, 3), store.ErrNotFound)
}

func TestRateOncePerUser(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	require.NoError(t, cs.Rate(ctx, post.ID, sub, 4))
	assert.ErrorIs(t, cs.Rate(ctx, post.ID, sub, 5), store.ErrConflict)

	// The original value survives the rejected re-rate
	value, rated, err := cs.MyRating(ctx, post.ID, sub)
	require.NoError(t, err)
	assert.True(t, rated)
	assert.Equal(t, 4, value)
}

func TestRatingSummaryRounding(t *testing.T) {
	cs, _, users, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	third := store.Identity{ID: 0}
	u := models.User{Username: "chi", Email: "chi@example.com"}
	third.ID = users.add(u).ID

	require.NoError(t, cs.Rate(ctx, post.ID, author, 4))
	require.NoError(t, cs.Rate(ctx, post.ID, sub, 5))
	require.NoError(t, cs.Rate(ctx, post.ID, third, 3))

	avg, count, err := cs.RatingSummary(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 3, count)
}

func TestRatingSummaryOneDecimal(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	require.NoError(t, cs.Rate(ctx, post.ID, author, 4))
	require.NoError(t, cs.Rate(ctx, post.ID, sub, 5))

	avg, count, err := cs.RatingSummary(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, avg)
	assert.Equal(t, 2, count)
}

func TestRatingSummaryEmpty(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	avg, count, err := cs.RatingSummary(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)
}

func TestMyRatingAbsent(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	value, rated, err := cs.MyRating(context.Background(), post.ID, sub)
	require.NoError(t, err)
	assert.False(t, rated)
	assert.Zero(t, value)

	_, _, err = cs.MyRating(context.Background(), 9999, sub)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
