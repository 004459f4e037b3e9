package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beatpress/models"
	"beatpress/store"
)

func mustCreatePost(t *testing.T, cs *store.ContentStore, author store.Identity, in store.CreatePostInput) *models.Post {
	t.Helper()
	if in.Title == "" {
		in.Title = "first beat"
	}
	if in.Content == "" {
		in.Content = "some content"
	}
	if in.Category == "" {
		in.Category = "music"
	}
	post, err := cs.CreatePost(context.Background(), author, in)
	require.NoError(t, err)
	return post
}

func TestCreatePostValidation(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	ctx := context.Background()

	_, err := cs.CreatePost(ctx, author, store.CreatePostInput{Content: "c", Category: "music"})
	assert.ErrorIs(t, err, store.ErrInvalidArgument)

	_, err = cs.CreatePost(ctx, author, store.CreatePostInput{Title: "t", Category: "music"})
	assert.ErrorIs(t, err, store.ErrInvalidArgument)

	_, err = cs.CreatePost(ctx, author, store.CreatePostInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func TestCreatePostNormalizesCategory(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{Category: "  hip   HOP "})
	assert.Equal(t, "Hip Hop", post.Category)
}

func TestCreatePostPremiumRequiresSubscriber(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()

	_, err := cs.CreatePost(ctx, author, store.CreatePostInput{
		Title: "t", Content: "c", Category: "music", IsPremium: true,
	})
	assert.ErrorIs(t, err, store.ErrPermissionDenied)

	_, err = cs.CreatePost(ctx, author, store.CreatePostInput{
		Title: "t", Content: "c", Category: "music", MusicURL: "/static/uploads/music/x.mp3",
	})
	assert.ErrorIs(t, err, store.ErrPermissionDenied)

	post, err := cs.CreatePost(ctx, sub, store.CreatePostInput{
		Title: "t", Content: "c", Category: "music", IsPremium: true, MusicURL: "/static/uploads/music/x.mp3",
	})
	require.NoError(t, err)
	assert.True(t, post.IsPremium)
	assert.Equal(t, sub.ID, post.AuthorID)
}

func TestCreatePostGatesOnStoredUserNotClaim(t *testing.T) {
	cs, _, users, author, _ := newTestStore()

	// Stale claim says subscriber but the account is not
	stale := store.Identity{ID: author.ID, Username: author.Username, IsSubscriber: true}
	_, err := cs.CreatePost(context.Background(), stale, store.CreatePostInput{
		Title: "t", Content: "c", Category: "music", IsPremium: true,
	})
	assert.ErrorIs(t, err, store.ErrPermissionDenied)

	u, _ := users.Get(context.Background(), author.ID)
	u.IsSubscriber = true
	require.NoError(t, users.Save(context.Background(), u))

	_, err = cs.CreatePost(context.Background(), author, store.CreatePostInput{
		Title: "t", Content: "c", Category: "music", IsPremium: true,
	})
	assert.NoError(t, err)
}

func TestUpdatePostPatchSemantics(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{Title: "old", Content: "body", Category: "music"})

	newTitle := "new title"
	updated, err := cs.UpdatePost(ctx, post.ID, author, store.PostPatch{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "body", updated.Content)
	assert.Equal(t, "Music", updated.Category)

	empty := "   "
	_, err = cs.UpdatePost(ctx, post.ID, author, store.PostPatch{Title: &empty})
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func TestUpdatePostOnlyAuthor(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	title := "hijack"
	_, err := cs.UpdatePost(context.Background(), post.ID, sub, store.PostPatch{Title: &title})
	assert.ErrorIs(t, err, store.ErrForbidden)
}

func TestUpdatePostPremiumUpgradeRequiresSubscriber(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	premium := true
	_, err := cs.UpdatePost(context.Background(), post.ID, author, store.PostPatch{IsPremium: &premium})
	assert.ErrorIs(t, err, store.ErrPermissionDenied)

	// Clearing a music URL needs no subscription
	none := ""
	_, err = cs.UpdatePost(context.Background(), post.ID, author, store.PostPatch{MusicURL: &none})
	assert.NoError(t, err)
}

func TestDeletePost(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	assert.ErrorIs(t, cs.DeletePost(ctx, post.ID, sub), store.ErrForbidden)
	require.NoError(t, cs.DeletePost(ctx, post.ID, author))
	assert.ErrorIs(t, cs.DeletePost(ctx, post.ID, author), store.ErrNotFound)
}

func TestFetchOneCountsViews(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	first, err := cs.FetchOne(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Views)

	second, err := cs.FetchOne(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Views)
	assert.Equal(t, "ayo", second.Author.Username)
}

func TestFetchOneConcurrentViewsNeverLost(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := cs.FetchOne(context.Background(), post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := cs.FetchOne(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), final.Views)
}

func TestFetchOneMissing(t *testing.T) {
	cs, _, _, _, _ := newTestStore()
	_, err := cs.FetchOne(context.Background(), 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListPagination(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		mustCreatePost(t, cs, author, store.CreatePostInput{Title: "post", Content: "c", Category: "music"})
	}

	page, err := cs.List(ctx, store.ListFilter{}, 1, 5)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(12), page.Total)
	assert.True(t, page.HasMore)

	last, err := cs.List(ctx, store.ListFilter{}, 3, 5)
	require.NoError(t, err)
	assert.Len(t, last.Items, 2)
	assert.False(t, last.HasMore)
}

func TestListCapsPageSize(t *testing.T) {
	cs, _, _, _, _ := newTestStore()
	page, err := cs.List(context.Background(), store.ListFilter{}, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, store.MaxPageSize, page.PageSize)
}

func TestListCategoryFilterNormalizes(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	ctx := context.Background()
	mustCreatePost(t, cs, author, store.CreatePostInput{Title: "a", Content: "c", Category: "tech news"})
	mustCreatePost(t, cs, author, store.CreatePostInput{Title: "b", Content: "c", Category: "music"})

	page, err := cs.List(ctx, store.ListFilter{Category: "  TECH news "}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].Title)
}

func TestTrendingOrdersByViews(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	ctx := context.Background()
	quiet := mustCreatePost(t, cs, author, store.CreatePostInput{Title: "quiet"})
	loud := mustCreatePost(t, cs, author, store.CreatePostInput{Title: "loud"})
	for i := 0; i < 3; i++ {
		_, err := cs.FetchOne(ctx, loud.ID)
		require.NoError(t, err)
	}

	top, err := cs.Trending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, loud.ID, top[0].ID)
	assert.Equal(t, quiet.ID, top[1].ID)
}

func TestPremiumFeedOnlyPremium(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	mustCreatePost(t, cs, author, store.CreatePostInput{Title: "free"})
	mustCreatePost(t, cs, sub, store.CreatePostInput{Title: "paid", IsPremium: true})

	page, err := cs.PremiumFeed(ctx, store.ListFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "paid", page.Items[0].Title)
}

func TestDeleteUserCascadesPosts(t *testing.T) {
	cs, posts, _, author, sub := newTestStore()
	ctx := context.Background()
	mine := mustCreatePost(t, cs, author, store.CreatePostInput{Title: "mine"})
	theirs := mustCreatePost(t, cs, sub, store.CreatePostInput{Title: "theirs"})

	// The departing user also commented on the surviving post
	_, err := cs.AddComment(ctx, theirs.ID, author, "bye")
	require.NoError(t, err)

	require.NoError(t, cs.DeleteUser(ctx, author.ID))

	_, err = posts.Get(ctx, mine.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	comments, err := cs.ListComments(ctx, theirs.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, models.DeletedAuthorName, comments[0].Author.Username)
}

func TestActivateSubscription(t *testing.T) {
	cs, _, users, author, _ := newTestStore()
	ctx := context.Background()

	user, err := cs.ActivateSubscription(ctx, author.ID, "CUS_x", "SUB_y")
	require.NoError(t, err)
	assert.True(t, user.IsSubscriber)
	require.NotNil(t, user.SubscribedAt)
	first := *user.SubscribedAt

	// Re-activation keeps the original subscription date
	again, err := cs.ActivateSubscription(ctx, author.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, first, *again.SubscribedAt)
	assert.Equal(t, "CUS_x", again.PaystackCustomerCode)

	stored, err := users.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSubscriber)
}

func TestActivateSubscriptionByEmailUnknown(t *testing.T) {
	cs, _, _, _, _ := newTestStore()
	_, err := cs.ActivateSubscriptionByEmail(context.Background(), "nobody@example.com", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestActivityCollectsEverything(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	own := mustCreatePost(t, cs, author, store.CreatePostInput{Title: "own"})
	other := mustCreatePost(t, cs, sub, store.CreatePostInput{Title: "other"})

	comment, err := cs.AddComment(ctx, other.ID, author, "nice one")
	require.NoError(t, err)
	_, err = cs.AddReply(ctx, other.ID, comment.ID, author, "seconded")
	require.NoError(t, err)
	require.NoError(t, cs.Rate(ctx, other.ID, author, 5))

	activity, err := cs.Activity(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, activity.Posts, 1)
	assert.Equal(t, own.ID, activity.Posts[0].ID)
	require.Len(t, activity.Comments, 1)
	assert.Equal(t, "nice one", activity.Comments[0].Text)
	require.Len(t, activity.Replies, 1)
	require.Len(t, activity.Ratings, 1)
	assert.Equal(t, 5, activity.Ratings[0].Value)
}
