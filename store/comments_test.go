package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beatpress/store"
)

func TestAddCommentAndList(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	c1, err := cs.AddComment(ctx, post.ID, sub, "great track")
	require.NoError(t, err)
	assert.NotEmpty(t, c1.ID)
	assert.Equal(t, "bisi", c1.Author.Username)

	c2, err := cs.AddComment(ctx, post.ID, author, "thanks")
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)

	comments, err := cs.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "great track", comments[0].Text)
}

func TestAddCommentValidation(t *testing.T) {
	cs, _, _, author, _ := newTestStore()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})

	_, err := cs.AddComment(context.Background(), post.ID, author, "   ")
	assert.ErrorIs(t, err, store.ErrInvalidArgument)

	_, err = cs.AddComment(context.Background(), 9999, author, "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddReply(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})
	comment, err := cs.AddComment(ctx, post.ID, sub, "question?")
	require.NoError(t, err)

	reply, err := cs.AddReply(ctx, post.ID, comment.ID, author, "answer")
	require.NoError(t, err)
	assert.Equal(t, "ayo", reply.Author.Username)

	_, err = cs.AddReply(ctx, post.ID, "no-such-comment", author, "answer")
	assert.ErrorIs(t, err, store.ErrNotFound)

	comments, err := cs.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, "answer", comments[0].Replies[0].Text)
}

func TestEditComment(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})
	comment, err := cs.AddComment(ctx, post.ID, sub, "first take")
	require.NoError(t, err)

	edited, err := cs.EditComment(ctx, post.ID, comment.ID, sub, "second take")
	require.NoError(t, err)
	assert.Equal(t, "second take", edited.Text)
	assert.Equal(t, comment.CreatedAt, edited.CreatedAt)

	_, err = cs.EditComment(ctx, post.ID, comment.ID, author, "hijack")
	assert.ErrorIs(t, err, store.ErrForbidden)

	_, err = cs.EditComment(ctx, post.ID, "missing", sub, "text")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})
	comment, err := cs.AddComment(ctx, post.ID, sub, "thread root")
	require.NoError(t, err)
	_, err = cs.AddReply(ctx, post.ID, comment.ID, author, "child")
	require.NoError(t, err)

	require.NoError(t, cs.DeleteComment(ctx, post.ID, comment.ID, sub))

	comments, err := cs.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestDeleteCommentNonAuthorForbidden(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})
	comment, err := cs.AddComment(ctx, post.ID, sub, "mine")
	require.NoError(t, err)

	// Someone else's comment and a nonexistent id both report forbidden
	assert.ErrorIs(t, cs.DeleteComment(ctx, post.ID, comment.ID, author), store.ErrForbidden)
	assert.ErrorIs(t, cs.DeleteComment(ctx, post.ID, "no-such-id", sub), store.ErrForbidden)

	comments, err := cs.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestDeleteReply(t *testing.T) {
	cs, _, _, author, sub := newTestStore()
	ctx := context.Background()
	post := mustCreatePost(t, cs, author, store.CreatePostInput{})
	comment, err := cs.AddComment(ctx, post.ID, sub, "root")
	require.NoError(t, err)
	reply, err := cs.AddReply(ctx, post.ID, comment.ID, author, "child")
	require.NoError(t, err)

	// Missing comment is not found; a reply owned by someone else is forbidden
	assert.ErrorIs(t, cs.DeleteReply(ctx, post.ID, "missing", reply.ID, author), store.ErrNotFound)
	assert.ErrorIs(t, cs.DeleteReply(ctx, post.ID, comment.ID, reply.ID, sub), store.ErrForbidden)

	require.NoError(t, cs.DeleteReply(ctx, post.ID, comment.ID, reply.ID, author))
	comments, err := cs.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments[0].Replies)
}
