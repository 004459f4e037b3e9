package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"beatpress/models"
)

// AddComment appends a comment to a post and returns it with the author
// resolved to a display summary.
func (s *ContentStore) AddComment(ctx context.Context, postID uint, author Identity, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidArgument)
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Text:      text,
		Replies:   []models.Reply{},
		CreatedAt: time.Now(),
	}
	post.Comments = append(post.Comments, comment)
	touch(post)
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}

	comment.Author = s.resolveAuthor(ctx, author.ID)
	return &comment, nil
}

// AddReply appends a reply to an existing comment.
func (s *ContentStore) AddReply(ctx context.Context, postID uint, commentID string, author Identity, text string) (*models.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: reply text is required", ErrInvalidArgument)
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
	}

	reply := models.Reply{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	comment.Replies = append(comment.Replies, reply)
	touch(post)
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}

	reply.Author = s.resolveAuthor(ctx, author.ID)
	return &reply, nil
}

// EditComment replaces the text of a comment owned by the requester. The
// comment's timestamp is left unchanged.
func (s *ContentStore) EditComment(ctx context.Context, postID uint, commentID string, requester Identity, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidArgument)
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
	}
	if comment.AuthorID != requester.ID {
		return nil, fmt.Errorf("%w: only the author may edit a comment", ErrForbidden)
	}

	comment.Text = text
	touch(post)
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}

	edited := *comment
	edited.Author = s.resolveAuthor(ctx, requester.ID)
	return &edited, nil
}

// DeleteComment removes a comment and all of its replies. The lookup matches
// comment id and author together, so an existing comment owned by someone
// else is reported as forbidden.
func (s *ContentStore) DeleteComment(ctx context.Context, postID uint, commentID string, requester Identity) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}

	idx := -1
	for i := range post.Comments {
		if post.Comments[i].ID == commentID && post.Comments[i].AuthorID == requester.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: only the author may delete a comment", ErrForbidden)
	}

	post.Comments = append(post.Comments[:idx], post.Comments[idx+1:]...)
	touch(post)
	return s.posts.Save(ctx, post)
}

// DeleteReply removes a reply, with the same author-match semantics as
// DeleteComment scoped to the reply.
func (s *ContentStore) DeleteReply(ctx context.Context, postID uint, commentID, replyID string, requester Identity) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
	}

	idx := -1
	for i := range comment.Replies {
		if comment.Replies[i].ID == replyID && comment.Replies[i].AuthorID == requester.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: only the author may delete a reply", ErrForbidden)
	}

	comment.Replies = append(comment.Replies[:idx], comment.Replies[idx+1:]...)
	touch(post)
	return s.posts.Save(ctx, post)
}

// ListComments returns all comments of a post with replies, authors resolved
// to display summaries.
func (s *ContentStore) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments := make([]models.Comment, len(post.Comments))
	copy(comments, post.Comments)
	s.resolveComments(ctx, comments)
	return comments, nil
}
