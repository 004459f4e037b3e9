package store

import (
	"context"
	"fmt"
	"math"

	"beatpress/models"
)

// Rate records a 1-5 rating by the caller. A user holds at most one rating
// per post; a second attempt is rejected, never merged or overwritten.
func (s *ContentStore) Rate(ctx context.Context, postID uint, user Identity, value int) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidArgument)
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if _, ok := post.RatingBy(user.ID); ok {
		return fmt.Errorf("%w: post already rated", ErrConflict)
	}

	post.Ratings = append(post.Ratings, models.Rating{UserID: user.ID, Value: value})
	touch(post)
	return s.posts.Save(ctx, post)
}

// RatingSummary returns the average rating rounded to one decimal and the
// rating count. A post without ratings yields average 0, not an error.
func (s *ContentStore) RatingSummary(ctx context.Context, postID uint) (float64, int, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return 0, 0, err
	}
	count := len(post.Ratings)
	if count == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, r := range post.Ratings {
		sum += r.Value
	}
	avg := math.Round(float64(sum)/float64(count)*10) / 10
	return avg, count, nil
}

// MyRating returns the caller's rating on a post. The boolean reports
// whether a rating exists; absence is not an error.
func (s *ContentStore) MyRating(ctx context.Context, postID uint, user Identity) (int, bool, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return 0, false, err
	}
	value, ok := post.RatingBy(user.ID)
	return value, ok, nil
}
