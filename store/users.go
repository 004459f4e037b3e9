package store

import (
	"context"
	"fmt"
	"time"

	"beatpress/models"
)

// ActivityItem points at something a user did inside some post.
type ActivityItem struct {
	PostID    uint      `json:"post_id"`
	PostTitle string    `json:"post_title"`
	Text      string    `json:"text,omitempty"`
	Value     int       `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// UserActivity aggregates a user's posts, comments, replies, and ratings
// across all posts for their public profile.
type UserActivity struct {
	Posts    []models.Post  `json:"posts"`
	Comments []ActivityItem `json:"comments"`
	Replies  []ActivityItem `json:"replies"`
	Ratings  []ActivityItem `json:"ratings"`
}

// DeleteUser removes the user and cascades deletion of every post they
// authored. Comments, replies, and ratings they left inside other users'
// posts are intentionally left behind; those author references dangle and
// display as the deleted-user placeholder.
func (s *ContentStore) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return err
	}
	if err := s.posts.DeleteByAuthor(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Infow("user deleted with authored posts", "user_id", userID)
	return nil
}

// ActivateSubscription marks a user as subscriber after a successful payment
// verification. This is the only path that sets subscription fields.
func (s *ContentStore) ActivateSubscription(ctx context.Context, userID uint, customerCode, subscriptionCode string) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.activate(user, customerCode, subscriptionCode)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ActivateSubscriptionByEmail is the webhook variant keyed on the paying
// customer's email.
func (s *ContentStore) ActivateSubscriptionByEmail(ctx context.Context, email, customerCode, subscriptionCode string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.activate(user, customerCode, subscriptionCode)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ContentStore) activate(user *models.User, customerCode, subscriptionCode string) {
	now := time.Now()
	user.IsSubscriber = true
	if user.SubscribedAt == nil {
		user.SubscribedAt = &now
	}
	if customerCode != "" {
		user.PaystackCustomerCode = customerCode
	}
	if subscriptionCode != "" {
		user.PaystackSubscriptionCode = subscriptionCode
	}
	user.RenewalReminderSent = false
	s.log.Infow("subscription activated", "user_id", user.ID)
}

// Activity walks every post and collects the user's posts, comments,
// replies, and ratings.
func (s *ContentStore) Activity(ctx context.Context, userID uint) (*UserActivity, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	all, err := s.posts.All(ctx)
	if err != nil {
		return nil, err
	}

	activity := &UserActivity{
		Posts:    []models.Post{},
		Comments: []ActivityItem{},
		Replies:  []ActivityItem{},
		Ratings:  []ActivityItem{},
	}
	for i := range all {
		post := all[i]
		if post.AuthorID == userID {
			activity.Posts = append(activity.Posts, post)
		}
		for _, c := range post.Comments {
			if c.AuthorID == userID {
				activity.Comments = append(activity.Comments, ActivityItem{
					PostID: post.ID, PostTitle: post.Title, Text: c.Text, CreatedAt: c.CreatedAt,
				})
			}
			for _, r := range c.Replies {
				if r.AuthorID == userID {
					activity.Replies = append(activity.Replies, ActivityItem{
						PostID: post.ID, PostTitle: post.Title, Text: r.Text, CreatedAt: r.CreatedAt,
					})
				}
			}
		}
		for _, r := range post.Ratings {
			if r.UserID == userID {
				activity.Ratings = append(activity.Ratings, ActivityItem{
					PostID: post.ID, PostTitle: post.Title, Value: r.Value,
				})
			}
		}
	}
	s.resolvePosts(ctx, activity.Posts)
	return activity, nil
}
