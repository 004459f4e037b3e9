package store

import (
	"context"

	"go.uber.org/zap"

	"beatpress/models"
)

// Identity is the verified caller identity supplied by the authentication
// layer. Ownership checks compare against it, never against client-supplied
// author ids.
type Identity struct {
	ID           uint
	Username     string
	IsSubscriber bool
}

// ListFilter narrows post listings. Category is normalized by the store
// before it reaches the repository.
type ListFilter struct {
	Search    string
	Category  string
	IsPremium *bool
	AuthorID  uint
}

// PostRepository persists Post aggregates. Every mutation is a full write of
// one post row; IncrementViews is the single exception and must be one atomic
// update expression.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id uint) (*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	DeleteByAuthor(ctx context.Context, authorID uint) error
	IncrementViews(ctx context.Context, id uint) error
	List(ctx context.Context, f ListFilter, offset, limit int) ([]models.Post, int64, error)
	Trending(ctx context.Context, n int) ([]models.Post, error)
	All(ctx context.Context) ([]models.Post, error)
}

// UserRepository is the slice of user persistence the content store needs.
type UserRepository interface {
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetMany(ctx context.Context, ids []uint) (map[uint]models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

// ContentStore owns the Post aggregate and enforces ownership and uniqueness
// invariants before committing any mutation.
type ContentStore struct {
	posts PostRepository
	users UserRepository
	log   *zap.SugaredLogger
}

// New creates a ContentStore over the given repositories.
func New(posts PostRepository, users UserRepository, log *zap.SugaredLogger) *ContentStore {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ContentStore{posts: posts, users: users, log: log}
}

// resolveAuthor returns the display summary for a user id, falling back to
// the deleted-user placeholder when the reference dangles.
func (s *ContentStore) resolveAuthor(ctx context.Context, id uint) *models.AuthorSummary {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return models.DeletedAuthor()
	}
	return u.Summary()
}

// resolvePosts fills Author summaries for a batch of posts.
func (s *ContentStore) resolvePosts(ctx context.Context, posts []models.Post) {
	ids := make([]uint, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].AuthorID)
	}
	found, err := s.users.GetMany(ctx, ids)
	if err != nil {
		s.log.Warnw("resolve post authors", "err", err)
		found = map[uint]models.User{}
	}
	for i := range posts {
		if u, ok := found[posts[i].AuthorID]; ok {
			posts[i].Author = u.Summary()
		} else {
			posts[i].Author = models.DeletedAuthor()
		}
	}
}

// resolveComments fills Author summaries for comments and their replies.
func (s *ContentStore) resolveComments(ctx context.Context, comments []models.Comment) {
	var ids []uint
	for i := range comments {
		ids = append(ids, comments[i].AuthorID)
		for j := range comments[i].Replies {
			ids = append(ids, comments[i].Replies[j].AuthorID)
		}
	}
	if len(ids) == 0 {
		return
	}
	found, err := s.users.GetMany(ctx, ids)
	if err != nil {
		s.log.Warnw("resolve comment authors", "err", err)
		found = map[uint]models.User{}
	}
	summary := func(id uint) *models.AuthorSummary {
		if u, ok := found[id]; ok {
			return u.Summary()
		}
		return models.DeletedAuthor()
	}
	for i := range comments {
		comments[i].Author = summary(comments[i].AuthorID)
		for j := range comments[i].Replies {
			comments[i].Replies[j].Author = summary(comments[i].Replies[j].AuthorID)
		}
	}
}
