package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"beatpress/models"
)

// MaxPageSize caps every listing regardless of the requested size.
const MaxPageSize = 50

// DefaultPageSize applies when no size is requested.
const DefaultPageSize = 10

// CreatePostInput carries the fields of a new post. Media URLs come from the
// blob store; the content store persists only the references.
type CreatePostInput struct {
	Title     string
	Content   string
	Category  string
	ImageURL  string
	MusicURL  string
	IsPremium bool
}

// PostPatch updates only the fields that are present.
type PostPatch struct {
	Title     *string
	Content   *string
	Category  *string
	ImageURL  *string
	MusicURL  *string
	IsPremium *bool
}

// PostPage is one page of a post listing.
type PostPage struct {
	Items    []models.Post `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
	HasMore  bool          `json:"has_more"`
}

// CreatePost persists a new post authored by the caller. Premium posts and
// music references require the author to be a subscriber at creation time.
func (s *ContentStore) CreatePost(ctx context.Context, author Identity, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidArgument)
	}
	category := NormalizeCategory(in.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidArgument)
	}

	user, err := s.users.Get(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	if (in.IsPremium || in.MusicURL != "") && !user.IsSubscriber {
		return nil, fmt.Errorf("%w: premium posts and music uploads", ErrPermissionDenied)
	}

	post := &models.Post{
		AuthorID:  author.ID,
		Title:     title,
		Content:   in.Content,
		Category:  category,
		ImageURL:  in.ImageURL,
		MusicURL:  in.MusicURL,
		IsPremium: in.IsPremium,
		Comments:  models.CommentList{},
		Ratings:   models.RatingList{},
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	post.Author = user.Summary()
	s.log.Infow("post created", "post_id", post.ID, "author_id", author.ID, "premium", in.IsPremium)
	return post, nil
}

// UpdatePost applies a patch to a post owned by the requester. Fields absent
// from the patch are left unchanged.
func (s *ContentStore) UpdatePost(ctx context.Context, postID uint, requester Identity, patch PostPatch) (*models.Post, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requester.ID {
		return nil, fmt.Errorf("%w: only the author may edit a post", ErrForbidden)
	}

	wantsPremium := patch.IsPremium != nil && *patch.IsPremium
	wantsMusic := patch.MusicURL != nil && *patch.MusicURL != ""
	if wantsPremium || wantsMusic {
		user, err := s.users.Get(ctx, requester.ID)
		if err != nil {
			return nil, err
		}
		if !user.IsSubscriber {
			return nil, fmt.Errorf("%w: premium posts and music uploads", ErrPermissionDenied)
		}
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidArgument)
		}
		post.Title = title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", ErrInvalidArgument)
		}
		post.Content = *patch.Content
	}
	if patch.Category != nil {
		category := NormalizeCategory(*patch.Category)
		if category == "" {
			return nil, fmt.Errorf("%w: category cannot be empty", ErrInvalidArgument)
		}
		post.Category = category
	}
	if patch.ImageURL != nil {
		post.ImageURL = *patch.ImageURL
	}
	if patch.MusicURL != nil {
		post.MusicURL = *patch.MusicURL
	}
	if patch.IsPremium != nil {
		post.IsPremium = *patch.IsPremium
	}

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	post.Author = s.resolveAuthor(ctx, post.AuthorID)
	return post, nil
}

// DeletePost removes a post and everything embedded in it. Only the author
// may delete.
func (s *ContentStore) DeletePost(ctx context.Context, postID uint, requester Identity) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != requester.ID {
		return fmt.Errorf("%w: only the author may delete a post", ErrForbidden)
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.log.Infow("post deleted", "post_id", postID, "author_id", requester.ID)
	return nil
}

// FetchOne loads a single post, counting the view with one atomic increment
// before the read so concurrent fetches never lose updates.
func (s *ContentStore) FetchOne(ctx context.Context, postID uint) (*models.Post, error) {
	if err := s.posts.IncrementViews(ctx, postID); err != nil {
		return nil, err
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Author = s.resolveAuthor(ctx, post.AuthorID)
	s.resolveComments(ctx, post.Comments)
	return post, nil
}

// List returns a newest-first page of posts matching the filter. The page
// size is capped at MaxPageSize regardless of the requested value.
func (s *ContentStore) List(ctx context.Context, f ListFilter, page, pageSize int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	f.Category = NormalizeCategory(f.Category)

	offset := (page - 1) * pageSize
	items, total, err := s.posts.List(ctx, f, offset, pageSize)
	if err != nil {
		return nil, err
	}
	s.resolvePosts(ctx, items)
	return &PostPage{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  int64(offset+len(items)) < total,
	}, nil
}

// Trending returns the n most viewed posts.
func (s *ContentStore) Trending(ctx context.Context, n int) ([]models.Post, error) {
	if n <= 0 {
		n = DefaultPageSize
	}
	if n > MaxPageSize {
		n = MaxPageSize
	}
	items, err := s.posts.Trending(ctx, n)
	if err != nil {
		return nil, err
	}
	s.resolvePosts(ctx, items)
	return items, nil
}

// PremiumFeed lists premium posts newest-first.
func (s *ContentStore) PremiumFeed(ctx context.Context, f ListFilter, page, pageSize int) (*PostPage, error) {
	premium := true
	f.IsPremium = &premium
	return s.List(ctx, f, page, pageSize)
}

// touch refreshes the aggregate's update timestamp before a save.
func touch(post *models.Post) {
	post.UpdatedAt = time.Now()
}
