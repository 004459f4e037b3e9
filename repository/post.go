package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"beatpress/models"
	"beatpress/store"
)

// PostRepo is the gorm-backed store.PostRepository. One post row carries the
// whole aggregate, so Save rewrites the row including the embedded JSON
// columns.
type PostRepo struct {
	db *gorm.DB
}

// NewPostRepo creates a PostRepo.
func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db: db}
}

// Create inserts a new post row.
func (r *PostRepo) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Get loads one post aggregate.
func (r *PostRepo) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", store.ErrNotFound, id)
		}
		return nil, err
	}
	return &post, nil
}

// Save writes the full aggregate back.
func (r *PostRepo) Save(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// Delete removes the post row and, with it, all embedded data.
func (r *PostRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: post %d", store.ErrNotFound, id)
	}
	return nil
}

// DeleteByAuthor removes every post authored by the given user.
func (r *PostRepo) DeleteByAuthor(ctx context.Context, authorID uint) error {
	return r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.Post{}).Error
}

// IncrementViews bumps the view counter with a single update expression so
// concurrent fetches never lose a count.
func (r *PostRepo) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: post %d", store.ErrNotFound, id)
	}
	return nil
}

// List returns a newest-first window of posts plus the total match count.
func (r *PostRepo) List(ctx context.Context, f store.ListFilter, offset, limit int) ([]models.Post, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	if err := r.filtered(ctx, f).Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Trending returns the n most viewed posts.
func (r *PostRepo) Trending(ctx context.Context, n int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Order("views DESC").Limit(n).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// All returns every post, used for profile activity aggregation.
func (r *PostRepo) All(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepo) filtered(ctx context.Context, f store.ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx)
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", needle, needle)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.IsPremium != nil {
		query = query.Where("is_premium = ?", *f.IsPremium)
	}
	if f.AuthorID != 0 {
		query = query.Where("author_id = ?", f.AuthorID)
	}
	return query
}
