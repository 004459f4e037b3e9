package store_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"beatpress/models"
	"beatpress/store"
)

// memPostRepo is an in-memory store.PostRepository. Get hands out deep
// copies so tests exercise the same load-modify-save cycle as the real
// database-backed repository.
type memPostRepo struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]models.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{nextID: 1, posts: map[uint]models.Post{}}
}

func clonePost(p models.Post) models.Post {
	out := p
	out.Comments = make(models.CommentList, len(p.Comments))
	for i, c := range p.Comments {
		cc := c
		cc.Replies = append([]models.Reply(nil), c.Replies...)
		out.Comments[i] = cc
	}
	out.Ratings = append(models.RatingList(nil), p.Ratings...)
	return out
}

func (r *memPostRepo) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = r.nextID
	r.nextID++
	r.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *memPostRepo) Get(ctx context.Context, id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: post %d", store.ErrNotFound, id)
	}
	out := clonePost(p)
	return &out, nil
}

func (r *memPostRepo) Save(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return fmt.Errorf("%w: post %d", store.ErrNotFound, post.ID)
	}
	// Views are owned by IncrementViews; a full save must not clobber them
	post.Views = r.posts[post.ID].Views
	r.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *memPostRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("%w: post %d", store.ErrNotFound, id)
	}
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) DeleteByAuthor(ctx context.Context, authorID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.posts {
		if p.AuthorID == authorID {
			delete(r.posts, id)
		}
	}
	return nil
}

func (r *memPostRepo) IncrementViews(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("%w: post %d", store.ErrNotFound, id)
	}
	p.Views++
	r.posts[id] = p
	return nil
}

func (r *memPostRepo) List(ctx context.Context, f store.ListFilter, offset, limit int) ([]models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.Post
	for _, p := range r.posts {
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Content), needle) {
				continue
			}
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.IsPremium != nil && p.IsPremium != *f.IsPremium {
			continue
		}
		if f.AuthorID != 0 && p.AuthorID != f.AuthorID {
			continue
		}
		matched = append(matched, clonePost(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Post{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memPostRepo) Trending(ctx context.Context, n int) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Post
	for _, p := range r.posts {
		all = append(all, clonePost(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Views > all[j].Views })
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

func (r *memPostRepo) All(ctx context.Context) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Post
	for _, p := range r.posts {
		all = append(all, clonePost(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// memUserRepo is an in-memory store.UserRepository.
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[uint]models.User{}}
}

func (r *memUserRepo) add(u models.User) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	} else if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.users[u.ID] = u
	return u
}

func (r *memUserRepo) Get(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", store.ErrNotFound, id)
	}
	out := u
	return &out, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, email)
}

func (r *memUserRepo) GetMany(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint]models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *memUserRepo) Save(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("%w: user %d", store.ErrNotFound, user.ID)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("%w: user %d", store.ErrNotFound, id)
	}
	delete(r.users, id)
	return nil
}

// newTestStore builds a content store over fresh in-memory repositories with
// two seeded users: a regular author and a subscriber.
func newTestStore() (*store.ContentStore, *memPostRepo, *memUserRepo, store.Identity, store.Identity) {
	posts := newMemPostRepo()
	users := newMemUserRepo()
	author := users.add(models.User{Username: "ayo", Email: "ayo@example.com"})
	sub := users.add(models.User{Username: "bisi", Email: "bisi@example.com", IsSubscriber: true})
	cs := store.New(posts, users, nil)
	return cs, posts, users,
		store.Identity{ID: author.ID, Username: author.Username},
		store.Identity{ID: sub.ID, Username: sub.Username, IsSubscriber: true}
}
