package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/iamasit07/blog/backend/internal/domain"
)

// PostRepo keeps posts in insertion order.
type PostRepo struct {
	mu     sync.RWMutex
	posts  []domain.Post
	nextID int64
}

func NewPostRepo() *PostRepo {
	return &PostRepo{nextID: 1}
}

func (r *PostRepo) Insert(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = r.nextID
	r.nextID++
	r.posts = append(r.posts, *post)
	return nil
}

func (r *PostRepo) List(ctx context.Context) ([]domain.Post, error) {
	return r.filter(func(domain.Post) bool { return true }), nil
}

// SearchByTitle matches a case-insensitive substring of the title.
func (r *PostRepo) SearchByTitle(ctx context.Context, title string) ([]domain.Post, error) {
	needle := strings.ToLower(title)
	return r.filter(func(p domain.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), needle)
	}), nil
}

func (r *PostRepo) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.posts {
		if r.posts[i].ID == id {
			post := r.posts[i]
			return &post, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *PostRepo) FindRelated(ctx context.Context, post *domain.Post) ([]domain.Post, error) {
	return r.filter(func(p domain.Post) bool {
		return p.Category == post.Category && p.ID != post.ID
	}), nil
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.posts {
		if r.posts[i].ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *PostRepo) filter(keep func(domain.Post) bool) []domain.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}
