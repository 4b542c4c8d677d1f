package post

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iamasit07/blog/backend/internal/domain"
)

type PostRepository interface {
	Insert(ctx context.Context, post *domain.Post) error
	List(ctx context.Context) ([]domain.Post, error)
	SearchByTitle(ctx context.Context, title string) ([]domain.Post, error)
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	FindRelated(ctx context.Context, post *domain.Post) ([]domain.Post, error)
	Delete(ctx context.Context, id int64) error
}

// Publisher receives post events for the live feed.
type Publisher interface {
	Publish(event domain.PostEvent)
}

// Author is the authenticated caller creating or deleting a post.
type Author struct {
	Email    string
	Username string
}

type CreateInput struct {
	Title     string
	Category  string
	Thumbnail string
	Desc      string
}

type Service struct {
	repo      PostRepository
	publisher Publisher // Optional, can be nil
	now       func() time.Time
}

func NewService(repo PostRepository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]domain.Post, error) {
	return s.repo.List(ctx)
}

// Search returns every post when title is empty.
func (s *Service) Search(ctx context.Context, title string) ([]domain.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return s.repo.List(ctx)
	}
	return s.repo.SearchByTitle(ctx, title)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.repo.FindByID(ctx, id)
}

// Related lists the other posts sharing id's category.
func (s *Service) Related(ctx context.Context, id int64) ([]domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindRelated(ctx, post)
}

func (s *Service) Create(ctx context.Context, author Author, in CreateInput) (*domain.Post, error) {
	title := strings.TrimSpace(in.Title)
	category := strings.TrimSpace(in.Category)
	if title == "" || category == "" || strings.TrimSpace(in.Desc) == "" {
		return nil, domain.ErrValidation
	}

	post := &domain.Post{
		Title:    title,
		Category: category,
		Author:   author.Email,
		Username: author.Username,
		Desc:     in.Desc,
		RegDate:  s.now().UTC(),
	}
	if thumb := strings.TrimSpace(in.Thumbnail); thumb != "" {
		post.Thumbnail = &thumb
	}

	if err := s.repo.Insert(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}

	log.Printf("[POSTS] %s created post %d", author.Email, post.ID)
	s.publish(domain.PostCreated, *post)
	return post, nil
}

// Delete removes a post. Only its author may delete it.
func (s *Service) Delete(ctx context.Context, author Author, id int64) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if post.Author != author.Email {
		return domain.ErrNotAuthor
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("[POSTS] %s deleted post %d", author.Email, id)
	s.publish(domain.PostDeleted, *post)
	return nil
}

func (s *Service) publish(kind domain.PostEventType, post domain.Post) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.PostEvent{Type: kind, Post: post})
}
