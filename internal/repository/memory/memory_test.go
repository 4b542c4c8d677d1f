package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/iamasit07/blog/backend/internal/domain"
)

func TestUserRepo_InsertAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewUserRepo()

	id, err := repo.Insert(ctx, &domain.User{Email: "a@x.com", Username: "alice", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	byID, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byEmail.ID != id || byID.Email != "a@x.com" || byID.Username != "alice" {
		t.Errorf("unexpected users: %+v %+v", byEmail, byID)
	}
	if byID.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewUserRepo()

	repo.Insert(ctx, &domain.User{Email: "a@x.com", Username: "alice"})
	_, err := repo.Insert(ctx, &domain.User{Email: "a@x.com", Username: "other"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("want ErrConflict, got %v", err)
	}
}

func TestUserRepo_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewUserRepo()

	if _, err := repo.FindByEmail(ctx, "nobody@x.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByEmail: want ErrNotFound, got %v", err)
	}
	if _, err := repo.FindByID(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByID: want ErrNotFound, got %v", err)
	}
}

func TestSessionStore_BindOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewSessionStore()

	store.Bind(ctx, 1, "first")
	store.Bind(ctx, 1, "second")

	if _, err := store.LookupByRefreshToken(ctx, "first"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("earlier token should be gone, got %v", err)
	}
	id, err := store.LookupByRefreshToken(ctx, "second")
	if err != nil || id != 1 {
		t.Errorf("Lookup(second) = %d, %v", id, err)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestSessionStore_Revoke(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewSessionStore()

	store.Bind(ctx, 1, "tok")
	store.Bind(ctx, 2, "other")
	if err := store.Revoke(ctx, 1); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	if _, err := store.LookupByRefreshToken(ctx, "tok"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("revoked token still found: %v", err)
	}
	if id, err := store.LookupByRefreshToken(ctx, "other"); err != nil || id != 2 {
		t.Errorf("unrelated session affected: %d, %v", id, err)
	}
	// revoking again is a no-op
	if err := store.Revoke(ctx, 1); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
}

func TestSessionStore_ConcurrentBinds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewSessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Bind(ctx, 1, fmt.Sprintf("tok-%d", i))
		}(i)
	}
	wg.Wait()

	live := 0
	for i := 0; i < 50; i++ {
		if _, err := store.LookupByRefreshToken(ctx, fmt.Sprintf("tok-%d", i)); err == nil {
			live++
		}
	}
	if live != 1 {
		t.Errorf("live tokens = %d, want exactly 1", live)
	}
}

func TestPostRepo_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewPostRepo()

	posts := []*domain.Post{
		{Title: "Learning Go", Category: "dev"},
		{Title: "Go concurrency", Category: "dev"},
		{Title: "Travel notes", Category: "life"},
	}
	for _, p := range posts {
		if err := repo.Insert(ctx, p); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if posts[0].ID == posts[1].ID {
		t.Fatal("ids should be unique")
	}

	all, _ := repo.List(ctx)
	if len(all) != 3 || all[0].Title != "Learning Go" {
		t.Errorf("List = %+v", all)
	}

	found, _ := repo.SearchByTitle(ctx, "GO")
	if len(found) != 2 {
		t.Errorf("SearchByTitle(GO) = %d posts, want 2", len(found))
	}

	related, _ := repo.FindRelated(ctx, posts[0])
	if len(related) != 1 || related[0].ID != posts[1].ID {
		t.Errorf("FindRelated = %+v", related)
	}

	if err := repo.Delete(ctx, posts[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, posts[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted post still found: %v", err)
	}
	if err := repo.Delete(ctx, posts[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete: want ErrNotFound, got %v", err)
	}
}
