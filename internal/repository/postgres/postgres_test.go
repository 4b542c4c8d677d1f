package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/iamasit07/blog/backend/internal/config"
	"github.com/iamasit07/blog/backend/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, true},
		{"pgx other", &pgconn.PgError{Code: "23503"}, false},
		{"pq unique", &pq.Error{Code: "23505"}, true},
		{"wrapped pq", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isUniqueViolation(tc.err); got != tc.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("escapeLike = %q", got)
	}
}

func TestMigrate_EmptyDSN(t *testing.T) {
	if err := Migrate(""); err == nil {
		t.Fatal("Migrate with empty DSN should fail")
	}
}

// openTestDB connects to TEST_DATABASE_URL and resets the tables.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := Open(context.Background(), config.DB{URL: dsn, Driver: "pgx"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`TRUNCATE sessions, posts, users RESTART IDENTITY CASCADE;`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestUserAndSessionRepos(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	sessions := NewSessionRepo(db)

	id, err := users.Insert(ctx, &domain.User{Email: "a@b.c", Username: "a", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := users.Insert(ctx, &domain.User{Email: "a@b.c", Username: "b", PasswordHash: "h"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate email: got %v", err)
	}
	u, err := users.FindByEmail(ctx, "a@b.c")
	if err != nil || u.ID != id {
		t.Fatalf("find by email: %+v, %v", u, err)
	}
	if _, err := users.FindByID(ctx, id+100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user: got %v", err)
	}

	if err := sessions.Bind(ctx, id, "first"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := sessions.Bind(ctx, id, "second"); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if _, err := sessions.LookupByRefreshToken(ctx, "first"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("overwritten token still live: %v", err)
	}
	got, err := sessions.LookupByRefreshToken(ctx, "second")
	if err != nil || got != id {
		t.Fatalf("lookup: %d, %v", got, err)
	}
	if err := sessions.Revoke(ctx, id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := sessions.LookupByRefreshToken(ctx, "second"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("revoked token still live: %v", err)
	}
}

func TestSessionRepoDeleteExpired(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	sessions := NewSessionRepo(db)

	oldID, err := users.Insert(ctx, &domain.User{Email: "old@b.c", Username: "old", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	newID, err := users.Insert(ctx, &domain.User{Email: "new@b.c", Username: "new", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := sessions.Bind(ctx, oldID, "old-token"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := sessions.Bind(ctx, newID, "new-token"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, err := db.Exec(`UPDATE sessions SET updated_at = NOW() - INTERVAL '2 hours' WHERE user_id = $1`, oldID); err != nil {
		t.Fatalf("age session: %v", err)
	}

	deleted, err := sessions.DeleteExpired(ctx, time.Hour)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted %d sessions, want 1", deleted)
	}
	if _, err := sessions.LookupByRefreshToken(ctx, "old-token"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expired session still live: %v", err)
	}
	if got, err := sessions.LookupByRefreshToken(ctx, "new-token"); err != nil || got != newID {
		t.Fatalf("fresh session lost: %d, %v", got, err)
	}
}

func TestPostRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	posts := NewPostRepo(db)

	thumb := "x.png"
	first := &domain.Post{Title: "Go 100% faster", Category: "go", Author: "a@b.c", Username: "a", Desc: "d", Thumbnail: &thumb, RegDate: time.Now().UTC()}
	second := &domain.Post{Title: "Generics", Category: "go", Author: "a@b.c", Username: "a", Desc: "d", RegDate: time.Now().UTC()}
	for _, p := range []*domain.Post{first, second} {
		if err := posts.Insert(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	found, err := posts.SearchByTitle(ctx, "100%")
	if err != nil || len(found) != 1 || found[0].ID != first.ID {
		t.Fatalf("search: %+v, %v", found, err)
	}
	if found[0].Thumbnail == nil || *found[0].Thumbnail != thumb {
		t.Fatalf("thumbnail lost: %+v", found[0].Thumbnail)
	}

	related, err := posts.FindRelated(ctx, first)
	if err != nil || len(related) != 1 || related[0].ID != second.ID {
		t.Fatalf("related: %+v, %v", related, err)
	}

	if err := posts.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := posts.Delete(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := posts.FindByID(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted post found: %v", err)
	}
}
