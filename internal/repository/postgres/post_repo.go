package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamasit07/blog/backend/internal/domain"
)

const postColumns = `id, title, category, author, username, thumbnail, "desc", regdate`

type PostRepo struct {
	DB *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

func (r *PostRepo) Insert(ctx context.Context, post *domain.Post) error {
	query := `
	INSERT INTO posts (title, category, author, username, thumbnail, "desc", regdate)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id;
	`
	var thumbnail sql.NullString
	if post.Thumbnail != nil {
		thumbnail = sql.NullString{String: *post.Thumbnail, Valid: true}
	}
	err := r.DB.QueryRowContext(ctx, query,
		post.Title, post.Category, post.Author, post.Username, thumbnail, post.Desc, post.RegDate,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepo) List(ctx context.Context) ([]domain.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY id;`)
}

// SearchByTitle matches a case-insensitive substring of the title.
func (r *PostRepo) SearchByTitle(ctx context.Context, title string) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE title ILIKE '%' || $1 || '%' ORDER BY id;`
	return r.query(ctx, query, escapeLike(title))
}

func (r *PostRepo) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1;`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (r *PostRepo) FindRelated(ctx context.Context, post *domain.Post) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE category = $1 AND id <> $2 ORDER BY id;`
	return r.query(ctx, query, post.Category, post.ID)
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostRepo) query(ctx context.Context, query string, args ...interface{}) ([]domain.Post, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}
	return posts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	var thumbnail sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &p.Category, &p.Author, &p.Username, &thumbnail, &p.Desc, &p.RegDate); err != nil {
		return nil, err
	}
	if thumbnail.Valid {
		p.Thumbnail = &thumbnail.String
	}
	p.RegDate = p.RegDate.UTC()
	return &p, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
