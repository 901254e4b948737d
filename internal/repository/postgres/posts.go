package postgres

import (
	"context"
	"time"

	"github.com/splax/quill/internal/domain"
)

const postSelect = `SELECT p.id, p.title, p.content, p.user_id, u.user_name, p.created_at, p.updated_at
	FROM posts p
	INNER JOIN users u ON u.id = p.user_id`

// CreatePost inserts a post and assigns its identifier.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	const query = `INSERT INTO posts (title, content, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	row := r.db.QueryRow(ctx, query, post.Title, post.Content, post.UserID, post.CreatedAt, post.UpdatedAt)
	if err := row.Scan(&post.ID); err != nil {
		return translate(err)
	}
	return nil
}

// GetPost returns a visible post with its author name.
func (r *Repository) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1 AND p.is_deleted = false`, id)
	return scanPost(row)
}

// ListPosts returns visible posts, newest first.
func (r *Repository) ListPosts(ctx context.Context, offset, limit int) ([]domain.Post, error) {
	rows, err := r.db.Query(ctx, postSelect+`
		WHERE p.is_deleted = false
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

// UpdatePost writes title and content of a visible post.
func (r *Repository) UpdatePost(ctx context.Context, post *domain.Post) error {
	const query = `UPDATE posts SET title = $2, content = $3, updated_at = $4
		WHERE id = $1 AND is_deleted = false`
	return expectOne(r.db.Exec(ctx, query, post.ID, post.Title, post.Content, post.UpdatedAt))
}

// SoftDeletePost sets the deletion flag and timestamp in one statement.
func (r *Repository) SoftDeletePost(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE posts SET is_deleted = true, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_deleted = false`
	return expectOne(r.db.Exec(ctx, query, id, at))
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.UserID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
