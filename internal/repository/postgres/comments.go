package postgres

import (
	"context"
	"time"

	"github.com/splax/quill/internal/domain"
)

const commentSelect = `SELECT c.id, c.post_id, c.content, c.user_id, u.user_name, c.created_at, c.updated_at
	FROM comments c
	INNER JOIN users u ON u.id = c.user_id`

// CreateComment inserts a comment and assigns its identifier.
func (r *Repository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	const query = `INSERT INTO comments (post_id, content, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	row := r.db.QueryRow(ctx, query, comment.PostID, comment.Content, comment.UserID, comment.CreatedAt, comment.UpdatedAt)
	if err := row.Scan(&comment.ID); err != nil {
		return translate(err)
	}
	return nil
}

// GetComment returns a visible comment belonging to postID.
func (r *Repository) GetComment(ctx context.Context, postID, commentID int64) (*domain.Comment, error) {
	row := r.db.QueryRow(ctx, commentSelect+`
		WHERE c.id = $1 AND c.post_id = $2 AND c.is_deleted = false`, commentID, postID)
	return scanComment(row)
}

// ListComments returns visible comments of a post, newest first.
func (r *Repository) ListComments(ctx context.Context, postID int64, offset, limit int) ([]domain.Comment, error) {
	rows, err := r.db.Query(ctx, commentSelect+`
		WHERE c.post_id = $1 AND c.is_deleted = false
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

// UpdateComment writes the content of a visible comment.
func (r *Repository) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	const query = `UPDATE comments SET content = $3, updated_at = $4
		WHERE id = $1 AND post_id = $2 AND is_deleted = false`
	return expectOne(r.db.Exec(ctx, query, comment.ID, comment.PostID, comment.Content, comment.UpdatedAt))
}

// SoftDeleteComment sets the deletion flag and timestamp in one statement.
func (r *Repository) SoftDeleteComment(ctx context.Context, postID, commentID int64, at time.Time) error {
	const query = `UPDATE comments SET is_deleted = true, deleted_at = $3, updated_at = $3
		WHERE id = $1 AND post_id = $2 AND is_deleted = false`
	return expectOne(r.db.Exec(ctx, query, commentID, postID, at))
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.Content, &c.UserID, &c.AuthorName, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
