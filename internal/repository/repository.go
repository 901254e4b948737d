package repository

import (
	"context"
	"time"

	"github.com/splax/quill/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// PostRepository persists posts. Reads and writes only ever see rows that are
// not soft-deleted.
type PostRepository interface {
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	ListPosts(ctx context.Context, offset, limit int) ([]domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) error
	SoftDeletePost(ctx context.Context, id int64, at time.Time) error
}

// CommentRepository persists comments scoped to their parent post.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, postID, commentID int64) (*domain.Comment, error)
	ListComments(ctx context.Context, postID int64, offset, limit int) ([]domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	SoftDeleteComment(ctx context.Context, postID, commentID int64, at time.Time) error
}
