package comment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/splax/quill/internal/domain"
	"github.com/splax/quill/internal/repository"
	"github.com/splax/quill/pkg/sanitize"
)

// DefaultLimit is the page size used when a listing does not name one.
const DefaultLimit = 50

var errContentRequired = fmt.Errorf("%w: content is required", domain.ErrInvalidInput)

// Service manages comments. Every operation first requires the parent post
// to exist and be visible.
type Service struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	clean    *sanitize.Sanitizer
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a comment service.
func New(posts repository.PostRepository, comments repository.CommentRepository, clean *sanitize.Sanitizer, logger *slog.Logger) Service {
	return Service{posts: posts, comments: comments, clean: clean, logger: logger, now: time.Now}
}

// WithClock returns a copy of the service reading time from now.
func (s Service) WithClock(now func() time.Time) Service {
	s.now = now
	return s
}

// Create attaches a comment by author to a visible post.
func (s Service) Create(ctx context.Context, author *domain.User, postID int64, content string) (*domain.Comment, error) {
	if author == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	content = s.clean.Text(content)
	if content == "" {
		return nil, errContentRequired
	}
	now := s.now().UTC()
	comment := &domain.Comment{
		PostID:     postID,
		Content:    content,
		UserID:     author.ID,
		AuthorName: author.UserName,
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, notFound(err, "create comment")
	}
	s.logger.Info("comment created", "comment_id", comment.ID, "post_id", postID, "user_id", author.ID)
	return comment, nil
}

// List returns the visible comments of a visible post, newest first.
func (s Service) List(ctx context.Context, postID int64, page domain.Page) ([]domain.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	page = page.Normalize(DefaultLimit)
	comments, err := s.comments.ListComments(ctx, postID, page.Skip, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Update merges patch into a comment owned by user.
func (s Service) Update(ctx context.Context, user *domain.User, postID, commentID int64, patch domain.CommentPatch) (*domain.Comment, error) {
	comment, err := s.authorized(ctx, user, postID, commentID)
	if err != nil {
		return nil, err
	}
	if patch.Content != nil {
		content := s.clean.Text(*patch.Content)
		if content == "" {
			return nil, errContentRequired
		}
		patch.Content = &content
	}
	comment.Apply(patch, s.now().UTC())
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, notFound(err, "update comment")
	}
	s.logger.Info("comment updated", "comment_id", commentID, "post_id", postID, "user_id", user.ID)
	return comment, nil
}

// Delete soft-deletes a comment owned by user.
func (s Service) Delete(ctx context.Context, user *domain.User, postID, commentID int64) error {
	if _, err := s.authorized(ctx, user, postID, commentID); err != nil {
		return err
	}
	if err := s.comments.SoftDeleteComment(ctx, postID, commentID, s.now().UTC()); err != nil {
		return notFound(err, "delete comment")
	}
	s.logger.Info("comment deleted", "comment_id", commentID, "post_id", postID, "user_id", user.ID)
	return nil
}

func (s Service) requirePost(ctx context.Context, postID int64) error {
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return notFound(err, "get post")
	}
	return nil
}

func (s Service) authorized(ctx context.Context, user *domain.User, postID, commentID int64) (*domain.Comment, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, notFound(err, "get comment")
	}
	if err := domain.AuthorizeMutation(comment, user); err != nil {
		return nil, err
	}
	return comment, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, repository.ErrInvalidValue) {
		return fmt.Errorf("%w: value exceeds column limits", domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}
