package post

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
const DefaultLimit = 10

// CreateInput carries the fields of a new post.
type CreateInput struct {
	Title   string
	Content string
}

// Service orchestrates post publishing and the ownership rules around it.
type Service struct {
	posts  repository.PostRepository
	clean  *sanitize.Sanitizer
	logger *slog.Logger
	now    func() time.Time
}

// New returns a post service.
func New(posts repository.PostRepository, clean *sanitize.Sanitizer, logger *slog.Logger) Service {
	return Service{posts: posts, clean: clean, logger: logger, now: time.Now}
}

// WithClock returns a copy of the service reading time from now.
func (s Service) WithClock(now func() time.Time) Service {
	s.now = now
	return s
}

var (
	errTitleRequired   = fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	errContentRequired = fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
)

// Create publishes a post owned by author.
func (s Service) Create(ctx context.Context, author *domain.User, input CreateInput) (*domain.Post, error) {
	if author == nil {
		return nil, domain.ErrUnauthenticated
	}
	title := s.clean.Text(input.Title)
	if title == "" {
		return nil, errTitleRequired
	}
	content := s.clean.Text(input.Content)
	if content == "" {
		return nil, errContentRequired
	}
	now := s.now().UTC()
	post := &domain.Post{
		Title:      title,
		Content:    content,
		UserID:     author.ID,
		AuthorName: author.UserName,
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, notFound(err, "create post")
	}
	s.logger.Info("post created", "post_id", post.ID, "user_id", author.ID)
	return post, nil
}

// List returns visible posts, newest first.
func (s Service) List(ctx context.Context, page domain.Page) ([]domain.Post, error) {
	page = page.Normalize(DefaultLimit)
	posts, err := s.posts.ListPosts(ctx, page.Skip, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Get returns a visible post.
func (s Service) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, notFound(err, "get post")
	}
	return post, nil
}

// Update merges patch into a post owned by user. Omitted fields keep their
// stored values.
func (s Service) Update(ctx context.Context, user *domain.User, id int64, patch domain.PostPatch) (*domain.Post, error) {
	post, err := s.authorized(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title := s.clean.Text(*patch.Title)
		if title == "" {
			return nil, errTitleRequired
		}
		patch.Title = &title
	}
	if patch.Content != nil {
		content := s.clean.Text(*patch.Content)
		if content == "" {
			return nil, errContentRequired
		}
		patch.Content = &content
	}
	post.Apply(patch, s.now().UTC())
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, notFound(err, "update post")
	}
	s.logger.Info("post updated", "post_id", post.ID, "user_id", user.ID)
	return post, nil
}

// Delete soft-deletes a post owned by user. Its comments are left untouched.
func (s Service) Delete(ctx context.Context, user *domain.User, id int64) error {
	post, err := s.authorized(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.posts.SoftDeletePost(ctx, post.ID, s.now().UTC()); err != nil {
		return notFound(err, "delete post")
	}
	s.logger.Info("post deleted", "post_id", post.ID, "user_id", user.ID)
	return nil
}

func (s Service) authorized(ctx context.Context, user *domain.User, id int64) (*domain.Post, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, notFound(err, "get post")
	}
	if err := domain.AuthorizeMutation(post, user); err != nil {
		return nil, err
	}
	return post, nil
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
