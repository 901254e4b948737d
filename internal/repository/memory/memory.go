// Package memory provides an in-process repository used by tests and local
// experiments. It applies the same visibility rules as the Postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/splax/quill/internal/domain"
	"github.com/splax/quill/internal/repository"
)

// Store keeps users, posts and comments in maps guarded by a single mutex.
type Store struct {
	mu       sync.Mutex
	users    map[string]domain.User
	posts    map[int64]domain.Post
	comments map[int64]domain.Comment
	nextPost int64
	nextCmt  int64
}

var (
	_ repository.UserRepository    = (*Store)(nil)
	_ repository.PostRepository    = (*Store)(nil)
	_ repository.CommentRepository = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		posts:    make(map[int64]domain.Post),
		comments: make(map[int64]domain.Comment),
	}
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *Store) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	stamp := at
	user.LastLoginAt = &stamp
	user.UpdatedAt = at
	s.users[id] = user
	return nil
}

func (s *Store) CreatePost(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[post.UserID]; !ok {
		return repository.ErrNotFound
	}
	s.nextPost++
	post.ID = s.nextPost
	s.posts[post.ID] = *post
	return nil
}

func (s *Store) GetPost(_ context.Context, id int64) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok || post.Deleted() {
		return nil, repository.ErrNotFound
	}
	post.AuthorName = s.users[post.UserID].UserName
	return &post, nil
}

func (s *Store) ListPosts(_ context.Context, offset, limit int) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := make([]domain.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if post.Deleted() {
			continue
		}
		post.AuthorName = s.users[post.UserID].UserName
		visible = append(visible, post)
	}
	sort.Slice(visible, func(i, j int) bool {
		return newer(visible[i].CreatedAt, visible[i].ID, visible[j].CreatedAt, visible[j].ID)
	})
	return page(visible, offset, limit), nil
}

func (s *Store) UpdatePost(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.posts[post.ID]
	if !ok || stored.Deleted() {
		return repository.ErrNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.UpdatedAt = post.UpdatedAt
	s.posts[post.ID] = stored
	return nil
}

func (s *Store) SoftDeletePost(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.posts[id]
	if !ok || stored.Deleted() {
		return repository.ErrNotFound
	}
	stored.MarkDeleted(at)
	stored.UpdatedAt = at
	s.posts[id] = stored
	return nil
}

func (s *Store) CreateComment(_ context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[comment.UserID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.posts[comment.PostID]; !ok {
		return repository.ErrNotFound
	}
	s.nextCmt++
	comment.ID = s.nextCmt
	s.comments[comment.ID] = *comment
	return nil
}

func (s *Store) GetComment(_ context.Context, postID, commentID int64) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[commentID]
	if !ok || comment.PostID != postID || comment.Deleted() {
		return nil, repository.ErrNotFound
	}
	comment.AuthorName = s.users[comment.UserID].UserName
	return &comment, nil
}

func (s *Store) ListComments(_ context.Context, postID int64, offset, limit int) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := make([]domain.Comment, 0)
	for _, comment := range s.comments {
		if comment.PostID != postID || comment.Deleted() {
			continue
		}
		comment.AuthorName = s.users[comment.UserID].UserName
		visible = append(visible, comment)
	}
	sort.Slice(visible, func(i, j int) bool {
		return newer(visible[i].CreatedAt, visible[i].ID, visible[j].CreatedAt, visible[j].ID)
	})
	return page(visible, offset, limit), nil
}

func (s *Store) UpdateComment(_ context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.comments[comment.ID]
	if !ok || stored.PostID != comment.PostID || stored.Deleted() {
		return repository.ErrNotFound
	}
	stored.Content = comment.Content
	stored.UpdatedAt = comment.UpdatedAt
	s.comments[comment.ID] = stored
	return nil
}

func (s *Store) SoftDeleteComment(_ context.Context, postID, commentID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.comments[commentID]
	if !ok || stored.PostID != postID || stored.Deleted() {
		return repository.ErrNotFound
	}
	stored.MarkDeleted(at)
	stored.UpdatedAt = at
	s.comments[commentID] = stored
	return nil
}

// Stored returns a post regardless of its deletion flag so tests can observe
// that soft-deleted rows are retained.
func (s *Store) Stored(id int64) (domain.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	return post, ok
}

func newer(aAt time.Time, aID int64, bAt time.Time, bID int64) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return aID > bID
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
