package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/splax/quill/internal/domain"
	"github.com/splax/quill/internal/repository"
)

func TestStoreHidesSoftDeletedRows(t *testing.T) {
	ctx := context.Background()
	store := New()
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if err := store.CreateUser(ctx, &domain.User{ID: "u1", Email: "a@x.com", UserName: "alice"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CreateUser(ctx, &domain.User{ID: "u2", Email: "a@x.com"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	for i := 0; i < 3; i++ {
		p := &domain.Post{Title: "t", Content: "c", UserID: "u1", Timestamps: domain.Timestamps{CreatedAt: now.Add(time.Duration(i) * time.Minute)}}
		if err := store.CreatePost(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	if err := store.SoftDeletePost(ctx, 3, now); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := store.SoftDeletePost(ctx, 3, now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}

	posts, err := store.ListPosts(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != 2 || posts[0].AuthorName != "alice" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	if page, _ := store.ListPosts(ctx, 5, 10); len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", page)
	}
	if err := store.CreatePost(ctx, &domain.Post{UserID: "ghost"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected unknown owner rejected, got %v", err)
	}
}
