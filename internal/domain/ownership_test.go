package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAuthorizeMutation(t *testing.T) {
	owner := &User{ID: "owner"}
	other := &User{ID: "other"}

	deleted := &Post{ID: 2, UserID: "owner"}
	deleted.MarkDeleted(time.Now())

	tests := []struct {
		name string
		res  Owned
		user *User
		want error
	}{
		{name: "owner may mutate", res: &Post{ID: 1, UserID: "owner"}, user: owner},
		{name: "non owner is forbidden", res: &Post{ID: 1, UserID: "owner"}, user: other, want: ErrForbidden},
		{name: "soft deleted is not found for owner", res: deleted, user: owner, want: ErrNotFound},
		{name: "soft deleted is not found for others", res: deleted, user: other, want: ErrNotFound},
		{name: "comment owner", res: &Comment{ID: 1, UserID: "owner"}, user: owner},
		{name: "comment non owner", res: &Comment{ID: 1, UserID: "owner"}, user: other, want: ErrForbidden},
		{name: "missing user", res: &Comment{ID: 1, UserID: "owner"}, user: nil, want: ErrUnauthenticated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := AuthorizeMutation(tc.res, tc.user)
			if tc.want == nil && err != nil {
				t.Fatalf("expected nil, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthorizeMutationNilResource(t *testing.T) {
	if err := AuthorizeMutation(nil, &User{ID: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for nil resource, got %v", err)
	}
}

func TestMarkDeletedIsOneWay(t *testing.T) {
	first := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	var s SoftDelete
	s.MarkDeleted(first)
	if !s.Deleted() || s.DeletedAt == nil || !s.DeletedAt.Equal(first) {
		t.Fatalf("expected deletion stamped at %v, got %+v", first, s)
	}
	s.MarkDeleted(first.Add(time.Hour))
	if !s.DeletedAt.Equal(first) {
		t.Fatalf("expected original deletion time to be kept, got %v", s.DeletedAt)
	}
}

func TestPostApplyMergesPatch(t *testing.T) {
	now := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	post := &Post{Title: "title", Content: "content"}
	content := "new"
	post.Apply(PostPatch{Content: &content}, now)
	if post.Title != "title" {
		t.Fatalf("expected title to be unchanged, got %q", post.Title)
	}
	if post.Content != "new" {
		t.Fatalf("expected content to change, got %q", post.Content)
	}
	if !post.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at to be stamped")
	}
}

func TestCommentApplyWithoutContentKeepsValue(t *testing.T) {
	c := &Comment{Content: "keep"}
	c.Apply(CommentPatch{}, time.Now())
	if c.Content != "keep" {
		t.Fatalf("expected content to be unchanged, got %q", c.Content)
	}
}

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Page
		want Page
	}{
		{name: "defaults", in: Page{}, want: Page{Skip: 0, Limit: 10}},
		{name: "negative skip", in: Page{Skip: -4, Limit: 5}, want: Page{Skip: 0, Limit: 5}},
		{name: "capped", in: Page{Skip: 2, Limit: 500}, want: Page{Skip: 2, Limit: MaxPageLimit}},
		{name: "negative limit", in: Page{Limit: -1}, want: Page{Limit: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(10); got != tc.want {
				t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}
