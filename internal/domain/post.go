package domain

import "time"

// Post is a blog entry owned by a user.
type Post struct {
	ID      int64
	Title   string
	Content string
	UserID  string
	// AuthorName is joined from users on read.
	AuthorName string
	Timestamps
	SoftDelete
}

// OwnerID implements Owned.
func (p *Post) OwnerID() string { return p.UserID }

// PostPatch carries a partial update. Nil fields are left untouched.
type PostPatch struct {
	Title   *string
	Content *string
}

// Empty reports whether the patch changes nothing.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

// Apply merges the supplied fields into the post.
func (p *Post) Apply(patch PostPatch, now time.Time) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	p.Touch(now)
}
