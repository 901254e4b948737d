package domain

import "time"

// Comment belongs to a post and is only reachable through it.
type Comment struct {
	ID         int64
	PostID     int64
	Content    string
	UserID     string
	AuthorName string
	Timestamps
	SoftDelete
}

// OwnerID implements Owned.
func (c *Comment) OwnerID() string { return c.UserID }

// CommentPatch carries a partial comment update.
type CommentPatch struct {
	Content *string
}

// Apply merges the supplied fields into the comment.
func (c *Comment) Apply(patch CommentPatch, now time.Time) {
	if patch.Content != nil {
		c.Content = *patch.Content
	}
	c.Touch(now)
}
