package domain

import "time"

// Timestamps tracks creation and last modification.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch stamps UpdatedAt.
func (t *Timestamps) Touch(now time.Time) {
	t.UpdatedAt = now
}

// SoftDelete marks a record as logically removed. Once set it is never cleared.
type SoftDelete struct {
	IsDeleted bool
	DeletedAt *time.Time
}

// Deleted reports whether the record has been soft-deleted.
func (s SoftDelete) Deleted() bool {
	return s.IsDeleted
}

// MarkDeleted flips the flag and stamps the deletion time together.
func (s *SoftDelete) MarkDeleted(now time.Time) {
	if s.IsDeleted {
		return
	}
	at := now
	s.IsDeleted = true
	s.DeletedAt = &at
}

// Owned is implemented by every resource that has a single owning user and a
// soft-delete lifecycle.
type Owned interface {
	OwnerID() string
	Deleted() bool
}

// Visible reports whether res may be returned from a read path.
func Visible(res Owned) bool {
	return res != nil && !res.Deleted()
}

// AuthorizeMutation allows a content change or delete only by the owner.
// Visibility is evaluated first so that hidden resources report ErrNotFound,
// never ErrForbidden.
func AuthorizeMutation(res Owned, user *User) error {
	if !Visible(res) {
		return ErrNotFound
	}
	if user == nil {
		return ErrUnauthenticated
	}
	if res.OwnerID() != user.ID {
		return ErrForbidden
	}
	return nil
}
