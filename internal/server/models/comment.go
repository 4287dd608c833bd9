package models

import "time"

type Comment struct {
	ID      string
	Content string
	PostID  string
	UserID  string
	// User is nil when the author account no longer exists.
	User      *UserRef
	CreatedAt time.Time
	UpdatedAt time.Time
}
