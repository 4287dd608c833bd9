package models

import "time"

// Image locates an uploaded post image in object storage. Both fields are
// empty when the post has no image.
type Image struct {
	PublicID  string
	SecureURL string
}

type Post struct {
	ID          string
	Title       string
	Description string
	Content     string
	Image       Image
	Category    Category
	AuthorID    string
	// Author is nil when the account no longer exists.
	Author *UserRef
	// Likes holds one entry per liking account; in listings only IDs are set.
	Likes      []UserRef
	IsFeatured bool
	Summary    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LikedBy reports whether userID is among the post's likers.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.ID == userID {
			return true
		}
	}
	return false
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts      []*Post
	Total      int
	Page       int
	TotalPages int
}
