// Package posts stores blog posts and their like sets.
package posts

import (
	"context"

	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

// Filter narrows a listing. Zero values mean "any".
type Filter struct {
	Category     models.Category
	AuthorID     string
	FeaturedOnly bool
}

// Repository persists posts. Listings are ordered newest first and resolve
// each author to a models.UserRef; GetByID additionally resolves likers.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// Update replaces title, description, content, category and image.
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id string) error

	Count(ctx context.Context, f Filter) (int, error)
	// List returns at most limit posts after skipping offset; limit 0 means all.
	List(ctx context.Context, f Filter, offset, limit int) ([]*models.Post, error)
	ListMostLiked(ctx context.Context, limit int) ([]*models.Post, error)

	// Lock takes a row lock on the post for the rest of the transaction.
	Lock(ctx context.Context, id string) error
	AddLike(ctx context.Context, postID, userID string) error
	// RemoveLike reports whether a like was present.
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)

	// ToggleFeatured flips the flag and returns the new value.
	ToggleFeatured(ctx context.Context, id string) (bool, error)
	// StoreSummary saves summary only if none is stored yet and returns the
	// summary that ended up stored.
	StoreSummary(ctx context.Context, id, summary string) (string, error)
}
