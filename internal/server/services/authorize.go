package services

import (
	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

// Action names a mutation subject to authorization.
type Action string

const (
	ActionCreatePost     Action = "post.create"
	ActionUpdatePost     Action = "post.update"
	ActionDeletePost     Action = "post.delete"
	ActionLikePost       Action = "post.like"
	ActionFeaturePost    Action = "post.feature"
	ActionCreateComment  Action = "comment.create"
	ActionDeleteComment  Action = "comment.delete"
	ActionListAuthorPost Action = "post.list_by_author"
)

// authorize is the only place that decides whether actor may perform
// action on a resource owned by ownerID (empty when there is no owner yet).
// Any authenticated account may currently do anything; owner checks belong
// here.
func authorize(actor *models.User, action Action, ownerID string) error {
	if actor == nil {
		return common.WrapError(common.KindUnauthenticated, msgTokenMissing, common.ErrorUnauthorized)
	}
	return nil
}
