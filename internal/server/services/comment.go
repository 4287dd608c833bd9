package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
)

const (
	msgCommentNotFound     = "Comment not found"
	msgInvalidCommentID    = "Invalid comment ID"
	msgCommentFieldsNeeded = "Post ID and content are required"
)

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager) *CommentService {
	return &CommentService{db: db, repomanager: m}
}

// Create attaches a comment by actor to an existing post.
func (s *CommentService) Create(ctx context.Context, actor *models.User, postID, content string) (*models.Comment, error) {
	if err := authorize(actor, ActionCreateComment, ""); err != nil {
		return nil, err
	}

	postID, content = strings.TrimSpace(postID), strings.TrimSpace(content)
	if postID == "" || content == "" {
		return nil, common.NewError(common.KindInvalidInput, msgCommentFieldsNeeded)
	}
	if err := validID(postID, msgInvalidPostID); err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Posts(s.db).GetByID(ctx, postID); err != nil {
		return nil, postLookupError(err)
	}

	c, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{
		Content: content,
		PostID:  postID,
		UserID:  actor.ID,
	})
	if err != nil {
		return nil, internalError(err)
	}
	c.User = actor.Ref()
	return c, nil
}

// ListForPost returns the comments of a post, newest first. A post without
// comments, or one that does not exist, yields an empty list.
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	if err := validID(postID, msgInvalidPostID); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Comments(s.db).ListByPost(ctx, postID)
	if err != nil {
		return nil, internalError(err)
	}
	return list, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := authorize(actor, ActionDeleteComment, ""); err != nil {
		return err
	}
	if err := validID(id, msgInvalidCommentID); err != nil {
		return err
	}
	if err := s.repomanager.Comments(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.WrapError(common.KindNotFound, msgCommentNotFound, err)
		}
		return internalError(err)
	}
	return nil
}
