package comments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (content, post_id, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	if err := r.db.QueryRowContext(ctx, query, c.Content, c.PostID, c.UserID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	query :=
		`SELECT c.id, c.content, c.post_id, c.user_id, u.username, u.email, c.created_at, c.updated_at
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.user_id
		 WHERE c.post_id = $1
		 ORDER BY c.created_at DESC, c.id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	defer rows.Close()

	out := make([]*models.Comment, 0)
	for rows.Next() {
		var (
			c               models.Comment
			username, email sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Content, &c.PostID, &c.UserID, &username, &email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if username.Valid {
			c.User = &models.UserRef{ID: c.UserID, Username: username.String, Email: email.String}
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return dbx.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
