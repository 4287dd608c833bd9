package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

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

const selectPosts = `SELECT p.id, p.title, p.description, p.content, p.image_public_id, p.image_secure_url,
       p.category, p.author_id, u.username, u.email, p.is_featured, p.summary, p.created_at, p.updated_at,
       COALESCE((SELECT json_agg(l.user_id ORDER BY l.created_at) FROM post_likes l WHERE l.post_id = p.id), '[]')
FROM posts p
LEFT JOIN users u ON u.id = p.author_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	var (
		category        string
		username, email sql.NullString
		likes           []byte
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Content, &p.Image.PublicID, &p.Image.SecureURL,
		&category, &p.AuthorID, &username, &email, &p.IsFeatured, &p.Summary, &p.CreatedAt, &p.UpdatedAt, &likes)
	if err != nil {
		return nil, err
	}
	p.Category = models.Category(category)
	if username.Valid {
		p.Author = &models.UserRef{ID: p.AuthorID, Username: username.String, Email: email.String}
	}

	var ids []string
	if err := json.Unmarshal(likes, &ids); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	p.Likes = make([]models.UserRef, 0, len(ids))
	for _, id := range ids {
		p.Likes = append(p.Likes, models.UserRef{ID: id})
	}
	return p, nil
}

func (r *PostgresRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	defer rows.Close()

	out := make([]*models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (title, description, content, image_public_id, image_secure_url, category, author_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, is_featured, summary, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Description, post.Content, post.Image.PublicID, post.Image.SecureURL,
		string(post.Category), post.AuthorID).
		Scan(&post.ID, &post.IsFeatured, &post.Summary, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	if post.Likes == nil {
		post.Likes = []models.UserRef{}
	}
	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, selectPosts+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}

	likers, err := r.likers(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Likes = likers
	return p, nil
}

// likers resolves the like set of a post. Accounts that no longer exist are
// kept as bare identifiers.
func (r *PostgresRepository) likers(ctx context.Context, postID string) ([]models.UserRef, error) {
	query :=
		`SELECT l.user_id, u.username, u.email
		 FROM post_likes l
		 LEFT JOIN users u ON u.id = l.user_id
		 WHERE l.post_id = $1
		 ORDER BY l.created_at`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	defer rows.Close()

	out := make([]models.UserRef, 0)
	for rows.Next() {
		var (
			ref             models.UserRef
			username, email sql.NullString
		)
		if err := rows.Scan(&ref.ID, &username, &email); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ref.Username, ref.Email = username.String, email.String
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`UPDATE posts
		 SET title = $2, description = $3, content = $4, category = $5,
		     image_public_id = $6, image_secure_url = $7, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, post.ID, post.Title, post.Description, post.Content,
		string(post.Category), post.Image.PublicID, post.Image.SecureURL)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	if err := expectOne(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, post.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// where renders f as a WHERE clause with positional arguments.
func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, string(f.Category))
		conds = append(conds, "p.category = $"+strconv.Itoa(len(args)))
	}
	if f.AuthorID != "" {
		args = append(args, f.AuthorID)
		conds = append(conds, "p.author_id = $"+strconv.Itoa(len(args)))
	}
	if f.FeaturedOnly {
		conds = append(conds, "p.is_featured")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) Count(ctx context.Context, f Filter) (int, error) {
	where, args := f.where()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n); err != nil {
		return 0, dbx.Classify(err)
	}
	return n, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter, offset, limit int) ([]*models.Post, error) {
	where, args := f.where()
	query := selectPosts + where + ` ORDER BY p.created_at DESC, p.id`

	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}
	return r.queryPosts(ctx, query, args...)
}

func (r *PostgresRepository) ListMostLiked(ctx context.Context, limit int) ([]*models.Post, error) {
	query := selectPosts + `
ORDER BY (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) DESC, p.created_at DESC
LIMIT $1`
	return r.queryPosts(ctx, query, limit)
}

func (r *PostgresRepository) Lock(ctx context.Context, id string) error {
	var got string
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&got); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *PostgresRepository) AddLike(ctx context.Context, postID, userID string) error {
	query :=
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (post_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, postID, userID); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *PostgresRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, dbx.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	query :=
		`UPDATE posts SET is_featured = NOT is_featured, updated_at = now()
		 WHERE id = $1
		 RETURNING is_featured`

	var featured bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&featured); err != nil {
		return false, dbx.Classify(err)
	}
	return featured, nil
}

func (r *PostgresRepository) StoreSummary(ctx context.Context, id, summary string) (string, error) {
	query :=
		`UPDATE posts SET summary = CASE WHEN summary = '' THEN $2 ELSE summary END
		 WHERE id = $1
		 RETURNING summary`

	var stored string
	if err := r.db.QueryRowContext(ctx, query, id, summary).Scan(&stored); err != nil {
		return "", dbx.Classify(err)
	}
	return stored, nil
}
