package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogkeeper/internal/server/storage"
	"github.com/dmitrijs2005/blogkeeper/internal/server/textgen"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MostLikedLimit   = 10
)

const (
	msgPostNotFound         = "Post not found"
	msgNoPostFound          = "No post found"
	msgInvalidPostID        = "Invalid post ID"
	msgInvalidUserID        = "Invalid user ID"
	msgInvalidCategory      = "Invalid category"
	msgInvalidPage          = "Invalid page number"
	msgNoPosts              = "No posts found"
	msgNoPostsInCategory    = "No posts found in this category"
	msgNoPostsForUser       = "No posts found for this user"
	msgImageUploadFailed    = "Image upload failed"
	msgTitleDescRequired    = "Title and description are required"
	msgAIResponseEmpty      = "AI response is empty or malformed"
	msgSummaryFailed        = "Failed to generate summary"
	msgContentGenerationErr = "Failed to generate content"
)

// ImageUploader forwards a spooled upload to object storage.
type ImageUploader interface {
	Upload(ctx context.Context, u *storage.Upload) (models.Image, error)
}

// TextGenerator turns a prompt into text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PostInput holds the four required text fields of a post.
type PostInput struct {
	Title       string
	Description string
	Content     string
	Category    string
}

func (in PostInput) trimmed() PostInput {
	return PostInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Content:     strings.TrimSpace(in.Content),
		Category:    strings.TrimSpace(in.Category),
	}
}

func (in PostInput) validate() (models.Category, error) {
	if in.Title == "" || in.Description == "" || in.Content == "" || in.Category == "" {
		return "", common.NewError(common.KindInvalidInput, msgAllFieldsRequired)
	}
	category := models.Category(in.Category)
	if !category.Valid() {
		return "", common.NewError(common.KindInvalidInput, msgInvalidCategory)
	}
	return category, nil
}

// PageRequest selects a page of a listing. Page 0 means the first page and
// Limit 0 the default page size; negative pages are rejected. Limit is capped
// at MaxPageLimit.
type PageRequest struct {
	Page  int
	Limit int
}

func (r PageRequest) normalized() PageRequest {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit <= 0 {
		r.Limit = DefaultPageLimit
	}
	if r.Limit > MaxPageLimit {
		r.Limit = MaxPageLimit
	}
	return r
}

// offset is only meaningful once Page has been checked against the page count.
func (r PageRequest) offset() int {
	return (r.Page - 1) * r.Limit
}

type LikeResult struct {
	Post       *models.Post
	Liked      bool
	TotalLikes int
}

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    ImageUploader
	generator   TextGenerator
	logger      logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, uploader ImageUploader, generator TextGenerator, logger logging.Logger) *PostService {
	return &PostService{
		db:          db,
		repomanager: m,
		uploader:    uploader,
		generator:   generator,
		logger:      logger.With("module", "posts"),
	}
}

// discard removes the temporary upload; called on every exit path of the
// operations that receive one.
func (s *PostService) discard(ctx context.Context, u *storage.Upload) {
	if err := u.Discard(); err != nil {
		s.logger.Warn(ctx, "temp upload not removed", "path", u.Path(), "error", err)
	}
}

func (s *PostService) uploadImage(ctx context.Context, u *storage.Upload) (models.Image, error) {
	img, err := s.uploader.Upload(ctx, u)
	if err != nil {
		return models.Image{}, common.WrapError(common.KindUpstreamFailure, msgImageUploadFailed, err)
	}
	return img, nil
}

// Create stores a new post by author. A supplied image is uploaded first; a
// failed upload aborts the creation.
func (s *PostService) Create(ctx context.Context, author *models.User, in PostInput, image *storage.Upload) (*models.Post, error) {
	defer s.discard(ctx, image)

	if err := authorize(author, ActionCreatePost, ""); err != nil {
		return nil, err
	}

	in = in.trimmed()
	category, err := in.validate()
	if err != nil {
		return nil, err
	}

	var img models.Image
	if image != nil {
		if img, err = s.uploadImage(ctx, image); err != nil {
			return nil, err
		}
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Category:    category,
		Image:       img,
		AuthorID:    author.ID,
	})
	if err != nil {
		return nil, internalError(err)
	}
	post.Author = author.Ref()
	return post, nil
}

// Get returns a post with its author and likers resolved.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	if err := validID(id, msgInvalidPostID); err != nil {
		return nil, err
	}
	post, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, postLookupError(err)
	}
	return post, nil
}

// Update replaces all four text fields. The image is replaced only when a
// new one is supplied.
func (s *PostService) Update(ctx context.Context, actor *models.User, id string, in PostInput, image *storage.Upload) (*models.Post, error) {
	defer s.discard(ctx, image)

	if err := validID(id, msgInvalidPostID); err != nil {
		return nil, err
	}
	in = in.trimmed()
	category, err := in.validate()
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Posts(s.db)
	post, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, postLookupError(err)
	}
	if err := authorize(actor, ActionUpdatePost, post.AuthorID); err != nil {
		return nil, err
	}

	if image != nil {
		if post.Image, err = s.uploadImage(ctx, image); err != nil {
			return nil, err
		}
	}
	post.Title = in.Title
	post.Description = in.Description
	post.Content = in.Content
	post.Category = category

	updated, err := repo.Update(ctx, post)
	if err != nil {
		return nil, postLookupError(err)
	}
	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := validID(id, msgInvalidPostID); err != nil {
		return err
	}
	if err := authorize(actor, ActionDeletePost, ""); err != nil {
		return err
	}
	if err := s.repomanager.Posts(s.db).Delete(ctx, id); err != nil {
		return postLookupError(err)
	}
	return nil
}

// ToggleLike adds actor to the post's like set, or removes it if present.
// The check and the write happen under a row lock so concurrent toggles by
// the same account serialize.
func (s *PostService) ToggleLike(ctx context.Context, actor *models.User, id string) (*LikeResult, error) {
	if err := validID(id, msgInvalidPostID); err != nil {
		return nil, err
	}
	if err := authorize(actor, ActionLikePost, ""); err != nil {
		return nil, err
	}

	var liked bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)
		if err := repo.Lock(ctx, id); err != nil {
			return err
		}
		removed, err := repo.RemoveLike(ctx, id, actor.ID)
		if err != nil {
			return err
		}
		if removed {
			return nil
		}
		liked = true
		return repo.AddLike(ctx, id, actor.ID)
	})
	if err != nil {
		return nil, postLookupError(err)
	}

	post, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, postLookupError(err)
	}
	return &LikeResult{Post: post, Liked: liked, TotalLikes: len(post.Likes)}, nil
}

func (s *PostService) ToggleFeatured(ctx context.Context, actor *models.User, id string) (*models.Post, error) {
	if err := validID(id, msgInvalidPostID); err != nil {
		return nil, err
	}
	if err := authorize(actor, ActionFeaturePost, ""); err != nil {
		return nil, err
	}

	repo := s.repomanager.Posts(s.db)
	if _, err := repo.ToggleFeatured(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WrapError(common.KindNotFound, msgNoPostFound, err)
		}
		return nil, postLookupError(err)
	}
	post, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, postLookupError(err)
	}
	return post, nil
}

// ListFeatured returns every featured post, newest first.
func (s *PostService) ListFeatured(ctx context.Context) ([]*models.Post, error) {
	list, err := s.repomanager.Posts(s.db).List(ctx, posts.Filter{FeaturedOnly: true}, 0, 0)
	if err != nil {
		return nil, internalError(err)
	}
	return list, nil
}

func (s *PostService) ListMostLiked(ctx context.Context) ([]*models.Post, error) {
	list, err := s.repomanager.Posts(s.db).ListMostLiked(ctx, MostLikedLimit)
	if err != nil {
		return nil, internalError(err)
	}
	return list, nil
}

// List pages through all posts. An empty store is not found; a page outside
// [1, totalPages] is invalid input.
func (s *PostService) List(ctx context.Context, req PageRequest) (*models.PostPage, error) {
	req = req.normalized()
	repo := s.repomanager.Posts(s.db)

	total, err := repo.Count(ctx, posts.Filter{})
	if err != nil {
		return nil, internalError(err)
	}
	if total == 0 {
		return nil, common.NewError(common.KindNotFound, msgNoPosts)
	}

	page := newPage(total, req)
	if req.Page < 1 || req.Page > page.TotalPages {
		return nil, common.NewError(common.KindInvalidInput, msgInvalidPage)
	}

	if page.Posts, err = repo.List(ctx, posts.Filter{}, req.offset(), req.Limit); err != nil {
		return nil, internalError(err)
	}
	if len(page.Posts) == 0 {
		return nil, common.NewError(common.KindEmpty, msgNoPosts)
	}
	return page, nil
}

// ListByCategory pages through one category. An unknown category and a
// category without posts are both not found.
func (s *PostService) ListByCategory(ctx context.Context, category string, req PageRequest) (*models.PostPage, error) {
	c := models.Category(category)
	if !c.Valid() {
		return nil, common.NewError(common.KindNotFound, msgNoPostsInCategory)
	}
	return s.listFiltered(ctx, posts.Filter{Category: c}, req, msgNoPostsInCategory)
}

// ListByAuthor pages through the posts of one account.
func (s *PostService) ListByAuthor(ctx context.Context, actor *models.User, authorID string, req PageRequest) (*models.PostPage, error) {
	if err := authorize(actor, ActionListAuthorPost, authorID); err != nil {
		return nil, err
	}
	if err := validID(authorID, msgInvalidUserID); err != nil {
		return nil, err
	}
	return s.listFiltered(ctx, posts.Filter{AuthorID: authorID}, req, msgNoPostsForUser)
}

func (s *PostService) listFiltered(ctx context.Context, f posts.Filter, req PageRequest, emptyMessage string) (*models.PostPage, error) {
	req = req.normalized()
	if req.Page < 1 {
		return nil, common.NewError(common.KindInvalidInput, msgInvalidPage)
	}
	repo := s.repomanager.Posts(s.db)

	total, err := repo.Count(ctx, f)
	if err != nil {
		return nil, internalError(err)
	}
	if total == 0 {
		return nil, common.NewError(common.KindNotFound, emptyMessage)
	}

	page := newPage(total, req)
	if req.Page > page.TotalPages {
		return page, nil
	}
	if page.Posts, err = repo.List(ctx, f, req.offset(), req.Limit); err != nil {
		return nil, internalError(err)
	}
	return page, nil
}

func newPage(total int, req PageRequest) *models.PostPage {
	pages := total / req.Limit
	if total%req.Limit != 0 {
		pages++
	}
	return &models.PostPage{
		Total:      total,
		Page:       req.Page,
		TotalPages: pages,
		Posts:      []*models.Post{},
	}
}

func summaryPrompt(content string) string {
	return "Summarize the following blog content in 4-5 lines:\n\n" + content
}

func draftPrompt(title, desc string) string {
	return fmt.Sprintf("Write a detailed blog post of minimum 200 words on the topic: \"%s\". "+
		"Make it engaging, informative and relevant to the description \"%s\" ", title, desc)
}

// Summary returns the cached summary of a post, generating and storing it on
// first use. Only the first stored summary is ever kept.
func (s *PostService) Summary(ctx context.Context, id string) (string, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if post.Summary != "" {
		return post.Summary, nil
	}

	text, err := s.generate(ctx, summaryPrompt(post.Content), msgSummaryFailed)
	if err != nil {
		return "", err
	}

	stored, err := s.repomanager.Posts(s.db).StoreSummary(ctx, id, text)
	if err != nil {
		return "", postLookupError(err)
	}
	return stored, nil
}

// GenerateDraft writes blog post text for a title and description. It
// touches no stored post.
func (s *PostService) GenerateDraft(ctx context.Context, title, desc string) (string, error) {
	title, desc = strings.TrimSpace(title), strings.TrimSpace(desc)
	if title == "" || desc == "" {
		return "", common.NewError(common.KindInvalidInput, msgTitleDescRequired)
	}
	return s.generate(ctx, draftPrompt(title, desc), msgContentGenerationErr)
}

func (s *PostService) generate(ctx context.Context, prompt, failure string) (string, error) {
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, textgen.ErrEmptyResponse) {
			return "", common.WrapError(common.KindUpstreamFailure, msgAIResponseEmpty, err)
		}
		return "", common.WrapError(common.KindUpstreamFailure, failure, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", common.NewError(common.KindUpstreamFailure, msgAIResponseEmpty)
	}
	return text, nil
}

func postLookupError(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.WrapError(common.KindNotFound, msgPostNotFound, err)
	case errors.Is(err, common.ErrorInvalidID):
		return common.WrapError(common.KindInvalidInput, msgInvalidPostID, err)
	}
	return internalError(err)
}
