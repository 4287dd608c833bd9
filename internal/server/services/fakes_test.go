package services

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/dbx"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/comments"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/blogkeeper/internal/server/storage"
	"github.com/google/uuid"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newTestLogger(t *testing.T) logging.Logger {
	t.Helper()
	l, err := logging.New(io.Discard, "text", "error")
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return l
}

// store is an in-memory database shared by the fake repositories. The
// clock ticks once per write so that "newest first" is deterministic.
type store struct {
	mu       sync.Mutex
	now      time.Time
	users    map[string]*models.User
	posts    map[string]*models.Post
	likes    map[string][]string
	comments map[string]*models.Comment

	// failWith, when set, is returned by every repository call.
	failWith error
}

func newStore() *store {
	return &store{
		now:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    map[string]*models.User{},
		posts:    map[string]*models.Post{},
		likes:    map[string][]string{},
		comments: map[string]*models.Comment{},
	}
}

func (s *store) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *store) ref(id string) *models.UserRef {
	if u, ok := s.users[id]; ok {
		return u.Ref()
	}
	return nil
}

type fakeRepoManager struct{ s *store }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return &memUsers{m.s} }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository             { return &memPosts{m.s} }
func (m *fakeRepoManager) Comments(dbx.DBTX) comments.Repository       { return &memComments{m.s} }

// --- users ---

type memUsers struct{ s *store }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	for _, v := range r.s.users {
		if v.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	for _, u := range r.s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) Update(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	for _, v := range r.s.users {
		if v.ID != u.ID && v.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.UpdatedAt = r.s.tick()
	r.s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *memUsers) List(context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- posts ---

type memPosts struct{ s *store }

func (r *memPosts) view(p *models.Post, full bool) *models.Post {
	c := *p
	c.Author = r.s.ref(p.AuthorID)
	c.Likes = make([]models.UserRef, 0, len(r.s.likes[p.ID]))
	for _, id := range r.s.likes[p.ID] {
		ref := models.UserRef{ID: id}
		if u := r.s.ref(id); full && u != nil {
			ref = *u
		}
		c.Likes = append(c.Likes, ref)
	}
	return &c
}

func (r *memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	c := *p
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	c.Likes = nil
	r.s.posts[c.ID] = &c
	return r.view(&c, true), nil
}

func (r *memPosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	p, ok := r.s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.view(p, true), nil
}

func (r *memPosts) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.posts[p.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cur.Title, cur.Description, cur.Content, cur.Category, cur.Image = p.Title, p.Description, p.Content, p.Category, p.Image
	cur.UpdatedAt = r.s.tick()
	return r.view(cur, true), nil
}

func (r *memPosts) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.posts, id)
	delete(r.s.likes, id)
	return nil
}

func (r *memPosts) filtered(f posts.Filter) []*models.Post {
	out := make([]*models.Post, 0)
	for _, p := range r.s.posts {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.AuthorID != "" && p.AuthorID != f.AuthorID {
			continue
		}
		if f.FeaturedOnly && !p.IsFeatured {
			continue
		}
		out = append(out, r.view(p, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memPosts) Count(_ context.Context, f posts.Filter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return 0, r.s.failWith
	}
	return len(r.filtered(f)), nil
}

func (r *memPosts) List(_ context.Context, f posts.Filter, offset, limit int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	all := r.filtered(f)
	if offset >= len(all) {
		return []*models.Post{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memPosts) ListMostLiked(_ context.Context, limit int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filtered(posts.Filter{})
	sort.SliceStable(all, func(i, j int) bool { return len(all[i].Likes) > len(all[j].Likes) })
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memPosts) Lock(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *memPosts) AddLike(_ context.Context, postID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.likes[postID] {
		if id == userID {
			return nil
		}
	}
	r.s.likes[postID] = append(r.s.likes[postID], userID)
	return nil
}

func (r *memPosts) RemoveLike(_ context.Context, postID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := r.s.likes[postID]
	for i, id := range ids {
		if id == userID {
			r.s.likes[postID] = append(ids[:i:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memPosts) ToggleFeatured(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return false, common.ErrorNotFound
	}
	p.IsFeatured = !p.IsFeatured
	return p.IsFeatured, nil
}

func (r *memPosts) StoreSummary(_ context.Context, id, summary string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	if p.Summary == "" {
		p.Summary = summary
	}
	return p.Summary, nil
}

// --- comments ---

type memComments struct{ s *store }

func (r *memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	cp := *c
	cp.ID = uuid.NewString()
	cp.CreatedAt = r.s.tick()
	cp.UpdatedAt = cp.CreatedAt
	r.s.comments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memComments) ListByPost(_ context.Context, postID string) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := make([]*models.Comment, 0)
	for _, c := range r.s.comments {
		if c.PostID != postID {
			continue
		}
		cp := *c
		cp.User = r.s.ref(c.UserID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memComments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.comments, id)
	return nil
}

// --- collaborators ---

type fakeUploader struct {
	calls int
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, u *storage.Upload) (models.Image, error) {
	f.calls++
	if f.err != nil {
		return models.Image{}, f.err
	}
	return models.Image{PublicID: "blog-posts/img" + u.Ext(), SecureURL: "https://cdn.test/blog-posts/img" + u.Ext()}, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	out     string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}
