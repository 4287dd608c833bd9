package rest

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
	"github.com/dmitrijs2005/blogkeeper/internal/server/storage"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

const validToken = "valid-token"

var alice = &models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}

// fakeUsers accepts validToken as alice's session.
type fakeUsers struct {
	registerIn services.RegisterInput
	updateIn   services.ProfileUpdate
	err        error
	deleted    string
}

func (f *fakeUsers) session() *services.Session {
	return &services.Session{User: alice, Token: "issued-token", ExpiresAt: time.Now().Add(24 * time.Hour)}
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*services.Session, error) {
	f.registerIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.session(), nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.Session, error) {
	if email != alice.Email || password != "pw" {
		return nil, common.NewError(common.KindUnauthenticated, "Invalid email or password")
	}
	return f.session(), nil
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "":
		return nil, common.NewError(common.KindUnauthenticated, "Not authorized, token missing")
	case validToken:
		return alice, nil
	}
	return nil, common.WrapError(common.KindUnauthenticated, "Invalid or expired token", common.ErrInvalidToken)
}

func (f *fakeUsers) Profile(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return alice, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, in services.ProfileUpdate) (*services.Session, error) {
	f.updateIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.session(), nil
}

func (f *fakeUsers) DeleteProfile(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

func (f *fakeUsers) ListUsers(context.Context) ([]*models.User, error) {
	return []*models.User{alice}, f.err
}

func samplePost() *models.Post {
	return &models.Post{
		ID: "p-1", Title: "Hello", Description: "desc", Content: "body",
		Category: models.CategoryTechnology, AuthorID: alice.ID, Author: alice.Ref(),
		Likes: []models.UserRef{},
	}
}

// fakePosts records its inputs and returns canned results.
type fakePosts struct {
	err error

	gotActor    *models.User
	gotID       string
	gotInput    services.PostInput
	gotImage    []byte
	gotFilename string
	gotCategory string
	gotPage     services.PageRequest

	page  *models.PostPage
	liked bool
}

func (f *fakePosts) capture(in services.PostInput, image *storage.Upload) {
	f.gotInput = in
	if image == nil {
		return
	}
	f.gotFilename = image.Filename()
	if r, err := image.Open(); err == nil {
		f.gotImage, _ = io.ReadAll(r)
		_ = r.Close()
	}
	_ = image.Discard()
}

func (f *fakePosts) Create(_ context.Context, author *models.User, in services.PostInput, image *storage.Upload) (*models.Post, error) {
	f.gotActor = author
	f.capture(in, image)
	if f.err != nil {
		return nil, f.err
	}
	p := samplePost()
	p.Title = in.Title
	return p, nil
}

func (f *fakePosts) Get(_ context.Context, id string) (*models.Post, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	return samplePost(), nil
}

func (f *fakePosts) Update(_ context.Context, actor *models.User, id string, in services.PostInput, image *storage.Upload) (*models.Post, error) {
	f.gotActor, f.gotID = actor, id
	f.capture(in, image)
	if f.err != nil {
		return nil, f.err
	}
	return samplePost(), nil
}

func (f *fakePosts) Delete(_ context.Context, actor *models.User, id string) error {
	f.gotActor, f.gotID = actor, id
	return f.err
}

func (f *fakePosts) ToggleLike(_ context.Context, actor *models.User, id string) (*services.LikeResult, error) {
	f.gotActor, f.gotID = actor, id
	if f.err != nil {
		return nil, f.err
	}
	p := samplePost()
	if f.liked {
		p.Likes = []models.UserRef{{ID: actor.ID, Username: actor.Username, Email: actor.Email}}
	}
	return &services.LikeResult{Post: p, Liked: f.liked, TotalLikes: len(p.Likes)}, nil
}

func (f *fakePosts) ToggleFeatured(_ context.Context, actor *models.User, id string) (*models.Post, error) {
	f.gotActor, f.gotID = actor, id
	if f.err != nil {
		return nil, f.err
	}
	p := samplePost()
	p.IsFeatured = true
	return p, nil
}

func (f *fakePosts) ListFeatured(context.Context) ([]*models.Post, error) {
	return []*models.Post{samplePost()}, f.err
}

func (f *fakePosts) ListMostLiked(context.Context) ([]*models.Post, error) {
	return []*models.Post{samplePost()}, f.err
}

func (f *fakePosts) listing(req services.PageRequest) (*models.PostPage, error) {
	f.gotPage = req
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	return &models.PostPage{Posts: []*models.Post{samplePost()}, Total: 1, Page: 1, TotalPages: 1}, nil
}

func (f *fakePosts) List(_ context.Context, req services.PageRequest) (*models.PostPage, error) {
	return f.listing(req)
}

func (f *fakePosts) ListByCategory(_ context.Context, category string, req services.PageRequest) (*models.PostPage, error) {
	f.gotCategory = category
	return f.listing(req)
}

func (f *fakePosts) ListByAuthor(_ context.Context, actor *models.User, authorID string, req services.PageRequest) (*models.PostPage, error) {
	f.gotActor, f.gotID = actor, authorID
	return f.listing(req)
}

func (f *fakePosts) Summary(_ context.Context, id string) (string, error) {
	f.gotID = id
	return "short", f.err
}

func (f *fakePosts) GenerateDraft(_ context.Context, title, desc string) (string, error) {
	f.gotInput = services.PostInput{Title: title, Description: desc}
	return "draft", f.err
}

type fakeComments struct {
	err       error
	gotActor  *models.User
	gotPostID string
	gotBody   string
	gotID     string
}

func (f *fakeComments) Create(_ context.Context, actor *models.User, postID, content string) (*models.Comment, error) {
	f.gotActor, f.gotPostID, f.gotBody = actor, postID, content
	if f.err != nil {
		return nil, f.err
	}
	return &models.Comment{ID: "c-1", Content: content, PostID: postID, UserID: actor.ID, User: actor.Ref()}, nil
}

func (f *fakeComments) ListForPost(_ context.Context, postID string) ([]*models.Comment, error) {
	f.gotPostID = postID
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Comment{
		{ID: "c-2", Content: "second", PostID: postID, UserID: "u-2"},
		{ID: "c-1", Content: "first", PostID: postID, UserID: alice.ID, User: alice.Ref()},
	}, nil
}

func (f *fakeComments) Delete(_ context.Context, actor *models.User, id string) error {
	f.gotActor, f.gotID = actor, id
	return f.err
}

type testServer struct {
	*Server
	users    *fakeUsers
	posts    *fakePosts
	comments *fakeComments
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.UploadDir = t.TempDir()
	c.AuthRateLimit = 0
	return c
}

func newTestServer(t *testing.T, c *config.Config) *testServer {
	t.Helper()
	if c == nil {
		c = testConfig(t)
	}
	ts := &testServer{users: &fakeUsers{}, posts: &fakePosts{}, comments: &fakeComments{}}
	ts.Server = NewServer(c, nopLogger{}, ts.users, ts.posts, ts.comments)
	return ts
}

func (ts *testServer) do(t *testing.T, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func authHeader() []string {
	return []string{"Authorization", "Bearer " + validToken}
}
