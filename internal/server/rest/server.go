// Package rest exposes the services over HTTP/JSON.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
	"github.com/dmitrijs2005/blogkeeper/internal/server/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in services.ProfileUpdate) (*services.Session, error)
	DeleteProfile(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type PostService interface {
	Create(ctx context.Context, author *models.User, in services.PostInput, image *storage.Upload) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, actor *models.User, id string, in services.PostInput, image *storage.Upload) (*models.Post, error)
	Delete(ctx context.Context, actor *models.User, id string) error
	ToggleLike(ctx context.Context, actor *models.User, id string) (*services.LikeResult, error)
	ToggleFeatured(ctx context.Context, actor *models.User, id string) (*models.Post, error)
	ListFeatured(ctx context.Context) ([]*models.Post, error)
	ListMostLiked(ctx context.Context) ([]*models.Post, error)
	List(ctx context.Context, req services.PageRequest) (*models.PostPage, error)
	ListByCategory(ctx context.Context, category string, req services.PageRequest) (*models.PostPage, error)
	ListByAuthor(ctx context.Context, actor *models.User, authorID string, req services.PageRequest) (*models.PostPage, error)
	Summary(ctx context.Context, id string) (string, error)
	GenerateDraft(ctx context.Context, title, desc string) (string, error)
}

type CommentService interface {
	Create(ctx context.Context, actor *models.User, postID, content string) (*models.Comment, error)
	ListForPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Delete(ctx context.Context, actor *models.User, id string) error
}

type Server struct {
	address  string
	config   *config.Config
	users    UserService
	posts    PostService
	comments CommentService
	limiter  *rateLimiter
	logger   logging.Logger
}

func NewServer(c *config.Config, l logging.Logger, us UserService, ps PostService, cs CommentService) *Server {
	return &Server{
		address:  c.EndpointAddrHTTP,
		config:   c,
		users:    us,
		posts:    ps,
		comments: cs,
		limiter:  newRateLimiter(c.AuthRateLimit, time.Minute),
		logger:   l.With("module", "rest"),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/", s.hello)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.hello)

		r.Route("/auth", func(r chi.Router) {
			r.With(s.rateLimit).Post("/register", s.register)
			r.With(s.rateLimit).Post("/login", s.login)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/profile", s.profile)
				r.Put("/profile", s.updateProfile)
				r.Delete("/profile", s.deleteProfile)
				r.Get("/", s.listUsers)
			})
		})

		r.Get("/categories", s.listCategories)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.listPosts)
			r.Get("/most-liked", s.listMostLiked)
			r.Get("/featured", s.listFeatured)
			r.Get("/category/{category}", s.listByCategory)
			r.Post("/generate-content", s.generateContent)
			r.Get("/summarize/{postId}", s.summarize)
			r.Get("/{id}", s.getPost)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.createPost)
				r.Get("/user/{userId}", s.listByAuthor)
				r.Put("/{id}", s.updatePost)
				r.Delete("/{id}", s.deletePost)
				r.Put("/like/{postId}", s.toggleLike)
				r.Put("/featured/{id}", s.toggleFeatured)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{postId}", s.listComments)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.createComment)
				r.Delete("/{id}", s.deleteComment)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
