// Package services contains the server-side business logic. This file
// implements UserService: registration, login, session resolution and
// self-service profile management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/auth"
	"github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
	"github.com/dmitrijs2005/blogkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgAllFieldsRequired = "All fields are required"
	msgEmailTaken        = "User with this email already exists"
	msgBadCredentials    = "Invalid email or password"
	msgTokenMissing      = "Not authorized, token missing"
	msgTokenInvalid      = "Invalid or expired token"
	msgUserNotFound      = "User not found"
	msgInvalidRole       = "Invalid role"
	msgPasswordTooLong   = "Password is too long"
)

// Session is an authenticated account together with its freshly issued
// token.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// ProfileUpdate carries the fields to change; empty fields are left as is.
type ProfileUpdate struct {
	Username string
	Email    string
	Password string
	Role     string
}

type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	bcryptCost            int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		bcryptCost:            cost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs it in. An email that is already
// registered is a conflict even when other fields are missing.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	repo := s.repomanager.Users(s.db)

	if in.Email != "" {
		_, err := repo.GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			return nil, common.NewError(common.KindConflict, msgEmailTaken)
		case !errors.Is(err, common.ErrorNotFound):
			return nil, internalError(err)
		}
	}

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, common.NewError(common.KindInvalidInput, msgAllFieldsRequired)
	}

	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
		if !role.Valid() {
			return nil, common.NewError(common.KindInvalidInput, msgInvalidRole)
		}
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := repo.Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.WrapError(common.KindConflict, msgEmailTaken, err)
		}
		return nil, internalError(err)
	}

	return s.newSession(u)
}

// Login verifies credentials. Unknown email and wrong password fail the
// same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewError(common.KindUnauthenticated, msgBadCredentials)
	}

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WrapError(common.KindUnauthenticated, msgBadCredentials, err)
		}
		return nil, internalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, common.WrapError(common.KindUnauthenticated, msgBadCredentials, err)
	}

	return s.newSession(u)
}

// Authenticate resolves a session token to the current account record. All
// token and lookup failures collapse into one unauthenticated error that
// keeps the underlying cause.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.NewError(common.KindUnauthenticated, msgTokenMissing)
	}

	id, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.WrapError(common.KindUnauthenticated, msgTokenInvalid, err)
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorInvalidID) {
			return nil, common.WrapError(common.KindUnauthenticated, msgTokenInvalid, err)
		}
		return nil, internalError(err)
	}
	return u, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	return u, nil
}

// UpdateProfile applies the non-empty fields of in and re-issues the token
// so that it reflects a changed role.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*Session, error) {
	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}

	if v := strings.TrimSpace(in.Username); v != "" {
		u.Username = v
	}
	if v := normalizeEmail(in.Email); v != "" {
		u.Email = v
	}
	if in.Role != "" {
		role := models.Role(in.Role)
		if !role.Valid() {
			return nil, common.NewError(common.KindInvalidInput, msgInvalidRole)
		}
		u.Role = role
	}
	if in.Password != "" {
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	updated, err := repo.Update(ctx, u)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.WrapError(common.KindConflict, msgEmailTaken, err)
		}
		return nil, userLookupError(err)
	}

	return s.newSession(updated)
}

// DeleteProfile removes the account. Posts and comments it authored stay.
func (s *UserService) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.repomanager.Users(s.db).Delete(ctx, userID); err != nil {
		return userLookupError(err)
	}
	return nil
}

// ListUsers returns every account. Any authenticated caller may list.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return users, nil
}

// --- helpers below ---

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.WrapError(common.KindInvalidInput, msgPasswordTooLong, err)
		}
		return "", internalError(err)
	}
	return string(hash), nil
}

func (s *UserService) newSession(u *models.User) (*Session, error) {
	token, expires, err := auth.GenerateToken(auth.Identity{UserID: u.ID, Role: u.Role}, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, internalError(err)
	}
	return &Session{User: u, Token: token, ExpiresAt: expires}, nil
}

func userLookupError(err error) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorInvalidID) {
		return common.WrapError(common.KindNotFound, msgUserNotFound, err)
	}
	return internalError(err)
}
