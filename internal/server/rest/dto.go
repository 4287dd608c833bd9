package rest

import (
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

type userDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserDTOs(list []*models.User) []userDTO {
	out := make([]userDTO, 0, len(list))
	for _, u := range list {
		out = append(out, toUserDTO(u))
	}
	return out
}

type userRefDTO struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func toUserRefDTO(r *models.UserRef) *userRefDTO {
	if r == nil {
		return nil
	}
	return &userRefDTO{ID: r.ID, Username: r.Username, Email: r.Email}
}

type imageDTO struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

type postDTO struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Desc       string       `json:"desc"`
	Content    string       `json:"content"`
	Image      imageDTO     `json:"image"`
	Category   string       `json:"category"`
	Author     *userRefDTO  `json:"author"`
	Likes      []userRefDTO `json:"likes"`
	IsFeatured bool         `json:"isFeatured"`
	Summary    string       `json:"summary"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func toPostDTO(p *models.Post) postDTO {
	likes := make([]userRefDTO, 0, len(p.Likes))
	for i := range p.Likes {
		likes = append(likes, *toUserRefDTO(&p.Likes[i]))
	}
	return postDTO{
		ID:         p.ID,
		Title:      p.Title,
		Desc:       p.Description,
		Content:    p.Content,
		Image:      imageDTO{PublicID: p.Image.PublicID, SecureURL: p.Image.SecureURL},
		Category:   string(p.Category),
		Author:     toUserRefDTO(p.Author),
		Likes:      likes,
		IsFeatured: p.IsFeatured,
		Summary:    p.Summary,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toPostDTOs(list []*models.Post) []postDTO {
	out := make([]postDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toPostDTO(p))
	}
	return out
}

type commentDTO struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Post      string      `json:"post"`
	User      *userRefDTO `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toCommentDTO(c *models.Comment) commentDTO {
	return commentDTO{
		ID:        c.ID,
		Content:   c.Content,
		Post:      c.PostID,
		User:      toUserRefDTO(c.User),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCommentDTOs(list []*models.Comment) []commentDTO {
	out := make([]commentDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toCommentDTO(c))
	}
	return out
}

// pageDTO fills the pagination fields shared by the listing responses.
func pageDTO(p *models.PostPage) envelope {
	return envelope{
		"totalPosts":  p.Total,
		"currentPage": p.Page,
		"totalPages":  p.TotalPages,
		"posts":       toPostDTOs(p.Posts),
	}
}
