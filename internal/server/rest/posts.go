package rest

import (
	"net/http"

	"github.com/dmitrijs2005/blogkeeper/internal/server/models"
)

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, "", envelope{"categories": models.Categories()})
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	in, image, err := s.readPostInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	post, err := s.posts.Create(r.Context(), userFromContext(r.Context()), in, image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "post created", "post_id", post.ID, "author_id", post.AuthorID)
	writeOK(w, http.StatusCreated, "Post created successfully", envelope{"post": toPostDTO(post)})
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", envelope{"post": toPostDTO(post)})
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	in, image, err := s.readPostInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	post, err := s.posts.Update(r.Context(), userFromContext(r.Context()), pathParam(r, "id"), in, image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Post updated successfully", envelope{"post": toPostDTO(post)})
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), userFromContext(r.Context()), pathParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Post deleted successfully", nil)
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := s.posts.ToggleLike(r.Context(), userFromContext(r.Context()), pathParam(r, "postId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	message := "Post unliked"
	if res.Liked {
		message = "Post liked"
	}
	writeOK(w, http.StatusOK, message, envelope{
		"totalLikes": res.TotalLikes,
		"post":       toPostDTO(res.Post),
	})
}

func (s *Server) toggleFeatured(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.ToggleFeatured(r.Context(), userFromContext(r.Context()), pathParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Post feature status updated", envelope{"post": toPostDTO(post)})
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	page, err := s.posts.List(r.Context(), pageRequest(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Posts fetched successfully", pageDTO(page))
}

func (s *Server) listByCategory(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")
	page, err := s.posts.ListByCategory(r.Context(), category, pageRequest(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := pageDTO(page)
	body["category"] = category
	writeOK(w, http.StatusOK, "", body)
}

func (s *Server) listByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := pathParam(r, "userId")
	page, err := s.posts.ListByAuthor(r.Context(), userFromContext(r.Context()), authorID, pageRequest(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := pageDTO(page)
	body["userId"] = authorID
	writeOK(w, http.StatusOK, "", body)
}

func (s *Server) listMostLiked(w http.ResponseWriter, r *http.Request) {
	list, err := s.posts.ListMostLiked(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Most liked posts fetched successfully", envelope{"posts": toPostDTOs(list)})
}

func (s *Server) listFeatured(w http.ResponseWriter, r *http.Request) {
	list, err := s.posts.ListFeatured(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", envelope{"posts": toPostDTOs(list)})
}

type generateRequest struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

func (s *Server) generateContent(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	content, err := s.posts.GenerateDraft(r.Context(), req.Title, req.Desc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", envelope{"content": content})
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	summary, err := s.posts.Summary(r.Context(), pathParam(r, "postId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", envelope{"summary": summary})
}
