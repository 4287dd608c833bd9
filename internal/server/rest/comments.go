package rest

import (
	"net/http"
)

type commentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.comments.Create(r.Context(), userFromContext(r.Context()), req.PostID, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusCreated, "Comment added successfully", envelope{"comment": toCommentDTO(c)})
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	list, err := s.comments.ListForPost(r.Context(), pathParam(r, "postId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", envelope{"count": len(list), "comments": toCommentDTOs(list)})
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.comments.Delete(r.Context(), userFromContext(r.Context()), pathParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Comment deleted successfully", nil)
}
