package rest

import (
	"net/http"

	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sendSession sets the token cookie and echoes the token in the body.
func (s *Server) sendSession(w http.ResponseWriter, status int, message string, sess *services.Session) {
	s.setTokenCookie(w, sess.Token, sess.ExpiresAt)
	writeOK(w, status, message, envelope{
		"user":  toUserDTO(sess.User),
		"token": sess.Token,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.users.Register(r.Context(), services.RegisterInput(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", sess.User.ID)
	s.sendSession(w, http.StatusCreated, "User registered successfully", sess)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.sendSession(w, http.StatusOK, "Logged in successfully", sess)
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	s.clearTokenCookie(w)
	writeOK(w, http.StatusOK, "User logged out successfully", nil)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Profile(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", envelope{"user": toUserDTO(u)})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.users.UpdateProfile(r.Context(), userFromContext(r.Context()).ID, services.ProfileUpdate(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.sendSession(w, http.StatusOK, "User profile updated successfully", sess)
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteProfile(r.Context(), userFromContext(r.Context()).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.clearTokenCookie(w)
	writeOK(w, http.StatusOK, "User profile deleted successfully", nil)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", envelope{"users": toUserDTOs(list)})
}
