package httpserver

import (
	"net"
	"net/http"
	"time"

	accounthttp "lyceum/contexts/identity-access/account-service/transport/http"
)

func (s *Server) registerAccountRoutes() {
	s.mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)

	s.mux.HandleFunc("GET /api/v1/users/me", s.handleMe)
	s.mux.HandleFunc("GET /api/v1/users/{user_id}", s.handleGetProfile)
	s.mux.HandleFunc("PATCH /api/v1/users/{user_id}", s.handleUpdateProfile)
	s.mux.HandleFunc("PUT /api/v1/users/{user_id}/password", s.handleChangePassword)
	s.mux.HandleFunc("DELETE /api/v1/users/{user_id}", s.handleDeleteUser)

	s.mux.HandleFunc("GET /api/v1/admin/users", s.handleListUsers)
	s.mux.HandleFunc("PATCH /api/v1/admin/users/{user_id}/role", s.handleUpdateRole)
}

// handleRegister godoc
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body accounthttp.RegisterRequest true "new account"
// @Success 201 {object} accounthttp.UserDTO
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /api/v1/auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.RegisterRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Accounts.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleLogin godoc
// @Summary Log in and receive a session
// @Description Sets the session cookie and returns the same token for bearer use.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body accounthttp.LoginRequest true "credentials"
// @Success 200 {object} accounthttp.LoginResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /api/v1/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.LoginRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Accounts.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	expires, _ := time.Parse(time.RFC3339, resp.ExpiresAt)
	http.SetCookie(w, s.sessionCookie(resp.Token, expires))
	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary Revoke the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} errorResponse
// @Router /api/v1/auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := s.sessions.TokenFromRequest(r)
	if err := s.modules.Accounts.Handler.LogoutHandler(r.Context(), principalOf(r), token); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	http.SetCookie(w, s.sessionCookie("", time.Unix(0, 0)))
	w.WriteHeader(http.StatusNoContent)
}

// handleMe godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} accounthttp.UserDTO
// @Failure 401 {object} errorResponse
// @Router /api/v1/users/me [get]
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Accounts.Handler.MeHandler(r.Context(), principalOf(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetProfile godoc
// @Summary Public profile
// @Tags users
// @Produce json
// @Param user_id path string true "user"
// @Success 200 {object} accounthttp.PublicProfileDTO
// @Failure 404 {object} errorResponse
// @Router /api/v1/users/{user_id} [get]
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Accounts.Handler.ProfileHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateProfile godoc
// @Summary Update profile (owner or admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "user"
// @Param body body accounthttp.UpdateProfileRequest true "fields to change"
// @Success 200 {object} accounthttp.UserDTO
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/users/{user_id} [patch]
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.UpdateProfileRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Accounts.Handler.UpdateProfileHandler(r.Context(), principalOf(r), r.PathValue("user_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChangePassword godoc
// @Summary Change password (owner or admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "user"
// @Param body body accounthttp.ChangePasswordRequest true "passwords"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/users/{user_id}/password [put]
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.ChangePasswordRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.modules.Accounts.Handler.ChangePasswordHandler(r.Context(), principalOf(r), r.PathValue("user_id"), req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteUser godoc
// @Summary Delete account (owner or admin)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "user"
// @Success 204
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/users/{user_id} [delete]
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.modules.Accounts.Handler.DeleteUserHandler(r.Context(), principalOf(r), r.PathValue("user_id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListUsers godoc
// @Summary List users (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "filter by role" Enums(user, admin, banned)
// @Param page query int false "page number, from 1"
// @Param limit query int false "page size"
// @Success 200 {object} accounthttp.ListUsersResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /api/v1/admin/users [get]
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Accounts.Handler.ListUsersHandler(r.Context(), principalOf(r), accounthttp.ListUsersRequest{
		Role:  r.URL.Query().Get("role"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateRole godoc
// @Summary Change a user's role (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "target user"
// @Param body body accounthttp.UpdateRoleRequest true "new role"
// @Success 200 {object} accounthttp.UserDTO
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/admin/users/{user_id}/role [patch]
func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.UpdateRoleRequest
	if !readJSON(w, r, &req) {
		return
	}
	resp, err := s.modules.Accounts.Handler.UpdateRoleHandler(
		r.Context(),
		principalOf(r),
		r.PathValue("user_id"),
		clientIP(r),
		req,
	)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) sessionCookie(value string, expires time.Time) *http.Cookie {
	name := s.sessions.CookieName
	if name == "" {
		name = "session_token"
	}
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

// clientIP reads RemoteAddr, which RealIP has already rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
