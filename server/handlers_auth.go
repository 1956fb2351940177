package server

import (
	"net/http"

	"github.com/meridianhq/go-identity-server/auth"
	"github.com/meridianhq/go-identity-server/internal/apperr"
	"github.com/meridianhq/go-identity-server/internal/obs"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	TenantID  string `json:"tenantId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func countOutcome(operation string, err error) {
	if err != nil {
		obs.CountAuthOperation(operation, string(apperr.KindOf(err)))
		return
	}
	obs.CountAuthOperation(operation, "ok")
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.deps.Auth.Register(r.Context(), auth.RegisterParams{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			TenantID:  req.TenantID,
		})
		countOutcome("register", err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.deps.Auth.Login(r.Context(), req.Email, req.Password, req.TenantID)
		countOutcome("login", err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		pair, err := s.deps.Auth.Refresh(r.Context(), req.RefreshToken)
		countOutcome("refresh", err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		err := s.deps.Auth.Logout(r.Context(), req.RefreshToken)
		countOutcome("logout", err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

// MeHandler resolves the authenticated user from the verified claims.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
			return
		}

		user, err := s.deps.Users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		memberships, err := s.deps.Directory.MembershipsForUser(r.Context(), user.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user":          user,
			"organizations": memberships,
		})
	}
}
