package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/meridianhq/go-identity-server/directory"
	"github.com/meridianhq/go-identity-server/internal/apperr"
)

type tenantRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

type organizationRequest struct {
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type memberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (s *Server) CreateTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tenantRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		if req.Name == "" {
			s.writeError(w, apperr.Validation("tenant name is required"))
			return
		}

		tenant := &directory.Tenant{
			ID:        uuid.NewString(),
			Name:      req.Name,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		}
		if req.IsActive != nil {
			tenant.IsActive = *req.IsActive
		}
		if err := s.deps.Directory.CreateTenant(r.Context(), tenant); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tenant)
	}
}

func (s *Server) ListTenantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenants, err := s.deps.Directory.ListTenants(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tenants)
	}
}

func (s *Server) GetTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := s.deps.Directory.GetTenant(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tenant)
	}
}

func (s *Server) UpdateTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tenantRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		tenant, err := s.deps.Directory.GetTenant(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		if req.Name != "" {
			tenant.Name = req.Name
		}
		if req.IsActive != nil {
			tenant.IsActive = *req.IsActive
		}
		if err := s.deps.Directory.UpdateTenant(r.Context(), tenant); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tenant)
	}
}

func (s *Server) DeleteTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.deps.Directory.DeleteTenant(r.Context(), r.PathValue("id")); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CreateOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req organizationRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		if req.Name == "" {
			s.writeError(w, apperr.Validation("organization name is required"))
			return
		}

		tenantID := req.TenantID
		if tenantID == "" {
			// Default to the caller's tenant.
			if claims := claimsFromContext(r.Context()); claims != nil {
				tenantID = claims.TenantID
			}
		}

		org := &directory.Organization{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			Name:        req.Name,
			Description: req.Description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.deps.Directory.CreateOrganization(r.Context(), org); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, org)
	}
}

func (s *Server) ListOrganizationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.URL.Query().Get("tenant_id")
		if tenantID == "" {
			if claims := claimsFromContext(r.Context()); claims != nil {
				tenantID = claims.TenantID
			}
		}
		orgs, err := s.deps.Directory.ListOrganizations(r.Context(), tenantID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orgs)
	}
}

func (s *Server) GetOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, err := s.deps.Directory.GetOrganization(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, org)
	}
}

func (s *Server) UpdateOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req organizationRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		org, err := s.deps.Directory.GetOrganization(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		if req.Name != "" {
			org.Name = req.Name
		}
		if req.Description != "" {
			org.Description = req.Description
		}
		if err := s.deps.Directory.UpdateOrganization(r.Context(), org); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, org)
	}
}

func (s *Server) DeleteOrganizationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.deps.Directory.DeleteOrganization(r.Context(), r.PathValue("id")); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) AddMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memberRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		if req.UserID == "" {
			s.writeError(w, apperr.Validation("userId is required"))
			return
		}
		role := req.Role
		if role == "" {
			role = "USER"
		}

		organizationID := r.PathValue("id")
		if _, err := s.deps.Directory.GetOrganization(r.Context(), organizationID); err != nil {
			s.writeError(w, err)
			return
		}
		if _, err := s.deps.Users.GetByID(r.Context(), req.UserID); err != nil {
			s.writeError(w, err)
			return
		}
		if err := s.deps.Directory.AddMembership(r.Context(), organizationID, req.UserID, role); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"organizationId": organizationID,
			"userId":         req.UserID,
			"role":           role,
		})
	}
}
