package http

import (
	"errors"
	"net/http"

	"rentledger/internal/session"
	"rentledger/internal/store"
)

func (s *Server) handleMyDashboard(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.ledger.DashboardForUser(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, newDashboardView(d))
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	tenants, err := s.property.ListTenants(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]tenantView, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, newTenantView(t))
	}
	OK(w, out)
}

func (s *Server) handleOnboardTenant(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	var req tenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tenant, coTenants, err := req.tenant()
	if err != nil {
		writeError(w, r, err)
		return
	}
	tenant, coTenants, err = s.property.OnboardTenant(r.Context(), tenant, coTenants)
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, map[string]any{
		"tenant":     newTenantView(tenant),
		"co_tenants": newCoTenantViews(coTenants),
	})
}

func (s *Server) handleTenantDashboard(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.ledger.TenantDashboard(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, newDashboardView(d))
}

// handleAddCoTenant lets a tenant register a co-tenant on their own record.
// Admins may add to any tenant.
func (s *Server) handleAddCoTenant(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tenantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.requireOwner(r, sess, tenantID); err != nil {
		writeError(w, r, err)
		return
	}
	var req coTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.property.AddCoTenant(r.Context(), tenantID, req.coTenant())
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, newCoTenantView(c))
}

func (s *Server) handleVerifyCoTenant(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.property.VerifyCoTenant(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, newCoTenantView(c))
}

// requireOwner passes admins and the user the tenant record belongs to.
func (s *Server) requireOwner(r *http.Request, sess session.Session, tenantID int64) error {
	if sess.IsAdmin() {
		return nil
	}
	t, err := s.property.TenantForUser(r.Context(), sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return session.ErrForbidden
	}
	if err != nil {
		return err
	}
	if t.ID != tenantID {
		return session.ErrForbidden
	}
	return nil
}
