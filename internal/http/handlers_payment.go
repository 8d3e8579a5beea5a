package http

import (
	"bytes"
	"fmt"
	"net/http"

	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/session"
)

// handleSubmitPayment records the caller's own payment as Pending.
func (s *Server) handleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req chargesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tenant, err := s.property.TenantForUser(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.payments.SubmitPayment(r.Context(), tenant.ID, req.charges())
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, newPaymentView(p))
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	tenantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := req.payment(tenantID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.payments.RecordPayment(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, newPaymentView(saved))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	// the stored payment keeps its tenant
	p, err := req.payment(0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.ID = id
	saved, err := s.payments.UpdatePayment(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, newPaymentView(saved))
}

func (s *Server) handleApprovePayment(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Require(r, true); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.payments.ApprovePayment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, newPaymentView(p))
}

// handleReceipt renders the printable receipt. ?download=1 asks the browser
// to save it instead of displaying it.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	receipt, tenant, err := s.payments.Receipt(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !sess.IsAdmin() && tenant.UserID != sess.UserID {
		writeError(w, r, session.ErrForbidden)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "receipt.html", struct{ Receipt core.Receipt }{receipt}); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to render receipt",
			log.FieldPaymentID, id,
			log.FieldError, err)
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
		return
	}

	disposition := "inline"
	if r.URL.Query().Get("download") == "1" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, receipt.Filename))
	_, _ = buf.WriteTo(w)
}
