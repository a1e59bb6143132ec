package daemon

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hirepay/internal/api"
	"hirepay/internal/procedure"
)

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	writeJSON(w, http.StatusOK, api.Status{
		Running:    status.Running,
		PID:        status.PID,
		APIBind:    status.APIBind,
		Procedures: status.Procedures,
	})
}

func (s *apiServer) handleCreateProcedure(w http.ResponseWriter, r *http.Request) {
	var req api.CreateProcedureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ConsultantEmail) == "" {
		writeError(w, http.StatusBadRequest, "consultantEmail is required")
		return
	}
	proc, err := s.daemon.service.CreateProcedure(r.Context(), req.ConsultantEmail, req.ConsultantName)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.FromProcedure(proc))
}

func (s *apiServer) handleListProcedures(w http.ResponseWriter, r *http.Request) {
	procs, err := s.daemon.service.ListProcedures(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]api.Procedure, 0, len(procs))
	for _, p := range procs {
		out = append(out, api.FromProcedure(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *apiServer) handleGetProcedure(w http.ResponseWriter, r *http.Request) {
	proc, err := s.daemon.service.GetProcedure(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp := api.FromProcedure(proc)
	if user, err := s.daemon.service.UserByEmail(r.Context(), proc.ConsultantEmail); err == nil {
		resp.Consultant = api.FromUser(user)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleMarkAgreementSigned(w http.ResponseWriter, r *http.Request) {
	s.writeTransition(w, r, s.daemon.service.MarkAgreementSigned)
}

func (s *apiServer) handleMarkPaymentTaxSubmitted(w http.ResponseWriter, r *http.Request) {
	s.writeTransition(w, r, s.daemon.service.MarkPaymentTaxSubmitted)
}

func (s *apiServer) handleReviewPaymentTax(w http.ResponseWriter, r *http.Request) {
	var req api.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	proc, err := s.daemon.service.ApprovePaymentTax(r.Context(), chi.URLParam(r, "uuid"), req.Approved, req.Notes)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromProcedure(proc))
}

func (s *apiServer) handleGenerateTaskOrder(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateTaskOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	uuid := chi.URLParam(r, "uuid")
	result, err := s.daemon.service.GenerateTaskOrder(r.Context(), uuid, req.RequestedBy)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.DocumentResult{
		Document:  api.FromDocument(result.Document, uuid),
		Procedure: api.FromProcedure(result.Procedure),
	})
}

// handleMarkTaskOrderGenerated acknowledges a task order produced outside the
// daemon, without generating one.
func (s *apiServer) handleMarkTaskOrderGenerated(w http.ResponseWriter, r *http.Request) {
	s.writeTransition(w, r, s.daemon.service.MarkTaskOrderGenerated)
}

func (s *apiServer) handleMarkTaskOrderSigned(w http.ResponseWriter, r *http.Request) {
	s.writeTransition(w, r, s.daemon.service.MarkTaskOrderSigned)
}

func (s *apiServer) handleAcceptTaskOrder(w http.ResponseWriter, r *http.Request) {
	var req api.AcceptTaskOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.AcceptedBy) == "" {
		writeError(w, http.StatusBadRequest, "acceptedBy is required")
		return
	}
	proc, err := s.daemon.service.AcceptTaskOrder(r.Context(), chi.URLParam(r, "uuid"), req.AcceptedBy, clientAddr(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromProcedure(proc))
}

func (s *apiServer) handleArchive(w http.ResponseWriter, r *http.Request) {
	s.writeTransition(w, r, s.daemon.service.Archive)
}

func (s *apiServer) writeTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*procedure.Procedure, error)) {
	proc, err := op(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromProcedure(proc))
}

// clientAddr extracts the peer address for acceptance audit records.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
