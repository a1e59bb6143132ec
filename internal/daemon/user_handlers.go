package daemon

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hirepay/internal/api"
	"hirepay/internal/procedure"
)

func (s *apiServer) handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	var req api.UpsertUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	roles := make([]procedure.Role, 0, len(req.Roles))
	for _, raw := range req.Roles {
		roles = append(roles, procedure.Role(strings.ToUpper(strings.TrimSpace(raw))))
	}
	user, err := s.daemon.service.UpsertUser(r.Context(), procedure.User{
		Email:       req.Email,
		FullName:    req.FullName,
		Designation: req.Designation,
		Roles:       roles,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromUser(user))
}

func (s *apiServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.daemon.service.UserByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromUser(user))
}
