package daemon

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hirepay/internal/api"
	"hirepay/internal/scope"
)

func (s *apiServer) handleCreateScope(w http.ResponseWriter, r *http.Request) {
	var req api.CreateScopeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sc, err := s.daemon.scopes.Create(r.Context(), scope.CreateRequest{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeEmail: req.AssigneeEmail,
		CreatorEmail:  req.CreatorEmail,
		Template:      req.Template,
		Objectives:    req.Objectives,
		Deliverables:  req.Deliverables,
		Timeline:      req.Timeline,
		Requirements:  req.Requirements,
		Constraints:   req.Constraints,
		DueDate:       req.DueDate,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.FromScope(sc))
}

// handleListScopes lists every scope, or only those for an assignee or
// creator when the matching query parameter is present.
func (s *apiServer) handleListScopes(w http.ResponseWriter, r *http.Request) {
	var (
		scopes []*scope.Scope
		err    error
	)
	switch {
	case r.URL.Query().Get("assignee") != "":
		scopes, err = s.daemon.scopes.ListByAssignee(r.Context(), r.URL.Query().Get("assignee"))
	case r.URL.Query().Get("creator") != "":
		scopes, err = s.daemon.scopes.ListByCreator(r.Context(), r.URL.Query().Get("creator"))
	default:
		scopes, err = s.daemon.scopes.List(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromScopes(scopes))
}

func (s *apiServer) handleGetScope(w http.ResponseWriter, r *http.Request) {
	sc, err := s.daemon.scopes.GetByUUID(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromScope(sc))
}

func (s *apiServer) handleUpdateScope(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateScopeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sc, err := s.daemon.scopes.Update(r.Context(), chi.URLParam(r, "uuid"), scope.UpdateRequest{
		Title:        req.Title,
		Description:  req.Description,
		Objectives:   req.Objectives,
		Deliverables: req.Deliverables,
		Timeline:     req.Timeline,
		Requirements: req.Requirements,
		Constraints:  req.Constraints,
		DueDate:      req.DueDate,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromScope(sc))
}

func (s *apiServer) handleSubmitScope(w http.ResponseWriter, r *http.Request) {
	sc, err := s.daemon.scopes.Transition(r.Context(), chi.URLParam(r, "uuid"), scope.StatusUnderReview)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromScope(sc))
}

func (s *apiServer) handleReviewScope(w http.ResponseWriter, r *http.Request) {
	var req api.ReviewScopeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	outcome, ok := scope.ParseStatus(req.Outcome)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown review outcome")
		return
	}
	if strings.TrimSpace(req.ReviewerEmail) == "" {
		writeError(w, http.StatusBadRequest, "reviewerEmail is required")
		return
	}
	sc, err := s.daemon.scopes.Review(r.Context(), chi.URLParam(r, "uuid"), outcome, req.ReviewerEmail, req.Notes)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromScope(sc))
}

func (s *apiServer) handleCompleteScope(w http.ResponseWriter, r *http.Request) {
	sc, err := s.daemon.scopes.Transition(r.Context(), chi.URLParam(r, "uuid"), scope.StatusCompleted)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromScope(sc))
}

func (s *apiServer) handleScopesPendingReview(w http.ResponseWriter, r *http.Request) {
	scopes, err := s.daemon.scopes.ListNeedingReview(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromScopes(scopes))
}

// handleScopeDashboard assembles the back office overview. The creator query
// parameter scopes the "my created" section.
func (s *apiServer) handleScopeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := s.daemon.scopes.List(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	pending, err := s.daemon.scopes.ListNeedingReview(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	stats, err := s.daemon.scopes.StatsByStatus(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	dashboard := api.ScopeDashboard{
		AllScopes:      api.FromScopes(all),
		PendingReviews: api.FromScopes(pending),
		Stats:          api.FromScopeStats(stats),
	}
	if creator := r.URL.Query().Get("creator"); creator != "" {
		mine, err := s.daemon.scopes.ListByCreator(ctx, creator)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		dashboard.MyCreatedScopes = api.FromScopes(mine)
	}
	writeJSON(w, http.StatusOK, dashboard)
}
