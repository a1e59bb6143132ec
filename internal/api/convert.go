package api

import (
	"hirepay/internal/procedure"
	"hirepay/internal/scope"
)

// FromProcedure converts a ledger procedure to its wire form.
func FromProcedure(p *procedure.Procedure) Procedure {
	return Procedure{
		UUID:                  p.UUID,
		Product:               string(p.Product),
		Status:                string(p.Status),
		ConsultantEmail:       p.ConsultantEmail,
		ConsultantName:        p.ConsultantName,
		TaskOrderAcceptedBy:   p.TaskOrderAcceptedBy,
		TaskOrderAcceptedAt:   p.TaskOrderAcceptedAt,
		TaskOrderAcceptedFrom: p.TaskOrderAcceptedFrom,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

// FromDocument converts a ledger document to its wire form. procedureUUID may
// be empty when the caller's route already names the procedure.
func FromDocument(d *procedure.Document, procedureUUID string) Document {
	return Document{
		ID:            d.ID,
		ProcedureUUID: procedureUUID,
		DocumentType:  string(d.DocType),
		Status:        string(d.Status),
		Location:      d.Location,
		ActorEmail:    d.ActorEmail,
		Version:       d.Version,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
	}
}

// FromDocuments converts a document list, newest first order preserved.
func FromDocuments(docs []*procedure.Document, procedureUUID string) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromDocument(d, procedureUUID))
	}
	return out
}

// FromUser converts a directory entry to its wire form.
func FromUser(u *procedure.User) *UserInfo {
	if u == nil {
		return nil
	}
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return &UserInfo{
		Email:       u.Email,
		FullName:    u.FullName,
		Designation: u.Designation,
		Roles:       roles,
	}
}

// FromScope converts a scope of work to its wire form.
func FromScope(s *scope.Scope) Scope {
	return Scope{
		UUID:          s.UUID,
		Title:         s.Title,
		Description:   s.Description,
		Status:        string(s.Status),
		AssigneeEmail: s.AssigneeEmail,
		CreatorEmail:  s.CreatorEmail,
		Template:      s.Template,
		Objectives:    s.Objectives,
		Deliverables:  s.Deliverables,
		Timeline:      s.Timeline,
		Requirements:  s.Requirements,
		Constraints:   s.Constraints,
		DueDate:       s.DueDate,
		ReviewNotes:   s.ReviewNotes,
		ReviewerEmail: s.ReviewerEmail,
		ReviewedAt:    s.ReviewedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// FromScopes converts a scope list.
func FromScopes(scopes []*scope.Scope) []Scope {
	out := make([]Scope, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, FromScope(s))
	}
	return out
}

// FromScopeStats converts scope aggregates.
func FromScopeStats(s *scope.Stats) ScopeStats {
	return ScopeStats{
		Total:            s.Total,
		Draft:            s.Draft,
		InProgress:       s.InProgress,
		UnderReview:      s.UnderReview,
		Approved:         s.Approved,
		Rejected:         s.Rejected,
		ChangesRequested: s.ChangesRequested,
		Completed:        s.Completed,
	}
}
