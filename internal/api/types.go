// Package api defines the JSON payloads exchanged over the daemon's HTTP
// surface and conversions from the internal models.
package api

import "time"

// Procedure is the wire form of a hiring procedure.
type Procedure struct {
	UUID            string `json:"uuid"`
	Product         string `json:"product"`
	Status          string `json:"status"`
	ConsultantEmail string `json:"consultantEmail"`
	ConsultantName  string `json:"consultantName"`

	Consultant *UserInfo `json:"consultant,omitempty"`

	TaskOrderAcceptedBy   string     `json:"taskOrderAcceptedBy,omitempty"`
	TaskOrderAcceptedAt   *time.Time `json:"taskOrderAcceptedAt,omitempty"`
	TaskOrderAcceptedFrom string     `json:"taskOrderAcceptedFrom,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Document is the wire form of one document version.
type Document struct {
	ID            int64     `json:"id"`
	ProcedureUUID string    `json:"procedureUuid,omitempty"`
	DocumentType  string    `json:"documentType"`
	Status        string    `json:"status"`
	Location      string    `json:"location"`
	ActorEmail    string    `json:"actorEmail"`
	Version       int       `json:"version"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DocumentResult pairs a recorded document with the procedure state after
// the write, so clients observe automatic advances without a second fetch.
type DocumentResult struct {
	Document  Document  `json:"document"`
	Procedure Procedure `json:"procedure"`
}

// UserInfo is the wire form of a directory entry.
type UserInfo struct {
	Email       string   `json:"email"`
	FullName    string   `json:"fullName,omitempty"`
	Designation string   `json:"designation,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// Scope is the wire form of a scope of work.
type Scope struct {
	UUID          string `json:"uuid"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	AssigneeEmail string `json:"assigneeEmail"`
	CreatorEmail  string `json:"creatorEmail"`

	Template     string     `json:"template,omitempty"`
	Objectives   string     `json:"objectives,omitempty"`
	Deliverables string     `json:"deliverables,omitempty"`
	Timeline     string     `json:"timeline,omitempty"`
	Requirements string     `json:"requirements,omitempty"`
	Constraints  string     `json:"constraints,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`

	ReviewNotes   string     `json:"reviewNotes,omitempty"`
	ReviewerEmail string     `json:"reviewerEmail,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScopeStats aggregates scope counts per status.
type ScopeStats struct {
	Total            int64 `json:"total"`
	Draft            int64 `json:"draft"`
	InProgress       int64 `json:"inProgress"`
	UnderReview      int64 `json:"underReview"`
	Approved         int64 `json:"approved"`
	Rejected         int64 `json:"rejected"`
	ChangesRequested int64 `json:"changesRequested"`
	Completed        int64 `json:"completed"`
}

// ScopeDashboard is the back office overview payload.
type ScopeDashboard struct {
	AllScopes       []Scope    `json:"allScopes"`
	PendingReviews  []Scope    `json:"pendingReviews"`
	MyCreatedScopes []Scope    `json:"myCreatedScopes"`
	Stats           ScopeStats `json:"stats"`
}

// CreateProcedureRequest opens a new procedure.
type CreateProcedureRequest struct {
	ConsultantEmail string `json:"consultantEmail"`
	ConsultantName  string `json:"consultantName"`
}

// SendDocumentRequest dispatches a generated document.
type SendDocumentRequest struct {
	DocumentType string `json:"documentType"`
	SentBy       string `json:"sentBy"`
	Notes        string `json:"notes,omitempty"`
}

// UpdateDocumentStatusRequest moves one document version.
type UpdateDocumentStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// ReviewRequest resolves a payment and tax review.
type ReviewRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes,omitempty"`
}

// AcceptTaskOrderRequest records the consultant's acceptance.
type AcceptTaskOrderRequest struct {
	AcceptedBy string `json:"acceptedBy"`
}

// GenerateTaskOrderRequest produces and dispatches a task order.
type GenerateTaskOrderRequest struct {
	RequestedBy string `json:"requestedBy"`
}

// CreateScopeRequest opens a scope of work in DRAFT.
type CreateScopeRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	AssigneeEmail string     `json:"assigneeEmail"`
	CreatorEmail  string     `json:"creatorEmail"`
	Template      string     `json:"template,omitempty"`
	Objectives    string     `json:"objectives,omitempty"`
	Deliverables  string     `json:"deliverables,omitempty"`
	Timeline      string     `json:"timeline,omitempty"`
	Requirements  string     `json:"requirements,omitempty"`
	Constraints   string     `json:"constraints,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
}

// UpdateScopeRequest replaces scope content.
type UpdateScopeRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Objectives   string     `json:"objectives,omitempty"`
	Deliverables string     `json:"deliverables,omitempty"`
	Timeline     string     `json:"timeline,omitempty"`
	Requirements string     `json:"requirements,omitempty"`
	Constraints  string     `json:"constraints,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
}

// ReviewScopeRequest resolves a scope under review.
type ReviewScopeRequest struct {
	Outcome       string `json:"outcome"`
	ReviewerEmail string `json:"reviewerEmail"`
	Notes         string `json:"notes,omitempty"`
}

// UpsertUserRequest creates or updates a directory entry.
type UpsertUserRequest struct {
	Email       string   `json:"email"`
	FullName    string   `json:"fullName,omitempty"`
	Designation string   `json:"designation,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// Status reports daemon health.
type Status struct {
	Running    bool   `json:"running"`
	PID        int    `json:"pid"`
	APIBind    string `json:"apiBind"`
	Procedures int    `json:"procedures"`
}

// Error is the JSON error envelope.
type Error struct {
	Error string `json:"error"`
}
