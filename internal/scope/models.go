// Package scope manages scopes of work: structured assignments drafted by
// back office, worked by front office, and resolved through a review cycle.
package scope

import (
	"strings"
	"time"
)

// Status is the review lifecycle of a scope of work.
type Status string

const (
	StatusDraft            Status = "DRAFT"
	StatusInProgress       Status = "IN_PROGRESS"
	StatusUnderReview      Status = "UNDER_REVIEW"
	StatusApproved         Status = "APPROVED"
	StatusRejected         Status = "REJECTED"
	StatusChangesRequested Status = "CHANGES_REQUESTED"
	StatusCompleted        Status = "COMPLETED"
)

var allStatuses = []Status{
	StatusDraft,
	StatusInProgress,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusChangesRequested,
	StatusCompleted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus converts a string into a known scope Status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// IsTerminal reports whether no further transitions leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// transitions is the scope state machine. CHANGES_REQUESTED loops back to
// IN_PROGRESS so the assignee can rework and resubmit.
var transitions = map[Status][]Status{
	StatusDraft:            {StatusInProgress, StatusUnderReview},
	StatusInProgress:       {StatusUnderReview},
	StatusUnderReview:      {StatusApproved, StatusRejected, StatusChangesRequested},
	StatusChangesRequested: {StatusInProgress, StatusUnderReview},
	StatusApproved:         {StatusCompleted},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// editableStatuses are the states in which scope content may be updated.
var editableStatuses = map[Status]struct{}{
	StatusDraft:            {},
	StatusInProgress:       {},
	StatusChangesRequested: {},
}

// Editable reports whether scope content may change in this status.
func (s Status) Editable() bool {
	_, ok := editableStatuses[s]
	return ok
}

// Scope is one scope-of-work record.
type Scope struct {
	ID            int64
	UUID          string
	Title         string
	Description   string
	AssigneeEmail string
	CreatorEmail  string
	Status        Status

	Template     string
	Objectives   string
	Deliverables string
	Timeline     string
	Requirements string
	Constraints  string
	DueDate      *time.Time

	ReviewNotes   string
	ReviewerEmail string
	ReviewedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats aggregates scope counts by status for the back office dashboard.
type Stats struct {
	Total            int64
	Draft            int64
	InProgress       int64
	UnderReview      int64
	Approved         int64
	Rejected         int64
	ChangesRequested int64
	Completed        int64
}
