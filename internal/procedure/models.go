package procedure

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a hiring procedure.
type Status string

const (
	StatusDraft               Status = "DRAFT"
	StatusAgreementSent       Status = "AGREEMENT_SENT"
	StatusAgreementSigned     Status = "AGREEMENT_SIGNED"
	StatusAgreementSubmitted  Status = "AGREEMENT_SUBMITTED"
	StatusPaymentTaxSubmitted Status = "PAYMENT_TAX_SUBMITTED"
	StatusPaymentTaxApproved  Status = "PAYMENT_TAX_APPROVED"
	StatusTaskOrderGenerated  Status = "TASK_ORDER_GENERATED"
	StatusTaskOrderSigned     Status = "TASK_ORDER_SIGNED"
	StatusTaskOrderSubmitted  Status = "TASK_ORDER_SUBMITTED"
	StatusCompleted           Status = "COMPLETED"
	StatusRejected            Status = "REJECTED"
)

var allStatuses = []Status{
	StatusDraft,
	StatusAgreementSent,
	StatusAgreementSigned,
	StatusAgreementSubmitted,
	StatusPaymentTaxSubmitted,
	StatusPaymentTaxApproved,
	StatusTaskOrderGenerated,
	StatusTaskOrderSigned,
	StatusTaskOrderSubmitted,
	StatusCompleted,
	StatusRejected,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known procedure statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known procedure Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a procedure status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// DocumentStatus represents the state of an individual document version.
type DocumentStatus string

const (
	DocStatusDraft            DocumentStatus = "DRAFT"
	DocStatusSent             DocumentStatus = "SENT"
	DocStatusPendingSignature DocumentStatus = "PENDING_SIGNATURE"
	DocStatusSigned           DocumentStatus = "SIGNED"
	DocStatusSubmitted        DocumentStatus = "SUBMITTED"
	DocStatusUnderReview      DocumentStatus = "UNDER_REVIEW"
	DocStatusApproved         DocumentStatus = "APPROVED"
	DocStatusRejected         DocumentStatus = "REJECTED"
	DocStatusPaid             DocumentStatus = "PAID"
	DocStatusOverdue          DocumentStatus = "OVERDUE"
	DocStatusCompleted        DocumentStatus = "COMPLETED"
	DocStatusArchived         DocumentStatus = "ARCHIVED"
	DocStatusExpired          DocumentStatus = "EXPIRED"
)

var allDocumentStatuses = []DocumentStatus{
	DocStatusDraft,
	DocStatusSent,
	DocStatusPendingSignature,
	DocStatusSigned,
	DocStatusSubmitted,
	DocStatusUnderReview,
	DocStatusApproved,
	DocStatusRejected,
	DocStatusPaid,
	DocStatusOverdue,
	DocStatusCompleted,
	DocStatusArchived,
	DocStatusExpired,
}

var documentStatusSet = func() map[DocumentStatus]struct{} {
	set := make(map[DocumentStatus]struct{}, len(allDocumentStatuses))
	for _, status := range allDocumentStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseDocumentStatus converts a string into a known DocumentStatus.
func ParseDocumentStatus(value string) (DocumentStatus, bool) {
	normalized := DocumentStatus(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := documentStatusSet[normalized]
	return normalized, ok
}

// DocType identifies one of the fixed document slots a procedure can contain.
type DocType string

const (
	DocUmbrellaAgreement     DocType = "UMBRELLA_AGREEMENT"
	DocAgreementModification DocType = "AGREEMENT_MODIFICATION"
	DocTaxFormW9             DocType = "TAX_FORM_W9"
	DocTaxFormW8BEN          DocType = "TAX_FORM_W8BEN"
	DocPaymentAuthForm       DocType = "PAYMENT_AUTH_FORM"
	DocTaskOrder             DocType = "TASK_ORDER"
	DocTaskOrderModification DocType = "TASK_ORDER_MODIFICATION"
	DocInvoice               DocType = "INVOICE"
	DocDeliverablesProof     DocType = "DELIVERABLES_PROOF"
)

var allDocTypes = []DocType{
	DocUmbrellaAgreement,
	DocAgreementModification,
	DocTaxFormW9,
	DocTaxFormW8BEN,
	DocPaymentAuthForm,
	DocTaskOrder,
	DocTaskOrderModification,
	DocInvoice,
	DocDeliverablesProof,
}

var docTypeSet = func() map[DocType]struct{} {
	set := make(map[DocType]struct{}, len(allDocTypes))
	for _, docType := range allDocTypes {
		set[docType] = struct{}{}
	}
	return set
}()

// AllDocTypes returns the ordered list of known document types.
func AllDocTypes() []DocType {
	cp := make([]DocType, len(allDocTypes))
	copy(cp, allDocTypes)
	return cp
}

// ParseDocType converts a string into a known DocType.
func ParseDocType(value string) (DocType, bool) {
	normalized := DocType(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := docTypeSet[normalized]
	return normalized, ok
}

// ProductType distinguishes the paperwork product a procedure belongs to.
type ProductType string

const (
	ProductHiring  ProductType = "HIRING"
	ProductPayment ProductType = "PAYMENT"
)

// Procedure is one end-to-end hiring paperwork case.
type Procedure struct {
	ID              int64
	UUID            string
	Product         ProductType
	Status          Status
	ConsultantEmail string
	ConsultantName  string

	// Task order acceptance audit triple, written once when the order is
	// accepted from TASK_ORDER_GENERATED.
	TaskOrderAcceptedBy   string
	TaskOrderAcceptedAt   *time.Time
	TaskOrderAcceptedFrom string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is one versioned artifact attached to a procedure.
type Document struct {
	ID          int64
	ProcedureID int64
	DocType     DocType
	Location    string
	ActorEmail  string
	Status      DocumentStatus
	Version     int
	Notes       string
	CreatedAt   time.Time
}

// Role classifies directory users.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleBackOffice  Role = "BACK_OFFICE"
	RoleFrontOffice Role = "FRONT_OFFICE"
)

// User is a directory entry resolved by email. The directory only enriches
// responses; it never gates workflow transitions.
type User struct {
	ID          int64
	Email       string
	Roles       []Role
	Designation string
	FullName    string
	CreatedAt   time.Time
}
