package procedure

// DocClass groups document types that share a status workflow.
type DocClass string

const (
	ClassAgreement    DocClass = "agreement"
	ClassForm         DocClass = "form"
	ClassInvoice      DocClass = "invoice"
	ClassDeliverable  DocClass = "deliverable"
	ClassUnrestricted DocClass = "unrestricted"
)

// TransitionPolicy describes the legal status moves for one document class.
// Unrestricted policies accept every transition; they exist so callers can
// observe that the escape hatch was taken rather than silently falling
// through a switch.
type TransitionPolicy struct {
	Class        DocClass
	Unrestricted bool
	Allowed      map[DocumentStatus][]DocumentStatus
}

var agreementPolicy = TransitionPolicy{
	Class: ClassAgreement,
	Allowed: map[DocumentStatus][]DocumentStatus{
		DocStatusDraft:  {DocStatusSent},
		DocStatusSent:   {DocStatusSigned},
		DocStatusSigned: {DocStatusApproved, DocStatusRejected},
	},
}

var formPolicy = TransitionPolicy{
	Class: ClassForm,
	Allowed: map[DocumentStatus][]DocumentStatus{
		DocStatusDraft:     {DocStatusSubmitted},
		DocStatusSubmitted: {DocStatusApproved, DocStatusRejected},
	},
}

var invoicePolicy = TransitionPolicy{
	Class: ClassInvoice,
	Allowed: map[DocumentStatus][]DocumentStatus{
		DocStatusDraft:       {DocStatusSubmitted},
		DocStatusSubmitted:   {DocStatusUnderReview},
		DocStatusUnderReview: {DocStatusApproved, DocStatusRejected},
		DocStatusApproved:    {DocStatusPaid, DocStatusOverdue},
	},
}

var deliverablePolicy = TransitionPolicy{
	Class: ClassDeliverable,
	Allowed: map[DocumentStatus][]DocumentStatus{
		DocStatusDraft:       {DocStatusSubmitted},
		DocStatusSubmitted:   {DocStatusUnderReview},
		DocStatusUnderReview: {DocStatusApproved, DocStatusRejected},
		DocStatusApproved:    {DocStatusCompleted},
	},
}

var unrestrictedPolicy = TransitionPolicy{
	Class:        ClassUnrestricted,
	Unrestricted: true,
}

var docClasses = map[DocType]DocClass{
	DocUmbrellaAgreement:     ClassAgreement,
	DocAgreementModification: ClassAgreement,
	DocTaskOrder:             ClassAgreement,
	DocTaskOrderModification: ClassAgreement,
	DocTaxFormW9:             ClassForm,
	DocTaxFormW8BEN:          ClassForm,
	DocPaymentAuthForm:       ClassForm,
	DocInvoice:               ClassInvoice,
	DocDeliverablesProof:     ClassDeliverable,
}

var policies = map[DocClass]TransitionPolicy{
	ClassAgreement:   agreementPolicy,
	ClassForm:        formPolicy,
	ClassInvoice:     invoicePolicy,
	ClassDeliverable: deliverablePolicy,
}

// ClassOf returns the workflow class for a document type. Unknown types fall
// into the unrestricted class.
func ClassOf(docType DocType) DocClass {
	if class, ok := docClasses[docType]; ok {
		return class
	}
	return ClassUnrestricted
}

// PolicyFor returns the transition policy governing a document type.
func PolicyFor(docType DocType) TransitionPolicy {
	if policy, ok := policies[ClassOf(docType)]; ok {
		return policy
	}
	return unrestrictedPolicy
}

// CanTransition reports whether a document of the given type may move from
// one status to another.
func CanTransition(docType DocType, from, to DocumentStatus) bool {
	policy := PolicyFor(docType)
	if policy.Unrestricted {
		return true
	}
	for _, allowed := range policy.Allowed[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the statuses a document of the given type may move to
// from its current status. Nil means the current status is terminal for that
// class; unrestricted types return nil as well and accept anything.
func AllowedNext(docType DocType, from DocumentStatus) []DocumentStatus {
	policy := PolicyFor(docType)
	if policy.Unrestricted {
		return nil
	}
	next := policy.Allowed[from]
	cp := make([]DocumentStatus, len(next))
	copy(cp, next)
	return cp
}

// InitialReceivedStatus returns the status a freshly received upload of the
// given type starts in: agreements come back signed, everything that is
// reviewed rather than countersigned starts submitted.
func InitialReceivedStatus(docType DocType) DocumentStatus {
	switch ClassOf(docType) {
	case ClassForm, ClassInvoice, ClassDeliverable:
		return DocStatusSubmitted
	default:
		return DocStatusSigned
	}
}

// advanceRule describes one default procedure advance triggered by recording
// a document: when a document of a type in the rule arrives while the
// procedure sits in one of the gate statuses, the procedure moves to the
// target status. Recording while already past the gate changes nothing.
type advanceRule struct {
	gates  []Status
	target Status
}

var advanceOnRecord = map[DocType]advanceRule{
	DocUmbrellaAgreement: {
		gates:  []Status{StatusDraft},
		target: StatusAgreementSent,
	},
	DocTaxFormW9: {
		gates:  []Status{StatusAgreementSigned, StatusAgreementSubmitted},
		target: StatusPaymentTaxSubmitted,
	},
	DocTaxFormW8BEN: {
		gates:  []Status{StatusAgreementSigned, StatusAgreementSubmitted},
		target: StatusPaymentTaxSubmitted,
	},
	DocPaymentAuthForm: {
		gates:  []Status{StatusAgreementSigned, StatusAgreementSubmitted},
		target: StatusPaymentTaxSubmitted,
	},
	DocTaskOrder: {
		gates:  []Status{StatusPaymentTaxApproved},
		target: StatusTaskOrderGenerated,
	},
}

// AdvanceOnRecord returns the procedure status that recording a document of
// the given type implies, given the current status. The second return is
// false when no advance applies, which is not an error.
func AdvanceOnRecord(docType DocType, current Status) (Status, bool) {
	rule, ok := advanceOnRecord[docType]
	if !ok {
		return current, false
	}
	for _, gate := range rule.gates {
		if current == gate {
			return rule.target, true
		}
	}
	return current, false
}
