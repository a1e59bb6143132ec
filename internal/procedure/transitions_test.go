package procedure

import "testing"

func TestClassOf(t *testing.T) {
	cases := []struct {
		docType DocType
		want    DocClass
	}{
		{DocUmbrellaAgreement, ClassAgreement},
		{DocAgreementModification, ClassAgreement},
		{DocTaskOrder, ClassAgreement},
		{DocTaskOrderModification, ClassAgreement},
		{DocTaxFormW9, ClassForm},
		{DocTaxFormW8BEN, ClassForm},
		{DocPaymentAuthForm, ClassForm},
		{DocInvoice, ClassInvoice},
		{DocDeliverablesProof, ClassDeliverable},
		{DocType("MYSTERY_ATTACHMENT"), ClassUnrestricted},
	}
	for _, tc := range cases {
		if got := ClassOf(tc.docType); got != tc.want {
			t.Errorf("ClassOf(%s) = %s, want %s", tc.docType, got, tc.want)
		}
	}
}

func TestAgreementTransitions(t *testing.T) {
	cases := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{DocStatusDraft, DocStatusSent, true},
		{DocStatusDraft, DocStatusSigned, false},
		{DocStatusSent, DocStatusSigned, true},
		{DocStatusSent, DocStatusApproved, false},
		{DocStatusSigned, DocStatusApproved, true},
		{DocStatusSigned, DocStatusRejected, true},
		{DocStatusSigned, DocStatusSent, false},
		{DocStatusApproved, DocStatusRejected, false},
	}
	for _, tc := range cases {
		if got := CanTransition(DocUmbrellaAgreement, tc.from, tc.to); got != tc.want {
			t.Errorf("agreement %s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestFormTransitions(t *testing.T) {
	cases := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{DocStatusDraft, DocStatusSubmitted, true},
		{DocStatusDraft, DocStatusSent, false},
		{DocStatusSubmitted, DocStatusApproved, true},
		{DocStatusSubmitted, DocStatusRejected, true},
		{DocStatusSubmitted, DocStatusUnderReview, false},
	}
	for _, tc := range cases {
		if got := CanTransition(DocTaxFormW9, tc.from, tc.to); got != tc.want {
			t.Errorf("form %s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestInvoiceTransitions(t *testing.T) {
	cases := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{DocStatusDraft, DocStatusSubmitted, true},
		{DocStatusSubmitted, DocStatusUnderReview, true},
		{DocStatusSubmitted, DocStatusApproved, false},
		{DocStatusUnderReview, DocStatusApproved, true},
		{DocStatusUnderReview, DocStatusRejected, true},
		{DocStatusApproved, DocStatusPaid, true},
		{DocStatusApproved, DocStatusOverdue, true},
		{DocStatusApproved, DocStatusSigned, false},
		{DocStatusApproved, DocStatusCompleted, false},
	}
	for _, tc := range cases {
		if got := CanTransition(DocInvoice, tc.from, tc.to); got != tc.want {
			t.Errorf("invoice %s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestDeliverableTransitions(t *testing.T) {
	cases := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{DocStatusDraft, DocStatusSubmitted, true},
		{DocStatusSubmitted, DocStatusUnderReview, true},
		{DocStatusUnderReview, DocStatusApproved, true},
		{DocStatusApproved, DocStatusCompleted, true},
		{DocStatusApproved, DocStatusPaid, false},
	}
	for _, tc := range cases {
		if got := CanTransition(DocDeliverablesProof, tc.from, tc.to); got != tc.want {
			t.Errorf("deliverable %s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestUnknownTypeUsesUnrestrictedPolicy(t *testing.T) {
	unknown := DocType("MYSTERY_ATTACHMENT")

	policy := PolicyFor(unknown)
	if !policy.Unrestricted {
		t.Fatal("expected unrestricted policy for unknown type")
	}
	if policy.Class != ClassUnrestricted {
		t.Fatalf("expected unrestricted class, got %s", policy.Class)
	}
	if !CanTransition(unknown, DocStatusPaid, DocStatusDraft) {
		t.Fatal("unrestricted policy should allow any transition")
	}
}

func TestAllowedNext(t *testing.T) {
	next := AllowedNext(DocInvoice, DocStatusApproved)
	if len(next) != 2 || next[0] != DocStatusPaid || next[1] != DocStatusOverdue {
		t.Fatalf("unexpected invoice successors: %v", next)
	}
	if got := AllowedNext(DocInvoice, DocStatusPaid); len(got) != 0 {
		t.Fatalf("PAID should be terminal for invoices, got %v", got)
	}
}

func TestInitialReceivedStatus(t *testing.T) {
	cases := []struct {
		docType DocType
		want    DocumentStatus
	}{
		{DocUmbrellaAgreement, DocStatusSigned},
		{DocTaskOrder, DocStatusSigned},
		{DocTaxFormW9, DocStatusSubmitted},
		{DocTaxFormW8BEN, DocStatusSubmitted},
		{DocPaymentAuthForm, DocStatusSubmitted},
		{DocInvoice, DocStatusSubmitted},
		{DocDeliverablesProof, DocStatusSubmitted},
	}
	for _, tc := range cases {
		if got := InitialReceivedStatus(tc.docType); got != tc.want {
			t.Errorf("InitialReceivedStatus(%s) = %s, want %s", tc.docType, got, tc.want)
		}
	}
}

func TestAdvanceOnRecord(t *testing.T) {
	cases := []struct {
		name     string
		docType  DocType
		current  Status
		want     Status
		advanced bool
	}{
		{"umbrella while draft", DocUmbrellaAgreement, StatusDraft, StatusAgreementSent, true},
		{"umbrella twice is idempotent", DocUmbrellaAgreement, StatusAgreementSent, StatusAgreementSent, false},
		{"w9 after agreement signed", DocTaxFormW9, StatusAgreementSigned, StatusPaymentTaxSubmitted, true},
		{"w8ben after agreement submitted", DocTaxFormW8BEN, StatusAgreementSubmitted, StatusPaymentTaxSubmitted, true},
		{"payment auth before agreement", DocPaymentAuthForm, StatusDraft, StatusDraft, false},
		{"task order after approval", DocTaskOrder, StatusPaymentTaxApproved, StatusTaskOrderGenerated, true},
		{"task order too early", DocTaskOrder, StatusAgreementSent, StatusAgreementSent, false},
		{"invoice never advances", DocInvoice, StatusDraft, StatusDraft, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, advanced := AdvanceOnRecord(tc.docType, tc.current)
			if got != tc.want || advanced != tc.advanced {
				t.Fatalf("AdvanceOnRecord(%s, %s) = (%s, %v), want (%s, %v)",
					tc.docType, tc.current, got, advanced, tc.want, tc.advanced)
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	if status, ok := ParseStatus(" draft "); !ok || status != StatusDraft {
		t.Fatalf("ParseStatus: got (%s, %v)", status, ok)
	}
	if _, ok := ParseStatus("NOT_A_STATUS"); ok {
		t.Fatal("ParseStatus accepted junk")
	}
	if docType, ok := ParseDocType("task_order"); !ok || docType != DocTaskOrder {
		t.Fatalf("ParseDocType: got (%s, %v)", docType, ok)
	}
	if status, ok := ParseDocumentStatus("under_review"); !ok || status != DocStatusUnderReview {
		t.Fatalf("ParseDocumentStatus: got (%s, %v)", status, ok)
	}
}
