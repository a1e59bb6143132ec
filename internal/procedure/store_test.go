package procedure_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"hirepay/internal/procedure"
	"hirepay/internal/testsupport"
)

func TestCreateProcedureStartsDraft(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	proc, err := store.CreateProcedure(context.Background(), procedure.ProductHiring, "a@x.com", "A")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}
	if proc.UUID == "" {
		t.Fatal("expected non-empty uuid")
	}
	if proc.Status != procedure.StatusDraft {
		t.Fatalf("expected DRAFT, got %s", proc.Status)
	}
	if proc.CreatedAt.IsZero() || proc.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	fetched, err := store.GetByUUID(context.Background(), proc.UUID)
	if err != nil {
		t.Fatalf("GetByUUID: %v", err)
	}
	if fetched.ID != proc.ID || fetched.ConsultantEmail != "a@x.com" {
		t.Fatalf("unexpected fetched procedure: %+v", fetched)
	}
}

func TestGetByUUIDMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.GetByUUID(context.Background(), "no-such-uuid")
	if !errors.Is(err, procedure.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordDocumentAssignsDenseVersions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc := testsupport.NewProcedure(t, store, "a@x.com", "A")

	ctx := context.Background()
	for want := 1; want <= 3; want++ {
		doc, _, err := store.RecordDocument(ctx, proc.UUID, procedure.RecordRequest{
			DocType:       procedure.DocTaxFormW9,
			Location:      fmt.Sprintf("docs/w9-%d.pdf", want),
			ActorEmail:    "fo@x.com",
			InitialStatus: procedure.DocStatusSubmitted,
		})
		if err != nil {
			t.Fatalf("RecordDocument #%d: %v", want, err)
		}
		if doc.Version != want {
			t.Fatalf("expected version %d, got %d", want, doc.Version)
		}
	}

	// A different type starts its own sequence at 1.
	doc, _, err := store.RecordDocument(ctx, proc.UUID, procedure.RecordRequest{
		DocType:       procedure.DocInvoice,
		Location:      "docs/invoice.pdf",
		ActorEmail:    "fo@x.com",
		InitialStatus: procedure.DocStatusSubmitted,
	})
	if err != nil {
		t.Fatalf("RecordDocument invoice: %v", err)
	}
	if doc.Version != 1 {
		t.Fatalf("expected invoice version 1, got %d", doc.Version)
	}
}

func TestRecordDocumentConcurrentVersionsStayDense(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc := testsupport.NewProcedure(t, store, "a@x.com", "A")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, err := store.RecordDocument(context.Background(), proc.UUID, procedure.RecordRequest{
				DocType:       procedure.DocUmbrellaAgreement,
				Location:      fmt.Sprintf("docs/agreement-%d.pdf", n),
				ActorEmail:    "bo@x.com",
				InitialStatus: procedure.DocStatusSent,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent RecordDocument: %v", err)
		}
	}

	docs, err := store.DocumentsByType(context.Background(), proc.UUID, procedure.DocUmbrellaAgreement)
	if err != nil {
		t.Fatalf("DocumentsByType: %v", err)
	}
	if len(docs) != writers {
		t.Fatalf("expected %d documents, got %d", writers, len(docs))
	}
	seen := make(map[int]bool, writers)
	for _, doc := range docs {
		if doc.Version < 1 || doc.Version > writers {
			t.Fatalf("version %d outside 1..%d", doc.Version, writers)
		}
		if seen[doc.Version] {
			t.Fatalf("duplicate version %d", doc.Version)
		}
		seen[doc.Version] = true
	}
}

func TestRecordDocumentAppliesDefaultAdvance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc := testsupport.NewProcedure(t, store, "a@x.com", "A")

	ctx := context.Background()
	_, updated, err := store.RecordDocument(ctx, proc.UUID, procedure.RecordRequest{
		DocType:       procedure.DocUmbrellaAgreement,
		Location:      "docs/agreement.pdf",
		ActorEmail:    "bo@x.com",
		InitialStatus: procedure.DocStatusSent,
	})
	if err != nil {
		t.Fatalf("RecordDocument: %v", err)
	}
	if updated.Status != procedure.StatusAgreementSent {
		t.Fatalf("expected AGREEMENT_SENT, got %s", updated.Status)
	}

	// Recording another agreement version leaves the status alone.
	_, updated, err = store.RecordDocument(ctx, proc.UUID, procedure.RecordRequest{
		DocType:       procedure.DocUmbrellaAgreement,
		Location:      "docs/agreement-v2.pdf",
		ActorEmail:    "bo@x.com",
		InitialStatus: procedure.DocStatusSent,
	})
	if err != nil {
		t.Fatalf("RecordDocument v2: %v", err)
	}
	if updated.Status != procedure.StatusAgreementSent {
		t.Fatalf("expected AGREEMENT_SENT after re-record, got %s", updated.Status)
	}
}

func TestTransitionDocumentEnforcesTable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc := testsupport.NewProcedure(t, store, "a@x.com", "A")

	ctx := context.Background()
	doc := testsupport.RecordDocument(t, store, proc.UUID, procedure.RecordRequest{
		DocType:       procedure.DocUmbrellaAgreement,
		Location:      "docs/agreement.pdf",
		ActorEmail:    "bo@x.com",
		InitialStatus: procedure.DocStatusSent,
	})

	signed, err := store.TransitionDocument(ctx, doc.ID, procedure.DocStatusSigned, nil)
	if err != nil {
		t.Fatalf("SENT -> SIGNED: %v", err)
	}
	if signed.Status != procedure.DocStatusSigned {
		t.Fatalf("expected SIGNED, got %s", signed.Status)
	}

	if _, err := store.TransitionDocument(ctx, doc.ID, procedure.DocStatusSent, nil); !errors.Is(err, procedure.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition going back to SENT, got %v", err)
	}

	notes := "looks good"
	approved, err := store.TransitionDocument(ctx, doc.ID, procedure.DocStatusApproved, &notes)
	if err != nil {
		t.Fatalf("SIGNED -> APPROVED: %v", err)
	}
	if approved.Notes != "looks good" {
		t.Fatalf("expected notes update, got %q", approved.Notes)
	}
}

func TestTransitionDocumentMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.TransitionDocument(context.Background(), 999, procedure.DocStatusSigned, nil)
	if !errors.Is(err, procedure.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentQueries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc := testsupport.NewProcedure(t, store, "a@x.com", "A")

	ctx := context.Background()
	testsupport.RecordDocument(t, store, proc.UUID, procedure.RecordRequest{
		DocType: procedure.DocUmbrellaAgreement, Location: "v1", ActorEmail: "bo@x.com",
		InitialStatus: procedure.DocStatusSent,
	})
	testsupport.RecordDocument(t, store, proc.UUID, procedure.RecordRequest{
		DocType: procedure.DocUmbrellaAgreement, Location: "v2", ActorEmail: "bo@x.com",
		InitialStatus: procedure.DocStatusSent,
	})
	testsupport.RecordDocument(t, store, proc.UUID, procedure.RecordRequest{
		DocType: procedure.DocInvoice, Location: "inv", ActorEmail: "fo@x.com",
		InitialStatus: procedure.DocStatusSubmitted,
	})

	all, err := store.DocumentsForProcedure(ctx, proc.UUID)
	if err != nil {
		t.Fatalf("DocumentsForProcedure: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(all))
	}

	agreements, err := store.DocumentsByType(ctx, proc.UUID, procedure.DocUmbrellaAgreement)
	if err != nil {
		t.Fatalf("DocumentsByType: %v", err)
	}
	if len(agreements) != 2 || agreements[0].Version != 2 {
		t.Fatalf("expected highest version first, got %+v", agreements)
	}

	latest, err := store.LatestByType(ctx, proc.UUID, procedure.DocUmbrellaAgreement)
	if err != nil {
		t.Fatalf("LatestByType: %v", err)
	}
	if latest.Version != 2 || latest.Location != "v2" {
		t.Fatalf("unexpected latest: %+v", latest)
	}

	if _, err := store.LatestByType(ctx, proc.UUID, procedure.DocTaxFormW9); !errors.Is(err, procedure.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty slot, got %v", err)
	}

	version, err := store.NextVersion(ctx, proc.UUID, procedure.DocUmbrellaAgreement)
	if err != nil {
		t.Fatalf("NextVersion: %v", err)
	}
	if version != 3 {
		t.Fatalf("expected next version 3, got %d", version)
	}
	version, err = store.NextVersion(ctx, proc.UUID, procedure.DocTaxFormW9)
	if err != nil {
		t.Fatalf("NextVersion empty slot: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected next version 1 for empty slot, got %d", version)
	}
}

func TestTransitionProcedureCAS(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc := testsupport.NewProcedure(t, store, "a@x.com", "A")

	ctx := context.Background()
	updated, err := store.TransitionProcedure(ctx, proc.UUID,
		[]procedure.Status{procedure.StatusDraft, procedure.StatusAgreementSent},
		procedure.StatusAgreementSubmitted, nil)
	if err != nil {
		t.Fatalf("TransitionProcedure: %v", err)
	}
	if updated.Status != procedure.StatusAgreementSubmitted {
		t.Fatalf("expected AGREEMENT_SUBMITTED, got %s", updated.Status)
	}

	_, err = store.TransitionProcedure(ctx, proc.UUID,
		[]procedure.Status{procedure.StatusDraft},
		procedure.StatusAgreementSubmitted, nil)
	if !errors.Is(err, procedure.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestTransitionProcedureRecordsAcceptance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	proc := testsupport.NewProcedure(t, store, "a@x.com", "A")

	ctx := context.Background()
	for _, step := range []struct {
		from []procedure.Status
		to   procedure.Status
	}{
		{[]procedure.Status{procedure.StatusDraft}, procedure.StatusAgreementSubmitted},
		{[]procedure.Status{procedure.StatusAgreementSubmitted}, procedure.StatusPaymentTaxSubmitted},
		{[]procedure.Status{procedure.StatusPaymentTaxSubmitted}, procedure.StatusPaymentTaxApproved},
		{[]procedure.Status{procedure.StatusPaymentTaxApproved}, procedure.StatusTaskOrderGenerated},
	} {
		if _, err := store.TransitionProcedure(ctx, proc.UUID, step.from, step.to, nil); err != nil {
			t.Fatalf("advance to %s: %v", step.to, err)
		}
	}

	accepted, err := store.TransitionProcedure(ctx, proc.UUID,
		[]procedure.Status{procedure.StatusTaskOrderGenerated},
		procedure.StatusTaskOrderSubmitted,
		&procedure.Acceptance{By: "consultant@x.com", From: "203.0.113.9"})
	if err != nil {
		t.Fatalf("accept task order: %v", err)
	}
	if accepted.TaskOrderAcceptedBy != "consultant@x.com" {
		t.Fatalf("expected acceptance audit, got %+v", accepted)
	}
	if accepted.TaskOrderAcceptedAt == nil || accepted.TaskOrderAcceptedAt.IsZero() {
		t.Fatal("expected acceptance timestamp")
	}
	if accepted.TaskOrderAcceptedFrom != "203.0.113.9" {
		t.Fatalf("expected acceptance origin, got %q", accepted.TaskOrderAcceptedFrom)
	}
}

func TestUpsertAndLookupUser(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	user, err := store.UpsertUser(ctx, procedure.User{
		Email:       "BO@X.com",
		Roles:       []procedure.Role{procedure.RoleBackOffice, procedure.RoleAdmin},
		Designation: "Reviewer",
		FullName:    "Back Office",
	})
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if user.Email != "bo@x.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if len(user.Roles) != 2 {
		t.Fatalf("expected 2 roles, got %v", user.Roles)
	}

	updated, err := store.UpsertUser(ctx, procedure.User{Email: "bo@x.com", FullName: "Renamed"})
	if err != nil {
		t.Fatalf("UpsertUser update: %v", err)
	}
	if updated.FullName != "Renamed" || updated.ID != user.ID {
		t.Fatalf("expected in-place update, got %+v", updated)
	}

	if _, err := store.UserByEmail(ctx, "nobody@x.com"); !errors.Is(err, procedure.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
