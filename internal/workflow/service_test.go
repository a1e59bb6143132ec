package workflow

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"hirepay/internal/config"
	"hirepay/internal/docgen"
	"hirepay/internal/logging"
	"hirepay/internal/procedure"
	"hirepay/internal/storage"
	"hirepay/internal/testsupport"
)

var testClock = func() time.Time {
	return time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
}

func newTestService(t *testing.T, opts ...testsupport.ConfigOption) (*Service, *config.Config) {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	blobs, err := storage.New(cfg.Paths.StorageDir)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	svc := NewService(cfg, store, blobs, docgen.NewWithClock(testClock), logging.NewNop())
	return svc, cfg
}

func pdfUpload(size int) Upload {
	content := bytes.Repeat([]byte("a"), size)
	return Upload{
		FileName:    "signed.pdf",
		ContentType: "application/pdf",
		Size:        int64(size),
		Content:     bytes.NewReader(content),
	}
}

func TestFullHiringLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "Grace.Hopper@example.com", "Grace Hopper")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}
	if proc.Status != procedure.StatusDraft {
		t.Fatalf("new procedure status = %s, want DRAFT", proc.Status)
	}
	if proc.ConsultantEmail != "grace.hopper@example.com" {
		t.Fatalf("consultant email not normalized: %q", proc.ConsultantEmail)
	}

	sent, err := svc.SendDocument(ctx, proc.UUID, SendRequest{
		DocType: procedure.DocUmbrellaAgreement,
		SentBy:  "backoffice@example.com",
	})
	if err != nil {
		t.Fatalf("SendDocument: %v", err)
	}
	if sent.Document.Version != 1 || sent.Document.Status != procedure.DocStatusSent {
		t.Fatalf("sent document = v%d %s, want v1 SENT", sent.Document.Version, sent.Document.Status)
	}
	if sent.Procedure.Status != procedure.StatusAgreementSent {
		t.Fatalf("procedure after send = %s, want AGREEMENT_SENT", sent.Procedure.Status)
	}

	received, err := svc.ReceiveDocument(ctx, proc.UUID, ReceiveRequest{
		DocType:    procedure.DocUmbrellaAgreement,
		UploadedBy: proc.ConsultantEmail,
		Upload:     pdfUpload(512),
	})
	if err != nil {
		t.Fatalf("ReceiveDocument: %v", err)
	}
	if received.Document.Version != 2 || received.Document.Status != procedure.DocStatusSigned {
		t.Fatalf("received agreement = v%d %s, want v2 SIGNED", received.Document.Version, received.Document.Status)
	}
	if received.Procedure.Status != procedure.StatusAgreementSent {
		t.Fatalf("procedure after receive = %s, want AGREEMENT_SENT", received.Procedure.Status)
	}

	if _, err := svc.MarkAgreementSigned(ctx, proc.UUID); err != nil {
		t.Fatalf("MarkAgreementSigned: %v", err)
	}

	tax, err := svc.ReceiveDocument(ctx, proc.UUID, ReceiveRequest{
		DocType:    procedure.DocTaxFormW9,
		UploadedBy: proc.ConsultantEmail,
		Upload:     pdfUpload(256),
	})
	if err != nil {
		t.Fatalf("ReceiveDocument tax form: %v", err)
	}
	if tax.Document.Status != procedure.DocStatusSubmitted {
		t.Fatalf("tax form status = %s, want SUBMITTED", tax.Document.Status)
	}
	if tax.Procedure.Status != procedure.StatusPaymentTaxSubmitted {
		t.Fatalf("procedure after tax form = %s, want PAYMENT_TAX_SUBMITTED", tax.Procedure.Status)
	}

	approved, err := svc.ApprovePaymentTax(ctx, proc.UUID, true, "looks good")
	if err != nil {
		t.Fatalf("ApprovePaymentTax: %v", err)
	}
	if approved.Status != procedure.StatusPaymentTaxApproved {
		t.Fatalf("procedure after approval = %s, want PAYMENT_TAX_APPROVED", approved.Status)
	}

	order, err := svc.GenerateTaskOrder(ctx, proc.UUID, "backoffice@example.com")
	if err != nil {
		t.Fatalf("GenerateTaskOrder: %v", err)
	}
	if order.Document.DocType != procedure.DocTaskOrder || order.Document.Version != 1 {
		t.Fatalf("task order = %s v%d, want TASK_ORDER v1", order.Document.DocType, order.Document.Version)
	}
	if order.Procedure.Status != procedure.StatusTaskOrderGenerated {
		t.Fatalf("procedure after generation = %s, want TASK_ORDER_GENERATED", order.Procedure.Status)
	}

	accepted, err := svc.AcceptTaskOrder(ctx, proc.UUID, proc.ConsultantEmail, "203.0.113.9")
	if err != nil {
		t.Fatalf("AcceptTaskOrder: %v", err)
	}
	if accepted.Status != procedure.StatusTaskOrderSubmitted {
		t.Fatalf("procedure after accept = %s, want TASK_ORDER_SUBMITTED", accepted.Status)
	}
	if accepted.TaskOrderAcceptedBy != proc.ConsultantEmail {
		t.Fatalf("accepted by = %q, want consultant email", accepted.TaskOrderAcceptedBy)
	}
	if accepted.TaskOrderAcceptedAt == nil || accepted.TaskOrderAcceptedFrom != "203.0.113.9" {
		t.Fatalf("acceptance audit incomplete: at=%v from=%q", accepted.TaskOrderAcceptedAt, accepted.TaskOrderAcceptedFrom)
	}

	done, err := svc.Archive(ctx, proc.UUID)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if done.Status != procedure.StatusCompleted {
		t.Fatalf("final status = %s, want COMPLETED", done.Status)
	}

	docs, err := svc.ProcedureDocuments(ctx, proc.UUID)
	if err != nil {
		t.Fatalf("ProcedureDocuments: %v", err)
	}
	if len(docs) != 4 {
		t.Fatalf("document count = %d, want 4", len(docs))
	}
}

func TestReceiveDocumentRejectsOversizeUpload(t *testing.T) {
	svc, cfg := newTestService(t, testsupport.WithMaxUploadMiB(1))
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}

	up := pdfUpload(16)
	up.Size = cfg.MaxUploadBytes() + 1
	_, err = svc.ReceiveDocument(ctx, proc.UUID, ReceiveRequest{
		DocType:    procedure.DocUmbrellaAgreement,
		UploadedBy: proc.ConsultantEmail,
		Upload:     up,
	})
	if !errors.Is(err, ErrInvalidUpload) {
		t.Fatalf("oversize upload error = %v, want ErrInvalidUpload", err)
	}
}

func TestReceiveDocumentRejectsDisallowedContentType(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}

	up := pdfUpload(64)
	up.FileName = "photo.png"
	up.ContentType = "image/png"
	_, err = svc.ReceiveDocument(ctx, proc.UUID, ReceiveRequest{
		DocType:    procedure.DocUmbrellaAgreement,
		UploadedBy: proc.ConsultantEmail,
		Upload:     up,
	})
	if !errors.Is(err, ErrInvalidUpload) {
		t.Fatalf("png upload error = %v, want ErrInvalidUpload", err)
	}
	if err == nil || !strings.Contains(err.Error(), "image/png") {
		t.Fatalf("error should name the offending content type, got %v", err)
	}
}

func TestReceiveDocumentRejectsEmptyUpload(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}

	_, err = svc.ReceiveDocument(ctx, proc.UUID, ReceiveRequest{
		DocType:    procedure.DocUmbrellaAgreement,
		UploadedBy: proc.ConsultantEmail,
		Upload: Upload{
			FileName:    "empty.pdf",
			ContentType: "application/pdf",
			Size:        0,
			Content:     bytes.NewReader(nil),
		},
	})
	if !errors.Is(err, ErrInvalidUpload) {
		t.Fatalf("empty upload error = %v, want ErrInvalidUpload", err)
	}
}

func TestGenerateTaskOrderRequiresApproval(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}

	_, err = svc.GenerateTaskOrder(ctx, proc.UUID, "backoffice@example.com")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("generate from DRAFT error = %v, want ErrInvalidState", err)
	}
}

func TestMarkPaymentTaxSubmittedRequiresSignedAgreement(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}
	if _, err := svc.SendDocument(ctx, proc.UUID, SendRequest{
		DocType: procedure.DocUmbrellaAgreement,
		SentBy:  "back@example.com",
	}); err != nil {
		t.Fatalf("SendDocument: %v", err)
	}

	_, err = svc.MarkPaymentTaxSubmitted(ctx, proc.UUID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("submit before agreement signed error = %v, want ErrInvalidState", err)
	}

	got, err := svc.GetProcedure(ctx, proc.UUID)
	if err != nil {
		t.Fatalf("GetProcedure: %v", err)
	}
	if got.Status != procedure.StatusAgreementSent {
		t.Fatalf("status after failed submit = %s, want AGREEMENT_SENT", got.Status)
	}
}

func TestApprovePaymentTaxRejectionIsTerminal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}
	if _, err := svc.MarkAgreementSigned(ctx, proc.UUID); err != nil {
		t.Fatalf("MarkAgreementSigned: %v", err)
	}
	if _, err := svc.MarkPaymentTaxSubmitted(ctx, proc.UUID); err != nil {
		t.Fatalf("MarkPaymentTaxSubmitted: %v", err)
	}

	rejected, err := svc.ApprovePaymentTax(ctx, proc.UUID, false, "missing W9 signature")
	if err != nil {
		t.Fatalf("ApprovePaymentTax reject: %v", err)
	}
	if rejected.Status != procedure.StatusRejected {
		t.Fatalf("status after rejection = %s, want REJECTED", rejected.Status)
	}

	if _, err := svc.MarkTaskOrderGenerated(ctx, proc.UUID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("transition out of REJECTED error = %v, want ErrInvalidState", err)
	}
}

func TestAcceptTaskOrderIsNotRepeatable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}
	if _, err := svc.MarkAgreementSigned(ctx, proc.UUID); err != nil {
		t.Fatalf("MarkAgreementSigned: %v", err)
	}
	if _, err := svc.MarkPaymentTaxSubmitted(ctx, proc.UUID); err != nil {
		t.Fatalf("MarkPaymentTaxSubmitted: %v", err)
	}
	if _, err := svc.ApprovePaymentTax(ctx, proc.UUID, true, ""); err != nil {
		t.Fatalf("ApprovePaymentTax: %v", err)
	}
	if _, err := svc.MarkTaskOrderGenerated(ctx, proc.UUID); err != nil {
		t.Fatalf("MarkTaskOrderGenerated: %v", err)
	}

	first, err := svc.AcceptTaskOrder(ctx, proc.UUID, "c@example.com", "198.51.100.4")
	if err != nil {
		t.Fatalf("AcceptTaskOrder: %v", err)
	}
	firstAt := *first.TaskOrderAcceptedAt

	if _, err := svc.AcceptTaskOrder(ctx, proc.UUID, "other@example.com", "198.51.100.5"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second accept error = %v, want ErrInvalidState", err)
	}

	current, err := svc.GetProcedure(ctx, proc.UUID)
	if err != nil {
		t.Fatalf("GetProcedure: %v", err)
	}
	if current.TaskOrderAcceptedBy != "c@example.com" || !current.TaskOrderAcceptedAt.Equal(firstAt) {
		t.Fatalf("audit triple overwritten: by=%q at=%v", current.TaskOrderAcceptedBy, current.TaskOrderAcceptedAt)
	}
}

func TestOpenDocumentRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}

	payload := []byte("%PDF-1.7 signed agreement body")
	received, err := svc.ReceiveDocument(ctx, proc.UUID, ReceiveRequest{
		DocType:    procedure.DocUmbrellaAgreement,
		UploadedBy: proc.ConsultantEmail,
		Upload: Upload{
			FileName:    "agreement.pdf",
			ContentType: "application/pdf",
			Size:        int64(len(payload)),
			Content:     bytes.NewReader(payload),
		},
	})
	if err != nil {
		t.Fatalf("ReceiveDocument: %v", err)
	}

	rc, doc, err := svc.OpenDocument(ctx, received.Document.ID)
	if err != nil {
		t.Fatalf("OpenDocument: %v", err)
	}
	defer rc.Close()
	if doc.ID != received.Document.ID {
		t.Fatalf("opened document id = %d, want %d", doc.ID, received.Document.ID)
	}
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read stored document: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("stored bytes differ from upload")
	}
}

func TestUpdateDocumentStatusRejectsIllegalMove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	proc, err := svc.CreateProcedure(ctx, "c@example.com", "C")
	if err != nil {
		t.Fatalf("CreateProcedure: %v", err)
	}
	sent, err := svc.SendDocument(ctx, proc.UUID, SendRequest{
		DocType: procedure.DocUmbrellaAgreement,
		SentBy:  "backoffice@example.com",
	})
	if err != nil {
		t.Fatalf("SendDocument: %v", err)
	}

	if _, err := svc.UpdateDocumentStatus(ctx, sent.Document.ID, procedure.DocStatusPaid, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("SENT->PAID on agreement error = %v, want ErrInvalidTransition", err)
	}

	doc, err := svc.UpdateDocumentStatus(ctx, sent.Document.ID, procedure.DocStatusSigned, nil)
	if err != nil {
		t.Fatalf("SENT->SIGNED: %v", err)
	}
	if doc.Status != procedure.DocStatusSigned {
		t.Fatalf("document status = %s, want SIGNED", doc.Status)
	}
}

func TestGetProcedureUnknownUUID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProcedure(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !IsNotFound(err) {
		t.Fatalf("unknown uuid error = %v, want ErrNotFound", err)
	}
}
