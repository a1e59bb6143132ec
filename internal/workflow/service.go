package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"hirepay/internal/config"
	"hirepay/internal/docgen"
	"hirepay/internal/procedure"
	"hirepay/internal/storage"
)

// Service orchestrates hiring procedures: it composes the ledger store, the
// document byte store, and the content generator so that every operation
// leaves the ledger and the blob store consistent. Ledger writes carry the
// atomicity; blob writes happen first and an orphaned blob is the worst a
// partial failure can leave behind.
type Service struct {
	cfg    *config.Config
	store  *procedure.Store
	blobs  *storage.Store
	gen    *docgen.Generator
	logger *slog.Logger
}

func NewService(cfg *config.Config, store *procedure.Store, blobs *storage.Store, gen *docgen.Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		store:  store,
		blobs:  blobs,
		gen:    gen,
		logger: logger,
	}
}

// DocumentResult pairs a recorded document with the procedure as it stood
// after the write, including any automatic status advance.
type DocumentResult struct {
	Document  *procedure.Document
	Procedure *procedure.Procedure
}

// CreateProcedure opens a new hiring procedure in DRAFT for the consultant.
func (s *Service) CreateProcedure(ctx context.Context, consultantEmail, consultantName string) (*procedure.Procedure, error) {
	consultantEmail = strings.ToLower(strings.TrimSpace(consultantEmail))
	if consultantEmail == "" {
		return nil, Wrap(ErrInvalidState, "procedure", "create", "consultant email is required", nil)
	}
	proc, err := s.store.CreateProcedure(ctx, procedure.ProductHiring, consultantEmail, strings.TrimSpace(consultantName))
	if err != nil {
		return nil, err
	}
	s.logger.Info("procedure created", "procedure", proc.UUID, "consultant", proc.ConsultantEmail)
	return proc, nil
}

func (s *Service) GetProcedure(ctx context.Context, procedureUUID string) (*procedure.Procedure, error) {
	return s.store.GetByUUID(ctx, procedureUUID)
}

func (s *Service) ListProcedures(ctx context.Context) ([]*procedure.Procedure, error) {
	return s.store.ListProcedures(ctx)
}

// SendRequest describes an outbound document to generate and dispatch.
type SendRequest struct {
	DocType procedure.DocType
	SentBy  string
	Notes   string
}

// SendDocument generates document content for the procedure, persists the
// bytes, and records a SENT version in the ledger. Recording triggers any
// procedure advance the document type implies.
func (s *Service) SendDocument(ctx context.Context, procedureUUID string, req SendRequest) (*DocumentResult, error) {
	proc, err := s.store.GetByUUID(ctx, procedureUUID)
	if err != nil {
		return nil, err
	}
	content, err := s.gen.Generate(proc, req.DocType)
	if err != nil {
		return nil, Wrap(ErrStorage, "document", "generate", string(req.DocType), err)
	}
	location, err := s.blobs.StoreBytes(proc.UUID, content, docgen.SuggestedFileName(req.DocType))
	if err != nil {
		return nil, Wrap(ErrStorage, "document", "store", string(req.DocType), err)
	}
	doc, updated, err := s.store.RecordDocument(ctx, proc.UUID, procedure.RecordRequest{
		DocType:       req.DocType,
		Location:      location,
		ActorEmail:    strings.ToLower(strings.TrimSpace(req.SentBy)),
		InitialStatus: procedure.DocStatusSent,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("document sent",
		"procedure", updated.UUID,
		"doc_type", doc.DocType,
		"version", doc.Version,
		"status", updated.Status)
	return &DocumentResult{Document: doc, Procedure: updated}, nil
}

// ReceiveRequest describes an inbound document upload.
type ReceiveRequest struct {
	DocType    procedure.DocType
	UploadedBy string
	Notes      string
	Upload     Upload
}

// ReceiveDocument validates the upload, persists the bytes, and records the
// new version with the received status the document type implies (SIGNED for
// agreements, SUBMITTED otherwise). Recording triggers any procedure advance.
func (s *Service) ReceiveDocument(ctx context.Context, procedureUUID string, req ReceiveRequest) (*DocumentResult, error) {
	proc, err := s.store.GetByUUID(ctx, procedureUUID)
	if err != nil {
		return nil, err
	}
	if err := s.validateUpload(req.Upload); err != nil {
		return nil, err
	}
	reader := io.LimitReader(req.Upload.Content, req.Upload.Size)
	location, err := s.blobs.StoreStream(proc.UUID, reader, req.Upload.FileName)
	if err != nil {
		return nil, Wrap(ErrStorage, "document", "store", req.Upload.FileName, err)
	}
	doc, updated, err := s.store.RecordDocument(ctx, proc.UUID, procedure.RecordRequest{
		DocType:       req.DocType,
		Location:      location,
		ActorEmail:    strings.ToLower(strings.TrimSpace(req.UploadedBy)),
		InitialStatus: procedure.InitialReceivedStatus(req.DocType),
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("document received",
		"procedure", updated.UUID,
		"doc_type", doc.DocType,
		"version", doc.Version,
		"doc_status", doc.Status,
		"status", updated.Status)
	return &DocumentResult{Document: doc, Procedure: updated}, nil
}

// UpdateDocumentStatus moves a single document version along its class state
// machine.
func (s *Service) UpdateDocumentStatus(ctx context.Context, documentID int64, status procedure.DocumentStatus, notes *string) (*procedure.Document, error) {
	doc, err := s.store.TransitionDocument(ctx, documentID, status, notes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document status updated", "document", doc.ID, "doc_type", doc.DocType, "doc_status", doc.Status)
	return doc, nil
}

func (s *Service) ProcedureDocuments(ctx context.Context, procedureUUID string) ([]*procedure.Document, error) {
	return s.store.DocumentsForProcedure(ctx, procedureUUID)
}

func (s *Service) DocumentsByType(ctx context.Context, procedureUUID string, docType procedure.DocType) ([]*procedure.Document, error) {
	return s.store.DocumentsByType(ctx, procedureUUID, docType)
}

func (s *Service) LatestDocumentByType(ctx context.Context, procedureUUID string, docType procedure.DocType) (*procedure.Document, error) {
	return s.store.LatestByType(ctx, procedureUUID, docType)
}

func (s *Service) DocumentByID(ctx context.Context, documentID int64) (*procedure.Document, error) {
	return s.store.DocumentByID(ctx, documentID)
}

// OpenDocument returns the stored bytes for a ledger entry. The caller owns
// the returned reader.
func (s *Service) OpenDocument(ctx context.Context, documentID int64) (io.ReadCloser, *procedure.Document, error) {
	doc, err := s.store.DocumentByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(doc.Location)
	if err != nil {
		return nil, nil, Wrap(ErrStorage, "document", "open", doc.Location, err)
	}
	return rc, doc, nil
}

// MarkAgreementSigned records that the umbrella agreement came back signed
// outside the upload path, advancing the procedure to AGREEMENT_SUBMITTED.
func (s *Service) MarkAgreementSigned(ctx context.Context, procedureUUID string) (*procedure.Procedure, error) {
	return s.transition(ctx, procedureUUID,
		[]procedure.Status{procedure.StatusDraft, procedure.StatusAgreementSent},
		procedure.StatusAgreementSubmitted)
}

// MarkPaymentTaxSubmitted advances the procedure once the payment and tax
// paperwork has been handed over for review.
func (s *Service) MarkPaymentTaxSubmitted(ctx context.Context, procedureUUID string) (*procedure.Procedure, error) {
	return s.transition(ctx, procedureUUID,
		[]procedure.Status{procedure.StatusAgreementSigned, procedure.StatusAgreementSubmitted},
		procedure.StatusPaymentTaxSubmitted)
}

// ApprovePaymentTax resolves the payment and tax review. Approval moves the
// procedure forward; refusal moves it to the terminal REJECTED state.
func (s *Service) ApprovePaymentTax(ctx context.Context, procedureUUID string, approved bool, notes string) (*procedure.Procedure, error) {
	target := procedure.StatusPaymentTaxApproved
	if !approved {
		target = procedure.StatusRejected
	}
	proc, err := s.transition(ctx, procedureUUID,
		[]procedure.Status{procedure.StatusPaymentTaxSubmitted}, target)
	if err != nil {
		return nil, err
	}
	if notes != "" {
		s.logger.Info("payment tax review note", "procedure", proc.UUID, "note", notes)
	}
	return proc, nil
}

// GenerateTaskOrder produces the task order document for an approved
// procedure and dispatches it. Recording the SENT version advances the
// procedure to TASK_ORDER_GENERATED.
func (s *Service) GenerateTaskOrder(ctx context.Context, procedureUUID, actorEmail string) (*DocumentResult, error) {
	proc, err := s.store.GetByUUID(ctx, procedureUUID)
	if err != nil {
		return nil, err
	}
	if proc.Status != procedure.StatusPaymentTaxApproved {
		return nil, Wrap(ErrInvalidState, "procedure", "generate task order",
			"requires PAYMENT_TAX_APPROVED, current status "+string(proc.Status), nil)
	}
	return s.SendDocument(ctx, procedureUUID, SendRequest{
		DocType: procedure.DocTaskOrder,
		SentBy:  actorEmail,
	})
}

// MarkTaskOrderGenerated advances the procedure without generating content,
// for task orders produced out of band.
func (s *Service) MarkTaskOrderGenerated(ctx context.Context, procedureUUID string) (*procedure.Procedure, error) {
	return s.transition(ctx, procedureUUID,
		[]procedure.Status{procedure.StatusPaymentTaxApproved},
		procedure.StatusTaskOrderGenerated)
}

// AcceptTaskOrder records the consultant's acceptance together with the who,
// when, and where audit triple, advancing to TASK_ORDER_SUBMITTED. The audit
// fields are written once; a repeated accept fails the status precondition.
func (s *Service) AcceptTaskOrder(ctx context.Context, procedureUUID, acceptedBy, acceptedFrom string) (*procedure.Procedure, error) {
	acceptedBy = strings.ToLower(strings.TrimSpace(acceptedBy))
	if acceptedBy == "" {
		return nil, Wrap(ErrInvalidState, "procedure", "accept task order", "acceptor email is required", nil)
	}
	proc, err := s.store.TransitionProcedure(ctx, procedureUUID,
		[]procedure.Status{procedure.StatusTaskOrderGenerated},
		procedure.StatusTaskOrderSubmitted,
		&procedure.Acceptance{By: acceptedBy, At: s.gen.Now(), From: acceptedFrom})
	if err != nil {
		return nil, err
	}
	s.logger.Info("task order accepted", "procedure", proc.UUID, "accepted_by", acceptedBy, "accepted_from", acceptedFrom)
	return proc, nil
}

// MarkTaskOrderSigned advances the procedure when the signed order arrives
// through a channel that carries no acceptance audit data.
func (s *Service) MarkTaskOrderSigned(ctx context.Context, procedureUUID string) (*procedure.Procedure, error) {
	return s.transition(ctx, procedureUUID,
		[]procedure.Status{procedure.StatusTaskOrderGenerated},
		procedure.StatusTaskOrderSubmitted)
}

// Archive closes out a procedure whose task order has been submitted.
func (s *Service) Archive(ctx context.Context, procedureUUID string) (*procedure.Procedure, error) {
	return s.transition(ctx, procedureUUID,
		[]procedure.Status{procedure.StatusTaskOrderSubmitted},
		procedure.StatusCompleted)
}

func (s *Service) transition(ctx context.Context, procedureUUID string, from []procedure.Status, to procedure.Status) (*procedure.Procedure, error) {
	proc, err := s.store.TransitionProcedure(ctx, procedureUUID, from, to, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("procedure advanced", "procedure", proc.UUID, "status", proc.Status)
	return proc, nil
}

// UserByEmail resolves a directory entry. Missing entries are not an error
// condition for callers that only enrich responses, so ErrNotFound passes
// through unwrapped.
func (s *Service) UserByEmail(ctx context.Context, email string) (*procedure.User, error) {
	return s.store.UserByEmail(ctx, email)
}

func (s *Service) UpsertUser(ctx context.Context, user procedure.User) (*procedure.User, error) {
	return s.store.UpsertUser(ctx, user)
}

// IsNotFound reports whether err represents a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
