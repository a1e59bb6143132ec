package procedure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const documentColumns = `id, procedure_id, doc_type, location, actor_email, status, version, notes, created_at`

// RecordRequest describes a new document version to append to the ledger.
type RecordRequest struct {
	DocType       DocType
	Location      string
	ActorEmail    string
	InitialStatus DocumentStatus
	Notes         string
}

// RecordDocument appends a new version for (procedure, docType) and applies
// the default procedure advance the document type implies, all inside one
// transaction: the allocated version, the insert, and the status update
// either land together or not at all. The unique version index plus write
// retry keep versions dense under concurrent writers.
func (s *Store) RecordDocument(ctx context.Context, procedureUUID string, req RecordRequest) (*Document, *Procedure, error) {
	ctx = ensureContext(ctx)

	var (
		doc  *Document
		proc *Procedure
	)
	err := retryWrite(ctx, func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			current, err := procedureByUUIDTx(ctx, tx, procedureUUID)
			if err != nil {
				return err
			}

			var version int
			err = tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(version), 0) + 1 FROM procedure_documents
                 WHERE procedure_id = ? AND doc_type = ?`,
				current.ID, req.DocType,
			).Scan(&version)
			if err != nil {
				return fmt.Errorf("compute next version: %w", err)
			}

			now := time.Now()
			res, err := tx.ExecContext(ctx,
				`INSERT INTO procedure_documents (
                    procedure_id, doc_type, location, actor_email, status, version, notes, created_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				current.ID,
				req.DocType,
				req.Location,
				req.ActorEmail,
				req.InitialStatus,
				version,
				req.Notes,
				timestamp(now),
			)
			if err != nil {
				return fmt.Errorf("insert document: %w", err)
			}
			docID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}

			if target, advanced := AdvanceOnRecord(req.DocType, current.Status); advanced {
				_, err = tx.ExecContext(ctx,
					`UPDATE procedures SET status = ?, updated_at = ? WHERE id = ?`,
					target, timestamp(now), current.ID)
				if err != nil {
					return fmt.Errorf("advance procedure status: %w", err)
				}
			}

			doc, err = documentByIDTx(ctx, tx, docID)
			if err != nil {
				return err
			}
			proc, err = procedureByUUIDTx(ctx, tx, procedureUUID)
			return err
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, proc, nil
}

// NextVersion reports the version the next recorded document of the given
// type would receive. Reads outside a transaction are advisory; RecordDocument
// recomputes inside its own transaction.
func (s *Store) NextVersion(ctx context.Context, procedureUUID string, docType DocType) (int, error) {
	ctx = ensureContext(ctx)
	proc, err := s.GetByUUID(ctx, procedureUUID)
	if err != nil {
		return 0, err
	}
	var version int
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM procedure_documents
         WHERE procedure_id = ? AND doc_type = ?`,
		proc.ID, docType,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("compute next version: %w", err)
	}
	return version, nil
}

// TransitionDocument moves a document to a new status after validating the
// move against the transition table for its type. Current status is re-read
// inside the same transaction that writes, so two reviewers racing the same
// document cannot both succeed. Notes, when non-nil, replace the stored notes.
func (s *Store) TransitionDocument(ctx context.Context, documentID int64, newStatus DocumentStatus, notes *string) (*Document, error) {
	ctx = ensureContext(ctx)

	var result *Document
	err := retryWrite(ctx, func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			doc, err := documentByIDTx(ctx, tx, documentID)
			if err != nil {
				return err
			}
			if !CanTransition(doc.DocType, doc.Status, newStatus) {
				return fmt.Errorf("document %d (%s): %w: %s -> %s not permitted, allowed: %v",
					documentID, doc.DocType, ErrInvalidTransition, doc.Status, newStatus,
					AllowedNext(doc.DocType, doc.Status))
			}

			if notes != nil {
				_, err = tx.ExecContext(ctx,
					`UPDATE procedure_documents SET status = ?, notes = ? WHERE id = ?`,
					newStatus, *notes, documentID)
			} else {
				_, err = tx.ExecContext(ctx,
					`UPDATE procedure_documents SET status = ? WHERE id = ?`,
					newStatus, documentID)
			}
			if err != nil {
				return fmt.Errorf("update document status: %w", err)
			}

			result, err = documentByIDTx(ctx, tx, documentID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DocumentByID fetches a single document row.
func (s *Store) DocumentByID(ctx context.Context, id int64) (*Document, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM procedure_documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// DocumentsForProcedure returns every document of a procedure, newest first.
func (s *Store) DocumentsForProcedure(ctx context.Context, procedureUUID string) ([]*Document, error) {
	ctx = ensureContext(ctx)
	proc, err := s.GetByUUID(ctx, procedureUUID)
	if err != nil {
		return nil, err
	}
	return s.queryDocuments(ctx,
		`SELECT `+documentColumns+` FROM procedure_documents
         WHERE procedure_id = ? ORDER BY created_at DESC, id DESC`,
		proc.ID)
}

// DocumentsByType returns all versions of one document type, highest version first.
func (s *Store) DocumentsByType(ctx context.Context, procedureUUID string, docType DocType) ([]*Document, error) {
	ctx = ensureContext(ctx)
	proc, err := s.GetByUUID(ctx, procedureUUID)
	if err != nil {
		return nil, err
	}
	return s.queryDocuments(ctx,
		`SELECT `+documentColumns+` FROM procedure_documents
         WHERE procedure_id = ? AND doc_type = ? ORDER BY version DESC`,
		proc.ID, docType)
}

// LatestByType returns the highest-version document of one type, or
// ErrNotFound when the slot is empty.
func (s *Store) LatestByType(ctx context.Context, procedureUUID string, docType DocType) (*Document, error) {
	ctx = ensureContext(ctx)
	proc, err := s.GetByUUID(ctx, procedureUUID)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM procedure_documents
         WHERE procedure_id = ? AND doc_type = ? ORDER BY version DESC LIMIT 1`,
		proc.ID, docType)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("procedure %s has no %s: %w", procedureUUID, docType, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get latest document: %w", err)
	}
	return doc, nil
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan document: %w", scanErr)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func documentByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*Document, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM procedure_documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		doc       Document
		createdAt string
	)
	err := row.Scan(
		&doc.ID,
		&doc.ProcedureID,
		&doc.DocType,
		&doc.Location,
		&doc.ActorEmail,
		&doc.Status,
		&doc.Version,
		&doc.Notes,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	doc.CreatedAt = parseTimestamp(createdAt)
	return &doc, nil
}
