package procedure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const procedureColumns = `id, uuid, product_type, status, consultant_email, consultant_name,
    task_order_accepted_by, task_order_accepted_at, task_order_accepted_from,
    created_at, updated_at`

// CreateProcedure inserts a new procedure in DRAFT with a fresh external UUID.
func (s *Store) CreateProcedure(ctx context.Context, product ProductType, consultantEmail, consultantName string) (*Procedure, error) {
	ctx = ensureContext(ctx)
	now := timestamp(time.Now())
	externalID := uuid.NewString()

	var id int64
	err := retryWrite(ctx, func() error {
		res, execErr := s.db.ExecContext(
			ctx,
			`INSERT INTO procedures (
                uuid, product_type, status, consultant_email, consultant_name, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			externalID,
			product,
			StatusDraft,
			consultantEmail,
			consultantName,
			now,
			now,
		)
		if execErr != nil {
			return execErr
		}
		id, execErr = res.LastInsertId()
		return execErr
	})
	if err != nil {
		return nil, fmt.Errorf("insert procedure: %w", err)
	}
	return s.procedureByID(ctx, id)
}

// GetByUUID resolves a procedure by its external identifier.
func (s *Store) GetByUUID(ctx context.Context, externalID string) (*Procedure, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+procedureColumns+` FROM procedures WHERE uuid = ?`, externalID)
	proc, err := scanProcedure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("procedure %s: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get procedure: %w", err)
	}
	return proc, nil
}

// ListProcedures returns all procedures, newest first.
func (s *Store) ListProcedures(ctx context.Context) ([]*Procedure, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+procedureColumns+` FROM procedures ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	defer rows.Close()

	var procs []*Procedure
	for rows.Next() {
		proc, scanErr := scanProcedure(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan procedure: %w", scanErr)
		}
		procs = append(procs, proc)
	}
	return procs, rows.Err()
}

// Acceptance carries the task order acceptance audit triple recorded during
// the accept transition.
type Acceptance struct {
	By   string
	At   time.Time
	From string
}

// TransitionProcedure moves a procedure to the target status if, and only
// if, its current status is in the allowed-from set. The read and the write
// share one transaction so concurrent actors cannot both observe the same
// precondition. The returned error wraps ErrInvalidState with the
// expected-vs-actual detail when the precondition fails.
func (s *Store) TransitionProcedure(ctx context.Context, externalID string, from []Status, to Status, acceptance *Acceptance) (*Procedure, error) {
	ctx = ensureContext(ctx)

	var result *Procedure
	err := retryWrite(ctx, func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			proc, err := procedureByUUIDTx(ctx, tx, externalID)
			if err != nil {
				return err
			}
			if !statusIn(proc.Status, from) {
				return fmt.Errorf("procedure %s: %w: requires %s, current status %s",
					externalID, ErrInvalidState, joinStatuses(from), proc.Status)
			}

			now := time.Now()
			if acceptance != nil {
				acceptedAt := acceptance.At
				if acceptedAt.IsZero() {
					acceptedAt = now
				}
				_, err = tx.ExecContext(ctx,
					`UPDATE procedures SET status = ?, task_order_accepted_by = ?,
                        task_order_accepted_at = ?, task_order_accepted_from = ?, updated_at = ?
                     WHERE id = ?`,
					to, acceptance.By, timestamp(acceptedAt), acceptance.From, timestamp(now), proc.ID)
			} else {
				_, err = tx.ExecContext(ctx,
					`UPDATE procedures SET status = ?, updated_at = ? WHERE id = ?`,
					to, timestamp(now), proc.ID)
			}
			if err != nil {
				return fmt.Errorf("update procedure status: %w", err)
			}

			result, err = procedureByUUIDTx(ctx, tx, externalID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) procedureByID(ctx context.Context, id int64) (*Procedure, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+procedureColumns+` FROM procedures WHERE id = ?`, id)
	proc, err := scanProcedure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("procedure id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get procedure: %w", err)
	}
	return proc, nil
}

func procedureByUUIDTx(ctx context.Context, tx *sql.Tx, externalID string) (*Procedure, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+procedureColumns+` FROM procedures WHERE uuid = ?`, externalID)
	proc, err := scanProcedure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("procedure %s: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get procedure: %w", err)
	}
	return proc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProcedure(row rowScanner) (*Procedure, error) {
	var (
		proc         Procedure
		acceptedBy   sql.NullString
		acceptedAt   sql.NullString
		acceptedFrom sql.NullString
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(
		&proc.ID,
		&proc.UUID,
		&proc.Product,
		&proc.Status,
		&proc.ConsultantEmail,
		&proc.ConsultantName,
		&acceptedBy,
		&acceptedAt,
		&acceptedFrom,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	proc.TaskOrderAcceptedBy = acceptedBy.String
	proc.TaskOrderAcceptedFrom = acceptedFrom.String
	if acceptedAt.Valid {
		at := parseTimestamp(acceptedAt.String)
		proc.TaskOrderAcceptedAt = &at
	}
	proc.CreatedAt = parseTimestamp(createdAt)
	proc.UpdatedAt = parseTimestamp(updatedAt)
	return &proc, nil
}

func statusIn(status Status, set []Status) bool {
	for _, candidate := range set {
		if status == candidate {
			return true
		}
	}
	return false
}

func joinStatuses(set []Status) string {
	switch len(set) {
	case 0:
		return ""
	case 1:
		return string(set[0])
	}
	out := string(set[0])
	for _, status := range set[1:] {
		out += " or " + string(status)
	}
	return out
}
