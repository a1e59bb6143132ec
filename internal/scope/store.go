package scope

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hirepay/internal/procedure"
)

// Sentinel errors shared with the procedure ledger so callers classify
// failures from either store the same way.
var (
	ErrNotFound          = procedure.ErrNotFound
	ErrInvalidTransition = procedure.ErrInvalidTransition
	ErrInvalidState      = procedure.ErrInvalidState
)

const scopeColumns = `id, uuid, title, description, assignee_email, creator_email, status,
	template, objectives, deliverables, timeline, requirements, constraints, due_date,
	review_notes, reviewer_email, reviewed_at, created_at, updated_at`

// Store persists scopes of work. It shares the procedure ledger's database
// handle so both live in one sqlite file under one set of pragmas.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle, normally procedure.Store.DB().
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateRequest describes a new scope to open in DRAFT.
type CreateRequest struct {
	Title         string
	Description   string
	AssigneeEmail string
	CreatorEmail  string
	Template      string
	Objectives    string
	Deliverables  string
	Timeline      string
	Requirements  string
	Constraints   string
	DueDate       *time.Time
}

func (s *Store) Create(ctx context.Context, req CreateRequest) (*Scope, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("scope: create: %w: title is required", ErrInvalidState)
	}
	assignee := strings.ToLower(strings.TrimSpace(req.AssigneeEmail))
	if assignee == "" {
		return nil, fmt.Errorf("scope: create: %w: assignee email is required", ErrInvalidState)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scopes (uuid, title, description, assignee_email, creator_email, status,
			template, objectives, deliverables, timeline, requirements, constraints, due_date,
			review_notes, reviewer_email, reviewed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', '', NULL, ?, ?)`,
		id, title, req.Description, assignee,
		strings.ToLower(strings.TrimSpace(req.CreatorEmail)), string(StatusDraft),
		req.Template, req.Objectives, req.Deliverables, req.Timeline,
		req.Requirements, req.Constraints, nullableTime(req.DueDate),
		timestamp(now), timestamp(now))
	if err != nil {
		return nil, fmt.Errorf("insert scope: %w", err)
	}
	return s.GetByUUID(ctx, id)
}

func (s *Store) GetByUUID(ctx context.Context, scopeUUID string) (*Scope, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scopeColumns+` FROM scopes WHERE uuid = ?`, scopeUUID)
	sc, err := scanScope(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scope %s: %w", scopeUUID, ErrNotFound)
	}
	return sc, err
}

// UpdateRequest carries replacement content for an editable scope.
type UpdateRequest struct {
	Title        string
	Description  string
	Objectives   string
	Deliverables string
	Timeline     string
	Requirements string
	Constraints  string
	DueDate      *time.Time
}

// Update replaces scope content. Only editable statuses accept updates;
// anything under or past review is immutable until the review loops it back.
func (s *Store) Update(ctx context.Context, scopeUUID string, req UpdateRequest) (*Scope, error) {
	sc, err := s.GetByUUID(ctx, scopeUUID)
	if err != nil {
		return nil, err
	}
	if !sc.Status.Editable() {
		return nil, fmt.Errorf("scope %s: update: %w: status %s is not editable", scopeUUID, ErrInvalidState, sc.Status)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = sc.Title
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE scopes SET title = ?, description = ?, objectives = ?, deliverables = ?,
			timeline = ?, requirements = ?, constraints = ?, due_date = ?, updated_at = ?
		WHERE uuid = ? AND status = ?`,
		title, req.Description, req.Objectives, req.Deliverables,
		req.Timeline, req.Requirements, req.Constraints, nullableTime(req.DueDate),
		timestamp(time.Now().UTC()), scopeUUID, string(sc.Status))
	if err != nil {
		return nil, fmt.Errorf("update scope: %w", err)
	}
	return s.GetByUUID(ctx, scopeUUID)
}

// Transition moves a scope along the state machine, compare-and-swapping on
// the current status so concurrent movers cannot double-apply.
func (s *Store) Transition(ctx context.Context, scopeUUID string, to Status) (*Scope, error) {
	sc, err := s.GetByUUID(ctx, scopeUUID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sc.Status, to) {
		return nil, fmt.Errorf("scope %s: %w: %s -> %s", scopeUUID, ErrInvalidTransition, sc.Status, to)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE scopes SET status = ?, updated_at = ? WHERE uuid = ? AND status = ?`,
		string(to), timestamp(time.Now().UTC()), scopeUUID, string(sc.Status))
	if err != nil {
		return nil, fmt.Errorf("transition scope: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("scope %s: %w: concurrently modified", scopeUUID, ErrInvalidState)
	}
	return s.GetByUUID(ctx, scopeUUID)
}

// Review resolves a scope under review. Approval, rejection, and change
// requests all record the reviewer, notes, and review time.
func (s *Store) Review(ctx context.Context, scopeUUID string, outcome Status, reviewerEmail, notes string) (*Scope, error) {
	if outcome != StatusApproved && outcome != StatusRejected && outcome != StatusChangesRequested {
		return nil, fmt.Errorf("scope %s: review: %w: outcome %s", scopeUUID, ErrInvalidTransition, outcome)
	}
	sc, err := s.GetByUUID(ctx, scopeUUID)
	if err != nil {
		return nil, err
	}
	if sc.Status != StatusUnderReview {
		return nil, fmt.Errorf("scope %s: review: %w: requires UNDER_REVIEW, current status %s", scopeUUID, ErrInvalidState, sc.Status)
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE scopes SET status = ?, review_notes = ?, reviewer_email = ?, reviewed_at = ?, updated_at = ?
		WHERE uuid = ? AND status = ?`,
		string(outcome), notes, strings.ToLower(strings.TrimSpace(reviewerEmail)),
		timestamp(now), timestamp(now), scopeUUID, string(StatusUnderReview))
	if err != nil {
		return nil, fmt.Errorf("review scope: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("scope %s: review: %w: concurrently modified", scopeUUID, ErrInvalidState)
	}
	return s.GetByUUID(ctx, scopeUUID)
}

func (s *Store) List(ctx context.Context) ([]*Scope, error) {
	return s.query(ctx, `SELECT `+scopeColumns+` FROM scopes ORDER BY created_at DESC, id DESC`)
}

func (s *Store) ListByAssignee(ctx context.Context, email string) ([]*Scope, error) {
	return s.query(ctx,
		`SELECT `+scopeColumns+` FROM scopes WHERE assignee_email = ? ORDER BY created_at DESC, id DESC`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) ListByCreator(ctx context.Context, email string) ([]*Scope, error) {
	return s.query(ctx,
		`SELECT `+scopeColumns+` FROM scopes WHERE creator_email = ? ORDER BY created_at DESC, id DESC`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) ListNeedingReview(ctx context.Context) ([]*Scope, error) {
	return s.query(ctx,
		`SELECT `+scopeColumns+` FROM scopes WHERE status = ? ORDER BY created_at ASC, id ASC`,
		string(StatusUnderReview))
}

// StatsByStatus counts scopes per status in one scan.
func (s *Store) StatsByStatus(ctx context.Context) (*Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM scopes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("scope stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch Status(status) {
		case StatusDraft:
			stats.Draft = count
		case StatusInProgress:
			stats.InProgress = count
		case StatusUnderReview:
			stats.UnderReview = count
		case StatusApproved:
			stats.Approved = count
		case StatusRejected:
			stats.Rejected = count
		case StatusChangesRequested:
			stats.ChangesRequested = count
		case StatusCompleted:
			stats.Completed = count
		}
	}
	return stats, rows.Err()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*Scope, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scopes: %w", err)
	}
	defer rows.Close()

	var scopes []*Scope
	for rows.Next() {
		sc, err := scanScope(rows)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, sc)
	}
	return scopes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScope(row rowScanner) (*Scope, error) {
	var (
		sc         Scope
		status     string
		dueDate    sql.NullString
		reviewedAt sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&sc.ID, &sc.UUID, &sc.Title, &sc.Description,
		&sc.AssigneeEmail, &sc.CreatorEmail, &status,
		&sc.Template, &sc.Objectives, &sc.Deliverables, &sc.Timeline,
		&sc.Requirements, &sc.Constraints, &dueDate,
		&sc.ReviewNotes, &sc.ReviewerEmail, &reviewedAt,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	sc.Status = Status(status)
	if dueDate.Valid {
		t := parseTimestamp(dueDate.String)
		sc.DueDate = &t
	}
	if reviewedAt.Valid {
		t := parseTimestamp(reviewedAt.String)
		sc.ReviewedAt = &t
	}
	sc.CreatedAt = parseTimestamp(createdAt)
	sc.UpdatedAt = parseTimestamp(updatedAt)
	return &sc, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timestamp(*t)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
