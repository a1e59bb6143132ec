package procedure

import "errors"

var (
	// ErrNotFound indicates a procedure or document identifier resolved to
	// no row.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a document status change that the
	// transition table for its type forbids.
	ErrInvalidTransition = errors.New("invalid document transition")

	// ErrInvalidState indicates a procedure-level precondition that does not
	// hold for the requested operation.
	ErrInvalidState = errors.New("invalid procedure state")
)
