package workflow

import (
	"errors"
	"fmt"
	"strings"

	"hirepay/internal/procedure"
)

// Error taxonomy for orchestrated operations. Ledger-level sentinels are
// re-exported so callers match one set regardless of which layer failed.
var (
	ErrNotFound          = procedure.ErrNotFound
	ErrInvalidTransition = procedure.ErrInvalidTransition
	ErrInvalidState      = procedure.ErrInvalidState

	// ErrInvalidUpload indicates a received file failed validation: empty,
	// oversize, or a disallowed content type.
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrStorage indicates document byte persistence failed. Surfaced to the
	// caller without retry; the triggering request is terminal.
	ErrStorage = errors.New("storage failure")
)

// Wrap builds an error message that includes entity context while tagging it
// with the provided marker for classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, entity, operation, message string, err error) error {
	detail := buildDetail(entity, operation, message)
	if marker == nil {
		marker = ErrStorage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(entity, operation, message string) string {
	parts := make([]string, 0, 3)
	if entity = strings.TrimSpace(entity); entity != "" {
		parts = append(parts, entity)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "workflow failure"
	}
	return strings.Join(parts, ": ")
}
