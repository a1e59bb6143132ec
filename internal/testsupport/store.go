package testsupport

import (
	"context"
	"testing"

	"hirepay/internal/config"
	"hirepay/internal/procedure"
)

// MustOpenStore opens a procedure.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *procedure.Store {
	t.Helper()

	store, err := procedure.Open(cfg)
	if err != nil {
		t.Fatalf("procedure.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProcedure creates a hiring procedure for tests using the provided store.
func NewProcedure(t testing.TB, store *procedure.Store, email, name string) *procedure.Procedure {
	t.Helper()

	proc, err := store.CreateProcedure(context.Background(), procedure.ProductHiring, email, name)
	if err != nil {
		t.Fatalf("store.CreateProcedure: %v", err)
	}
	return proc
}

// RecordDocument appends a document version for tests.
func RecordDocument(t testing.TB, store *procedure.Store, procedureUUID string, req procedure.RecordRequest) *procedure.Document {
	t.Helper()

	doc, _, err := store.RecordDocument(context.Background(), procedureUUID, req)
	if err != nil {
		t.Fatalf("store.RecordDocument: %v", err)
	}
	return doc
}
