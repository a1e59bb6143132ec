// Package procedure holds the hiring paperwork domain model and its
// persistence: procedure lifecycle statuses, the per-document-type status
// transition tables, and the sqlite-backed ledger that versions every
// document attached to a procedure.
//
// Documents are append-only. Re-uploading a document type creates a new row
// with the next dense version number for that (procedure, type) pair; only
// status and notes of an existing row ever change, and always through a
// compare-and-swap against the transition tables.
package procedure
