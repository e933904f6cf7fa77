// Package registry persists the ordered list of tracked folder records.
//
// Database structure uses two buckets:
//   - config: schema version, timestamps, authorizer verifier parameters
//   - folders: folder records as JSON, keyed by insertion sequence
//
// The sequence keys keep listing in insertion order. Records are handed to
// the orchestrator by value; an updated copy is written back per operation.
// Removing a record never touches the directory or artifact on disk.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package registry
