package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCandidateNotFound is returned by repository lookups and updates when no
// candidate row matches the given id.
var ErrCandidateNotFound = errors.New("candidate not found")

// ValidationError carries field-level messages for a rejected upload. It is
// raised before any side effect occurs.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StorageError means the uploaded file could not be persisted. No candidate
// record exists at this point.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failed: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PersistenceError means the datastore rejected a candidate create or update.
// On create failure the orchestrator deletes the stored CV file so no orphan
// upload remains.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
