package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and storage adapters return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record or object does not exist in the store
// - ErrConflict: uniqueness constraint or check-and-set version lost
// - ErrInvalidState: record in wrong state for the requested mutation
// - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
