package domain

import "errors"

// Error taxonomy for the classification path. The API layer maps these to
// response status codes; everything else is wrapped with context and
// contained close to where it happened.
var (
	// ErrInvalidInput marks empty, oversized, or otherwise unusable caller
	// input. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelNotReady means no trained model exists yet for the requested
	// language (including the no-training-data-at-all case).
	ErrModelNotReady = errors.New("model not ready")

	// ErrDatabaseUnavailable means neither the live document store nor an
	// unexpired cached snapshot could serve the request.
	ErrDatabaseUnavailable = errors.New("database unavailable")

	// ErrPredictionFailed marks a prediction source failure. Absorbed by the
	// orchestrator unless no other strategy produced data.
	ErrPredictionFailed = errors.New("prediction failed")

	// ErrDocumentNotFound is returned by the document store when no document
	// exists for a category id.
	ErrDocumentNotFound = errors.New("training document not found")
)
