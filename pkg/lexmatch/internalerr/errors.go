package internalerr

import "errors"

// Sentinel errors for common cases
var (
	// ErrNotTrained is returned by query methods called before a
	// successful Fit.
	ErrNotTrained = errors.New("parser not trained")

	// ErrIntentNotFound is returned when an intent name is not part of
	// the training data.
	ErrIntentNotFound = errors.New("intent not found")

	// ErrLoading is returned when a persisted model is missing or
	// lacks required fields.
	ErrLoading = errors.New("loading error")

	// ErrCorruptIndex signals an internal invariant violation, such as
	// a slot-id/entity count mismatch at decode time. It indicates a
	// corrupted or hand-edited model, never a bad query.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrInvalidDataset is returned when a dataset fails validation.
	ErrInvalidDataset = errors.New("invalid dataset")
)
