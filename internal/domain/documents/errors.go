package documents

import "errors"

// ErrDocumentNotFound means the external document id has no row in the store.
// Documents are seeded by another subsystem before analysis.
var ErrDocumentNotFound = errors.New("document not found (seed documents first)")

// ErrStoreUnavailable means no store was configured for this process.
var ErrStoreUnavailable = errors.New("document store not configured")
