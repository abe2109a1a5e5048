package catalog

import "fmt"

// MissingFieldError reports a vendor record that lacks a field the merge
// cannot proceed without. Treated as a data-quality error: the caller logs
// it and skips the record.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// PriceFormatError reports a vendor price string that could not be parsed.
type PriceFormatError struct {
	Value string
	Err   error
}

func (e *PriceFormatError) Error() string {
	return fmt.Sprintf("unparseable price %q: %v", e.Value, e.Err)
}

func (e *PriceFormatError) Unwrap() error { return e.Err }

// ValidationError rejects an externally supplied creation payload. It is
// surfaced to the API caller before any storage write happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StorageConflictError reports an identity-key collision detected by the
// storage backend. Merges retry once on it.
type StorageConflictError struct {
	Key string
}

func (e *StorageConflictError) Error() string {
	return fmt.Sprintf("storage conflict on identity key %s", e.Key)
}
