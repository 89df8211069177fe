// internal/errors/errors.go
package errors

import "fmt"

// UpstreamRequestError is returned when a call to the repository API fails,
// answers with a non-2xx status, or returns a body that cannot be decoded.
type UpstreamRequestError struct {
	Op    string
	Owner string
	Repo  string
	Err   error
}

func (e *UpstreamRequestError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("upstream %s for %s/%s failed: %v", e.Op, e.Owner, e.Repo, e.Err)
}

func (e *UpstreamRequestError) Unwrap() error {
	return e.Err
}

// DataShapeError is returned when a field required for the snapshot is
// missing from an upstream response.
type DataShapeError struct {
	Field string
	Repo  string
}

func (e *DataShapeError) Error() string {
	if e.Repo == "" {
		return fmt.Sprintf("upstream response is missing required field %q", e.Field)
	}
	return fmt.Sprintf("upstream response for %s is missing required field %q", e.Repo, e.Field)
}

// StoreWriteError is returned when a batch insert into the analytics store fails.
// Batches before Batch were already written.
type StoreWriteError struct {
	Table string
	Batch int
	Err   error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("write batch %d to table %s: %v", e.Batch, e.Table, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}
