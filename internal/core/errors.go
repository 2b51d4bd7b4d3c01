package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNoValidRows is returned when normalization leaves nothing to import.
	ErrNoValidRows = errors.New("no valid rows to import")

	// ErrImportNotFound is returned for unknown or expired import IDs.
	ErrImportNotFound = errors.New("import not found")

	// ErrConfirmationRequired guards destructive order deletion.
	ErrConfirmationRequired = errors.New("confirmation required before deleting orders")

	// ErrNothingSelected is returned when a deletion names no rows.
	ErrNothingSelected = errors.New("no orders selected")
)

// RemoteError carries the diagnostic fields the database reports for a
// failed call.
type RemoteError struct {
	Op      string `json:"op"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Hint    string `json:"hint,omitempty"`

	err error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " (SQLSTATE %s)", e.Code)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, "; detail: %s", e.Detail)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, "; hint: %s", e.Hint)
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error { return e.err }

// remoteError wraps err for op, lifting code, detail and hint out of a
// *pgconn.PgError when there is one.
func remoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	re := &RemoteError{Op: op, Message: err.Error(), err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		re.Code = pgErr.Code
		re.Message = pgErr.Message
		re.Detail = pgErr.Detail
		re.Hint = pgErr.Hint
	}
	return re
}

// BatchError reports an import that stopped part way through. Records in
// earlier batches stay committed.
type BatchError struct {
	Imported int
	Total    int
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d records imported before error: %v", e.Imported, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
