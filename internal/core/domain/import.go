package domain

import (
	"errors"
	"fmt"
	"time"
)

// Precondition failures. Any of these aborts an import before the first row
// is read and no summary is produced.
var (
	ErrFileNotFound     = errors.New("csv file not found")
	ErrNoActorAvailable = errors.New("no user found to assign specializations")
	ErrImportInProgress = errors.New("another specialization import is in progress")
)

// ImportPhase is the lifecycle state of an import run.
type ImportPhase string

const (
	PhaseNotStarted ImportPhase = "not_started"
	PhaseReading    ImportPhase = "reading"
	PhaseCompleted  ImportPhase = "completed"
	PhaseFailed     ImportPhase = "failed"
)

// RowOutcome tags the result of processing a single CSV row.
type RowOutcome string

const (
	OutcomeCreated         RowOutcome = "created"
	OutcomeSkippedExisting RowOutcome = "skipped"
	OutcomeFailed          RowOutcome = "failed"
)

// RowResult is the outcome of one CSV row. Err is set only when Outcome is
// OutcomeFailed.
type RowResult struct {
	Line    int
	Raw     []string
	Name    string
	Outcome RowOutcome
	Err     error
}

// ImportSummary describes a completed run. Created is the number of records
// actually inserted; skipped and failed rows never count towards it.
type ImportSummary struct {
	RunID    string
	FilePath string
	Rows     int
	Created  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// RowUnpackError reports a row whose field count differs from the schema.
type RowUnpackError struct {
	Got  int
	Want int
}

func (e *RowUnpackError) Error() string {
	return fmt.Sprintf("expected %d fields, got %d", e.Want, e.Got)
}

// TimestampParseError reports an unparseable created_at or updated_at value.
type TimestampParseError struct {
	Field string
	Value string
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("invalid %s timestamp %q", e.Field, e.Value)
}

// RowValidationError reports a row whose fields violate the record rules,
// such as an empty name.
type RowValidationError struct {
	Reason string
}

func (e *RowValidationError) Error() string {
	return "invalid row: " + e.Reason
}

// StoreWriteError wraps any failure returned by the record store while
// finding or creating a record.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string {
	return "store write: " + e.Err.Error()
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}
