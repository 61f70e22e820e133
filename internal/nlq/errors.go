package nlq

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNoSQLTags     = errors.New("could not extract SQL from completion: missing <sql></sql> tags")
	ErrNoTemplate    = errors.New("no SQL template matched the question")
)

// ErrorKind separates "could not understand" from "the database rejected it".
type ErrorKind string

const (
	KindSynthesis  ErrorKind = "synthesis"
	KindExecution  ErrorKind = "execution"
	KindFormatting ErrorKind = "formatting"
)

// Stage is a step of the per-request state machine.
type Stage string

const (
	StageReceived        Stage = "received"
	StageClassified      Stage = "classified"
	StageParamsExtracted Stage = "params_extracted"
	StageSQLSynthesized  Stage = "sql_synthesized"
	StageValidated       Stage = "validated"
	StageExecuted        Stage = "executed"
	StageFormatted       Stage = "formatted"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// StageError is the terminal Failed(stage, reason) state. Stage is the stage that was being attempted.
type StageError struct {
	Stage Stage
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed at %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ExecutionError wraps a data store rejection.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return "query execution failed: " + e.Err.Error() }

func (e *ExecutionError) Unwrap() error { return e.Err }
