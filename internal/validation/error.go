// Package validation holds the rejection type shared by every record
// validator. A rejection names the pipeline stage it failed in, the rule that
// tripped and, for batch input, the offending item.
package validation

import (
	"errors"
	"fmt"
)

// Stage identifies where in the validation pipeline a record was rejected.
type Stage string

const (
	StageRequest   Stage = "request"
	StageStructure Stage = "structure"
	StageTypeRules Stage = "type_rules"
	StageBatch     Stage = "batch"
)

// Error is a ValidationError. Index is -1 when the input is not a batch.
type Error struct {
	Stage   Stage
	Rule    string
	Field   string
	Index   int
	Message string
}

// New returns a rejection for a single record.
func New(stage Stage, rule, field, message string) *Error {
	return &Error{Stage: stage, Rule: rule, Field: field, Index: -1, Message: message}
}

// At returns a copy of e attributed to the i-th item of a batch.
func (e *Error) At(i int) *Error {
	cp := *e
	cp.Index = i
	return &cp
}

func (e *Error) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("validation failed at %s (%s) for item %d: %s", e.Stage, e.Rule, e.Index, e.Message)
	}
	return fmt.Sprintf("validation failed at %s (%s): %s", e.Stage, e.Rule, e.Message)
}

// As extracts a *Error from anywhere in err's chain.
func As(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
