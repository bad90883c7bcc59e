package mir

import (
	"errors"
	"fmt"

	"mirbuild/internal/diag"
	"mirbuild/internal/source"
)

// Broken invariants found while lowering. They mean the input or the
// lowerer itself is wrong, never the user's program; match with errors.Is.
var (
	ErrLabelNotFound      = errors.New("loop label not found")
	ErrScopeUnderflow     = errors.New("extent is not on the scope stack")
	ErrScopeMismatch      = errors.New("scope popped out of order")
	ErrSealedBlock        = errors.New("block already terminated")
	ErrCompoundAssignDrop = errors.New("compound assignment to a value that needs drop")
	ErrBadPlace           = errors.New("expression is not a place")
	ErrUnknownBinding     = errors.New("binding has no local")
)

var internalCodes = map[error]diag.Code{
	ErrLabelNotFound:      diag.MirLabelNotFound,
	ErrScopeUnderflow:     diag.MirScopeUnderflow,
	ErrScopeMismatch:      diag.MirScopeMismatch,
	ErrSealedBlock:        diag.MirSealedBlock,
	ErrCompoundAssignDrop: diag.MirCompoundAssignDrop,
	ErrBadPlace:           diag.MirBadPlace,
	ErrUnknownBinding:     diag.MirUnknownBinding,
}

// InternalError is a lowering failure pinned to a source span.
type InternalError struct {
	Kind error
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *InternalError) Error() string {
	return "mir: internal error: " + e.Msg
}

func (e *InternalError) Unwrap() error {
	return e.Kind
}

func internalErr(kind error, span source.Span, format string, args ...any) *InternalError {
	code, ok := internalCodes[kind]
	if !ok {
		code = diag.MirInternal
	}
	msg := kind.Error()
	if format != "" {
		msg += ": " + fmt.Sprintf(format, args...)
	}
	return &InternalError{Kind: kind, Code: code, Span: span, Msg: msg}
}

// AsInternal unwraps err to an *InternalError if it carries one.
func AsInternal(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
