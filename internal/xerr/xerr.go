// Package xerr defines the engine's discriminable error taxonomy.
//
// Every failure kind a caller might need to switch on is a package-level
// sentinel (§7). Call sites wrap the sentinel with context using [Wrap] or
// [Wrapf]; callers recover the kind with errors.Is. Wrapping is delegated to
// github.com/pkg/errors, which preserves the original sentinel through
// errors.Is/errors.As the same way the teacher's private crex.Wrap does.
package xerr

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	ErrRecipeValidation = stderrors.New("recipe validation failed")
	ErrUnknownVariable  = stderrors.New("unknown variable")
	ErrUnknownProcessor = stderrors.New("unknown processor type")
	ErrConfig           = stderrors.New("processor config invalid")
	ErrStageNotFound    = stderrors.New("stage not found")
	ErrStageConflict    = stderrors.New("stage conflict")
	ErrColumnNotFound   = stderrors.New("column not found")
	ErrDuplicateKey     = stderrors.New("duplicate lookup key")
	ErrIO               = stderrors.New("tabular i/o failed")
	ErrInternal         = stderrors.New("internal error")
)

// Wrap attaches a message to a sentinel error kind, preserving it for errors.Is.
func Wrap(kind error, message string) error {
	return errors.Wrap(kind, message)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind error, format string, args ...any) error {
	return errors.Wrapf(kind, format, args...)
}

// Is reports whether err is, or wraps, kind.
func Is(err, kind error) bool {
	return stderrors.Is(err, kind)
}
