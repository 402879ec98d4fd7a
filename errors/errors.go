package errors

import (
	"fmt"
	"strings"
)

// Stage indicates where in the binding lifecycle the error occurred
type Stage string

const (
	StageResolve Stage = "resolve" // submodule / revision resolution
	StageBuild   Stage = "build"   // native toolchain invocation
	StageLink    Stage = "link"    // linking mode configuration
	StageConfig  Stage = "config"  // caller-supplied configuration
	StageRuntime Stage = "runtime" // live node operations
)

// Kind categorizes the error
type Kind string

const (
	KindBuildFailure     Kind = "build_failure"     // toolchain exited non-zero
	KindRevisionMismatch Kind = "revision_mismatch" // checkout differs from the pin
	KindModeConflict     Kind = "mode_conflict"     // static and dynamic both requested
	KindConfigInvalid    Kind = "config_invalid"    // node configuration rejected
	KindInvalidParameter Kind = "invalid_parameter" // call argument rejected
	KindNativeFailure    Kind = "native_failure"    // error reported by libcodex
	KindHandleClosed     Kind = "handle_closed"     // operation on a released node
	KindCancelled        Kind = "cancelled"         // waiter detached by its context
	KindToolMissing      Kind = "tool_missing"      // required build tool not on PATH
)

// Error is the structured error type used throughout the bindings.
// Code and Detail carry the native side's diagnostics losslessly when
// the error originated in libcodex.
type Error struct {
	Cause  error
	Stage  Stage
	Kind   Kind
	Op     string // operation name, e.g. "start", "upload"
	Detail string
	Output string // captured toolchain output for build failures
	Code   int    // native return code, 0 when not native
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Stage))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Code != 0 {
		fmt.Fprintf(&b, " (code %d)", e.Code)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	if e.Output != "" {
		b.WriteString("\n--- build output ---\n")
		b.WriteString(strings.TrimRight(e.Output, "\n"))
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two structured errors
// match on Stage and Kind; Code, Op and Detail are diagnostic only.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Stage == t.Stage && e.Kind == t.Kind
	}
	return false
}

// Native return codes of the pinned libcodex ABI.
const (
	CodeOK              = 0
	CodeErr             = 1
	CodeMissingCallback = 2
	CodeProgress        = 3
)

// FromCode converts a native return code and message into an error.
// The mapping is total: CodeOK maps to nil, and every other code,
// recognized or not, maps to a native failure carrying the code and
// message as reported. It performs no I/O and never panics.
func FromCode(op string, code int, message string) error {
	switch code {
	case CodeOK:
		return nil
	case CodeMissingCallback:
		if message == "" {
			message = "native call issued without a completion callback"
		}
	}
	return &Error{
		Stage:  StageRuntime,
		Kind:   KindNativeFailure,
		Code:   code,
		Op:     op,
		Detail: message,
	}
}

// Convenience constructors for the binding error taxonomy

// BuildFailure reports a non-zero toolchain exit with its captured output.
func BuildFailure(op, output string, cause error) *Error {
	return &Error{
		Stage:  StageBuild,
		Kind:   KindBuildFailure,
		Op:     op,
		Detail: "native build tool exited with an error",
		Output: output,
		Cause:  cause,
	}
}

// RevisionMismatch reports a checkout that differs from the pinned revision.
func RevisionMismatch(want, got string) *Error {
	return &Error{
		Stage:  StageResolve,
		Kind:   KindRevisionMismatch,
		Detail: fmt.Sprintf("native source tree is at %s, bindings are pinned to %s", got, want),
	}
}

// ModeConflict reports a linking mode configuration that requests both modes.
func ModeConflict() *Error {
	return &Error{
		Stage:  StageLink,
		Kind:   KindModeConflict,
		Detail: "static and dynamic linking are mutually exclusive",
	}
}

// ToolMissing reports a required build tool that is not installed.
func ToolMissing(tool string, cause error) *Error {
	return &Error{
		Stage:  StageBuild,
		Kind:   KindToolMissing,
		Detail: fmt.Sprintf("required tool %q is not installed or not in PATH", tool),
		Cause:  cause,
	}
}

// ConfigInvalid reports a rejected node configuration field.
func ConfigInvalid(field, detail string) *Error {
	return &Error{
		Stage:  StageConfig,
		Kind:   KindConfigInvalid,
		Detail: fmt.Sprintf("%s: %s", field, detail),
	}
}

// InvalidParameter reports a rejected call argument.
func InvalidParameter(param, detail string) *Error {
	return &Error{
		Stage:  StageConfig,
		Kind:   KindInvalidParameter,
		Detail: fmt.Sprintf("%s: %s", param, detail),
	}
}

// Native reports a failure surfaced by libcodex outside the return-code
// path, e.g. a null handle from the constructor.
func Native(op, detail string) *Error {
	return &Error{
		Stage:  StageRuntime,
		Kind:   KindNativeFailure,
		Code:   CodeErr,
		Op:     op,
		Detail: detail,
	}
}

// HandleClosed reports an operation attempted on a released node.
func HandleClosed(op string) *Error {
	return &Error{
		Stage:  StageRuntime,
		Kind:   KindHandleClosed,
		Op:     op,
		Detail: "node has been closed",
	}
}

// Cancelled reports a waiter detached by its context. Cause carries the
// context error so callers can distinguish deadline from cancellation.
func Cancelled(op string, cause error) *Error {
	return &Error{
		Stage: StageRuntime,
		Kind:  KindCancelled,
		Op:    op,
		Cause: cause,
	}
}

// Wrap wraps an existing error with stage and kind context.
func Wrap(stage Stage, kind Kind, cause error, detail string) *Error {
	return &Error{
		Stage:  stage,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsKind reports whether err or any error in its chain is a structured
// error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsNative reports whether err is a native failure.
func IsNative(err error) bool { return IsKind(err, KindNativeFailure) }

// IsHandleClosed reports whether err is a closed-handle failure.
func IsHandleClosed(err error) bool { return IsKind(err, KindHandleClosed) }

// IsCancelled reports whether err is a detached-waiter cancellation.
func IsCancelled(err error) bool { return IsKind(err, KindCancelled) }

// NativeCode returns the native return code carried by err, or (0, false)
// if err is not a native failure.
func NativeCode(err error) (int, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == KindNativeFailure {
			return e.Code, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}
