package verifyerr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a verification failure.
type Kind string

// Failure kinds.
const (
	KindTimeout                 Kind = "Timeout"
	KindAPIError                Kind = "ApiError"
	KindNoMatchingPods          Kind = "NoMatchingPods"
	KindNoNetworkStatus         Kind = "NoNetworkStatus"
	KindResourceNotFound        Kind = "ResourceNotFound"
	KindNoConfigVolume          Kind = "NoConfigVolume"
	KindNoEmbeddedFiles         Kind = "NoEmbeddedFiles"
	KindMalformedEmbeddedConfig Kind = "MalformedEmbeddedConfig"
	KindInterfaceNotFound       Kind = "InterfaceNotFound"
	KindInvalidAddress          Kind = "InvalidAddress"
	KindProbeTransportFailure   Kind = "ProbeTransportFailure"
	KindUnreachableResult       Kind = "UnreachableResult"
	KindCancelled               Kind = "Cancelled"
)

// Stage names a step of the verification pipeline.
type Stage string

// Pipeline stages, in execution order. Install and Teardown wrap the
// scenario when the CLI manages the release itself.
const (
	StageInstall         Stage = "Install"
	StageStart           Stage = "Start"
	StageAwaitReadiness  Stage = "AwaitReadiness"
	StageResolveAddressA Stage = "ResolveAddressA"
	StageResolveAddressB Stage = "ResolveAddressB"
	StageRunProbe        Stage = "RunProbe"
	StageAssert          Stage = "Assert"
	StageDone            Stage = "Done"
	StageTeardown        Stage = "Teardown"
)

// Sentinel errors, one per Kind. An *Error matches the sentinel of its Kind.
var (
	ErrTimeout                 = &kindError{KindTimeout}
	ErrAPIError                = &kindError{KindAPIError}
	ErrNoMatchingPods          = &kindError{KindNoMatchingPods}
	ErrNoNetworkStatus         = &kindError{KindNoNetworkStatus}
	ErrResourceNotFound        = &kindError{KindResourceNotFound}
	ErrNoConfigVolume          = &kindError{KindNoConfigVolume}
	ErrNoEmbeddedFiles         = &kindError{KindNoEmbeddedFiles}
	ErrMalformedEmbeddedConfig = &kindError{KindMalformedEmbeddedConfig}
	ErrInterfaceNotFound       = &kindError{KindInterfaceNotFound}
	ErrInvalidAddress          = &kindError{KindInvalidAddress}
	ErrProbeTransportFailure   = &kindError{KindProbeTransportFailure}
	ErrUnreachableResult       = &kindError{KindUnreachableResult}
	ErrCancelled               = &kindError{KindCancelled}
)

type kindError struct {
	kind Kind
}

func (e *kindError) Error() string {
	return string(e.kind)
}

// Error is a structured verification failure.
type Error struct {
	Kind  Kind
	Stage Stage

	// Resource and Namespace identify the object the stage was working on.
	Resource  string
	Namespace string
	// Field is the expected-but-missing field path for resolution failures.
	Field string
	// Layer identifies which decode pass failed for MalformedEmbeddedConfig.
	Layer string
	// Output is the captured probe output for UnreachableResult.
	Output string

	Err error
}

// New returns an *Error of the given kind. Stage is attached later by the
// scenario through WithStage.
func New(kind Kind, resource, namespace string, err error) *Error {
	return &Error{
		Kind:      kind,
		Resource:  resource,
		Namespace: namespace,
		Err:       err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var builder strings.Builder

	if e.Stage != "" {
		fmt.Fprintf(&builder, "%s: ", e.Stage)
	}

	builder.WriteString(string(e.Kind))

	if e.Resource != "" {
		fmt.Fprintf(&builder, " (%s", e.Resource)

		if e.Namespace != "" {
			fmt.Fprintf(&builder, " in namespace %s", e.Namespace)
		}

		builder.WriteString(")")
	}

	if e.Field != "" {
		fmt.Fprintf(&builder, ": expected %s", e.Field)
	}

	if e.Layer != "" {
		fmt.Fprintf(&builder, ": layer %s", e.Layer)
	}

	if e.Err != nil {
		fmt.Fprintf(&builder, ": %v", e.Err)
	}

	return builder.String()
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	var sentinel *kindError
	if errors.As(target, &sentinel) {
		return sentinel.kind == e.Kind
	}

	return false
}

// WithField records the missing field path.
func (e *Error) WithField(field string) *Error {
	e.Field = field

	return e
}

// WithLayer records the decode layer that failed.
func (e *Error) WithLayer(layer string) *Error {
	e.Layer = layer

	return e
}

// WithOutput records captured command output.
func (e *Error) WithOutput(output string) *Error {
	e.Output = output

	return e
}

// WithStage tags err with stage. Non-structured errors are classified first:
// context cancellation becomes Cancelled, anything else ApiError. A stage
// already present on err is kept.
func WithStage(err error, stage Stage) error {
	if err == nil {
		return nil
	}

	var verr *Error
	if errors.As(err, &verr) {
		if verr.Stage == "" {
			verr.Stage = stage
		}

		return verr
	}

	kind := KindAPIError
	if IsContextError(err) {
		kind = KindCancelled
	}

	return &Error{Kind: kind, Stage: stage, Err: err}
}

// FromAPIError classifies an error returned by the orchestration API.
// Context cancellation maps to Cancelled, everything else to ApiError.
func FromAPIError(err error, resource, namespace string) *Error {
	if IsContextError(err) {
		return New(KindCancelled, resource, namespace, err)
	}

	return New(KindAPIError, resource, namespace, err)
}

// IsContextError reports whether err stems from context cancellation or deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// KindOf returns the Kind of a structured error, or "" for other errors.
func KindOf(err error) Kind {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}

	return ""
}

// StageOf returns the Stage of a structured error, or "" for other errors.
func StageOf(err error) Stage {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Stage
	}

	return ""
}
