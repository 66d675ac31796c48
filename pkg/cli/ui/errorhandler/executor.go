// Package errorhandler runs the root command and renders its failures.
package errorhandler

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/Juniper/eda-apstra-project/pkg/svc/verifyerr"
	"github.com/spf13/cobra"
)

// Executor coordinates Cobra execution, capturing stderr output and surfacing aggregated errors.
type Executor struct {
	normalizer DefaultNormalizer
}

// NewExecutor constructs an Executor.
func NewExecutor() *Executor {
	return &Executor{normalizer: DefaultNormalizer{}}
}

// Execute runs cmd while intercepting Cobra's error stream. It returns nil on
// success and a *CommandError holding the normalized message and the cause otherwise.
func (e *Executor) Execute(cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	var errBuf bytes.Buffer

	originalErrWriter := cmd.ErrOrStderr()

	cmd.SetErr(&errBuf)
	defer cmd.SetErr(originalErrWriter)

	err := cmd.Execute()
	if err == nil {
		return nil
	}

	return &CommandError{
		message: e.normalizer.Normalize(errBuf.String()),
		cause:   err,
	}
}

// CommandError is a Cobra execution failure augmented with normalized stderr output.
type CommandError struct {
	message string
	cause   error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return e.message
	case e.message != "":
		if strings.Contains(e.message, e.cause.Error()) {
			return e.message
		}

		return e.message + ": " + e.cause.Error()
	default:
		return e.cause.Error()
	}
}

// Unwrap exposes the underlying cause for errors.Is/errors.As consumers.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// DefaultNormalizer cleans up text Cobra wrote to stderr.
type DefaultNormalizer struct{}

// Normalize trims whitespace, removes redundant "Error:" prefixes, and preserves multi-line usage hints.
func (DefaultNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	lines[0] = strings.TrimPrefix(strings.TrimSpace(lines[0]), "Error: ")

	return strings.Join(lines, "\n")
}

// Describe renders err for the terminal. Verification failures get one
// line per populated detail under a "stage: kind" headline.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var verr *verifyerr.Error
	if !errors.As(err, &verr) {
		return err.Error()
	}

	var builder strings.Builder

	stage := verr.Stage
	if stage == "" {
		stage = "Verify"
	}

	fmt.Fprintf(&builder, "%s failed: %s", stage, verr.Kind)

	details := []struct {
		label string
		value string
	}{
		{"resource", verr.Resource},
		{"namespace", verr.Namespace},
		{"expected field", verr.Field},
		{"layer", verr.Layer},
	}

	for _, detail := range details {
		if detail.value != "" {
			fmt.Fprintf(&builder, "\n  %s: %s", detail.label, detail.value)
		}
	}

	if verr.Err != nil {
		fmt.Fprintf(&builder, "\n  cause: %v", verr.Err)
	}

	if output := strings.TrimSpace(verr.Output); output != "" {
		builder.WriteString("\n  output:")

		for line := range strings.SplitSeq(output, "\n") {
			builder.WriteString("\n    " + line)
		}
	}

	return builder.String()
}
