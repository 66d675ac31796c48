package probe

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/Juniper/eda-apstra-project/pkg/client/podexec"
	"github.com/Juniper/eda-apstra-project/pkg/svc/verifyerr"
	"github.com/sirupsen/logrus"
)

// DefaultCount is the number of echo requests sent per probe.
const DefaultCount = 3

// ErrInvalidTarget is returned for a zero-value target address.
var ErrInvalidTarget = errors.New("probe target address is invalid")

// Result is the outcome of a probe that executed.
type Result struct {
	Command   []string
	Output    string
	ExitCode  int
	Reachable bool
}

// Prober execs ping inside a source pod.
type Prober struct {
	executor podexec.Interface
	count    int
	log      logrus.FieldLogger
}

// Option configures a Prober.
type Option func(*Prober)

// WithCount sets the echo request count. Values below 1 are ignored.
func WithCount(count int) Option {
	return func(p *Prober) {
		if count > 0 {
			p.count = count
		}
	}
}

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Prober) {
		p.log = log
	}
}

// NewProber creates a Prober that runs commands through executor.
func NewProber(executor podexec.Interface, opts ...Option) *Prober {
	prober := &Prober{
		executor: executor,
		count:    DefaultCount,
		log:      logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(prober)
	}

	return prober
}

// Command returns the ping invocation for target.
func (p *Prober) Command(target netip.Addr) []string {
	return []string{"ping", "-c", strconv.Itoa(p.count), target.String()}
}

// Marker returns the output substring that signals every packet came back.
func (p *Prober) Marker() string {
	return fmt.Sprintf("%d packets transmitted, %d received", p.count, p.count)
}

// Probe pings target from pod. A transport failure is returned as
// ProbeTransportFailure; an executed probe always yields a Result.
func (p *Prober) Probe(ctx context.Context, pod, namespace string, target netip.Addr) (*Result, error) {
	resource := "pod/" + pod

	if !target.IsValid() {
		return nil, verifyerr.New(verifyerr.KindInvalidAddress, resource, namespace, ErrInvalidTarget)
	}

	command := p.Command(target)

	p.log.WithFields(logrus.Fields{
		"resource":  resource,
		"namespace": namespace,
	}).Debugf("exec %s", strings.Join(command, " "))

	execResult, err := p.executor.Exec(ctx, namespace, pod, command)
	if err != nil {
		if verifyerr.IsContextError(err) {
			return nil, verifyerr.New(verifyerr.KindCancelled, resource, namespace, err)
		}

		return nil, verifyerr.New(verifyerr.KindProbeTransportFailure, resource, namespace, err).
			WithOutput(execResult.Output)
	}

	result := &Result{
		Command:   command,
		Output:    execResult.Output,
		ExitCode:  execResult.ExitCode,
		Reachable: strings.Contains(execResult.Output, p.Marker()),
	}

	p.log.WithFields(logrus.Fields{
		"resource":  resource,
		"namespace": namespace,
		"exitCode":  result.ExitCode,
	}).Debugf("probe reachable=%t", result.Reachable)

	return result, nil
}
