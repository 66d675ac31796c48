package podexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/httpstream"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
)

// ErrTransport marks failures to establish or maintain the exec stream.
var ErrTransport = errors.New("exec transport failure")

// ErrEmptyCommand is returned when Exec is called without a command.
var ErrEmptyCommand = errors.New("exec command is empty")

// Result is the outcome of a command that ran to completion.
type Result struct {
	// Output is stdout and stderr interleaved in arrival order.
	Output string
	// ExitCode is the remote process exit status.
	ExitCode int
}

// Interface runs a command in a pod and returns its combined output.
// A non-zero exit status is reported in Result, not as an error.
type Interface interface {
	Exec(ctx context.Context, namespace, pod string, command []string) (Result, error)
}

// StreamFactory builds a remotecommand executor for an exec URL.
type StreamFactory func(config *rest.Config, method string, execURL *url.URL) (remotecommand.Executor, error)

// Executor implements Interface against a live API server.
type Executor struct {
	config     *rest.Config
	restClient rest.Interface
	container  string
	newStream  StreamFactory
}

// Option configures an Executor.
type Option func(*Executor)

// WithContainer targets a specific container instead of the pod default.
func WithContainer(name string) Option {
	return func(e *Executor) {
		e.container = name
	}
}

// WithStreamFactory overrides how exec streams are opened.
func WithStreamFactory(factory StreamFactory) Option {
	return func(e *Executor) {
		e.newStream = factory
	}
}

// NewExecutor creates an Executor for the cluster described by config.
func NewExecutor(config *rest.Config, opts ...Option) (*Executor, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: rest config is nil", ErrTransport)
	}

	restConfig := rest.CopyConfig(config)
	restConfig.APIPath = "/api"
	restConfig.GroupVersion = &corev1.SchemeGroupVersion
	restConfig.NegotiatedSerializer = scheme.Codecs.WithoutConversion()

	restClient, err := rest.RESTClientFor(restConfig)
	if err != nil {
		return nil, fmt.Errorf("create core REST client: %w", err)
	}

	executor := &Executor{
		config:     config,
		restClient: restClient,
		newStream:  NewFallbackStream,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor, nil
}

// Exec runs command in pod and waits for it to finish or for ctx to end.
func (e *Executor) Exec(ctx context.Context, namespace, pod string, command []string) (Result, error) {
	if len(command) == 0 {
		return Result{}, ErrEmptyCommand
	}

	request := e.restClient.Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: e.container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	stream, err := e.newStream(e.config, "POST", request.URL())
	if err != nil {
		return Result{}, fmt.Errorf("%w: open stream to pod %s/%s: %w", ErrTransport, namespace, pod, err)
	}

	var output lockedBuffer

	err = stream.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &output,
		Stderr: &output,
	})
	if err == nil {
		return Result{Output: output.String()}, nil
	}

	var exitErr utilexec.ExitError
	if errors.As(err, &exitErr) && exitErr.Exited() {
		return Result{Output: output.String(), ExitCode: exitErr.ExitStatus()}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{Output: output.String()}, fmt.Errorf("exec in pod %s/%s: %w", namespace, pod, ctxErr)
	}

	return Result{Output: output.String()},
		fmt.Errorf("%w: exec in pod %s/%s: %w", ErrTransport, namespace, pod, err)
}

// NewFallbackStream opens a WebSocket executor that falls back to SPDY on
// upgrade or proxy failures.
func NewFallbackStream(config *rest.Config, method string, execURL *url.URL) (remotecommand.Executor, error) {
	websocket, err := remotecommand.NewWebSocketExecutor(config, method, execURL.String())
	if err != nil {
		return nil, fmt.Errorf("create websocket executor: %w", err)
	}

	spdy, err := remotecommand.NewSPDYExecutor(config, method, execURL)
	if err != nil {
		return nil, fmt.Errorf("create spdy executor: %w", err)
	}

	executor, err := remotecommand.NewFallbackExecutor(websocket, spdy, func(err error) bool {
		return httpstream.IsUpgradeFailure(err) || httpstream.IsHTTPSProxyError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("create fallback executor: %w", err)
	}

	return executor, nil
}

// lockedBuffer lets stdout and stderr copy into one buffer concurrently.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
