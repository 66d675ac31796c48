package helm

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// stderrCaptureMu serializes process-wide stderr redirection.
var stderrCaptureMu sync.Mutex //nolint:gochecknoglobals // guards os.Stderr swaps

// runWithSilencedStderr runs operation with os.Stderr captured. Captured
// output is appended to the error when operation fails and dropped otherwise.
func runWithSilencedStderr(operation func() (any, error)) (any, error) {
	readPipe, writePipe, pipeErr := os.Pipe()
	if pipeErr != nil {
		return operation()
	}

	stderrCaptureMu.Lock()
	defer stderrCaptureMu.Unlock()

	originalStderr := os.Stderr

	var (
		captured  bytes.Buffer
		waitGroup sync.WaitGroup
	)

	waitGroup.Add(1)

	go func() {
		defer waitGroup.Done()

		_, _ = io.Copy(&captured, readPipe)
	}()

	os.Stderr = writePipe

	result, runErr := operation()

	_ = writePipe.Close()

	waitGroup.Wait()

	_ = readPipe.Close()
	os.Stderr = originalStderr

	if runErr != nil {
		logs := strings.TrimSpace(captured.String())
		if logs != "" {
			runErr = fmt.Errorf("%w: %s", runErr, logs)
		}
	}

	return result, runErr
}
