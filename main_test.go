package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSafely(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		runner   func([]string) int
		wantCode int
		wantErr  string
	}{
		{name: "success", runner: func([]string) int { return 0 }, wantCode: 0},
		{name: "failure", runner: func([]string) int { return 1 }, wantCode: 1},
		{name: "panic", runner: func([]string) int { panic("resolver exploded") }, wantCode: 1, wantErr: "panic recovered: resolver exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var errOut bytes.Buffer

			code := runSafely([]string{"verify"}, tt.runner, &errOut)

			assert.Equal(t, tt.wantCode, code)

			if tt.wantErr != "" {
				assert.Contains(t, errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestRunWithArgsVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, runWithArgs([]string{"--version"}))
}
