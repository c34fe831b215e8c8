package bundle

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/runner"
)

type fakeRunner struct {
	stdout string
	err    error
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, _ runner.RunOptions) (runner.RunResult, error) {
	f.calls = append(f.calls, append([]string{command}, args...))
	return runner.RunResult{Stdout: []byte(f.stdout), Stderr: []byte("could not find")}, f.err
}

func TestUsage_LastUsed(t *testing.T) {
	r := &fakeRunner{stdout: "2026-10-12 08:30:00 +0000"}
	got, err := NewUsage(r).LastUsed(context.Background(), "/Applications/Example.app")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 10, 12, 8, 30, 0, 0, time.UTC)))
	assert.Equal(t, [][]string{{"mdls", "-raw", "-name", "kMDItemLastUsedDate", "/Applications/Example.app"}}, r.calls)
}

func TestUsage_LastUsedErrors(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		notFound bool
	}{
		{name: "never launched", runner: &fakeRunner{stdout: "(null)"}, notFound: true},
		{name: "empty output", runner: &fakeRunner{stdout: "\n"}, notFound: true},
		{name: "unparsable date", runner: &fakeRunner{stdout: "yesterday"}},
		{name: "mdls fails", runner: &fakeRunner{err: stderrors.New("exit status 1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUsage(tt.runner).LastUsed(context.Background(), "/Applications/Example.app")
			require.Error(t, err)
			assert.Equal(t, tt.notFound, stderrors.Is(err, errors.ErrNotFound))
		})
	}
}
