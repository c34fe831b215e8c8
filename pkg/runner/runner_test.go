package runner

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdRunner_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	var streamed strings.Builder
	res, err := CmdRunner{}.Run(context.Background(), "sh", []string{"-c", "read line; echo out:$line; echo err >&2"}, RunOptions{
		Stdin:  strings.NewReader("hello\n"),
		Stdout: &streamed,
	})
	require.NoError(t, err)
	assert.Equal(t, "out:hello\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.Equal(t, "out:hello\n", streamed.String())
}

func TestCmdRunner_ExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	res, err := CmdRunner{}.Run(context.Background(), "sh", []string{"-c", "echo broken >&2; exit 3"}, RunOptions{})
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
	assert.Contains(t, Describe(err, res), "broken")
}

func TestExitCode_NotAnExitError(t *testing.T) {
	assert.Equal(t, -1, ExitCode(errors.New("plain")))
	assert.Equal(t, -1, ExitCode(nil))
}

func TestDescribe_NoStderr(t *testing.T) {
	err := errors.New("exit status 1")
	assert.Equal(t, "exit status 1", Describe(err, RunResult{}))
}
