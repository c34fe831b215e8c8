// Package process finds, terminates and relaunches running application
// instances.
package process

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/model"
	"github.com/glorpus-work/freshen/pkg/runner"
)

// pgrep exits 1 when no process matched.
const pgrepNoMatch = 1

// Controller implements the engine's process handling with pgrep and
// SIGKILL.
type Controller struct {
	runner runner.Runner
	kill   func(pid int) error
	self   int
	goos   string
}

// NewController returns a Controller running commands through r.
func NewController(r runner.Runner) *Controller {
	if r == nil {
		r = runner.CmdRunner{}
	}
	return &Controller{
		runner: r,
		kill:   forceKill,
		self:   os.Getpid(),
		goos:   runtime.GOOS,
	}
}

// Running returns the PIDs whose command line matches app's process pattern,
// excluding the current process.
func (c *Controller) Running(ctx context.Context, app *model.Application) ([]int, error) {
	pattern := app.Matcher()
	if pattern == "" {
		return nil, nil
	}

	res, err := c.runner.Run(ctx, "pgrep", []string{"-f", pattern}, runner.RunOptions{})
	if err != nil {
		if runner.ExitCode(err) == pgrepNoMatch {
			return nil, nil
		}
		return nil, fmt.Errorf("pgrep %q: %s", pattern, runner.Describe(err, res))
	}

	var pids []int
	for _, field := range strings.Fields(string(res.Stdout)) {
		pid, convErr := strconv.Atoi(field)
		if convErr != nil || pid == c.self {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// TerminateRunning force-kills every running instance of app and reports
// whether any instance was found.
func (c *Controller) TerminateRunning(ctx context.Context, app *model.Application) (bool, error) {
	pids, err := c.Running(ctx, app)
	if err != nil {
		return false, err
	}
	if len(pids) == 0 {
		return false, nil
	}

	for _, pid := range pids {
		if err := c.kill(pid); err != nil {
			return true, fmt.Errorf("kill %d: %w", pid, err)
		}
		logger.Debug("Terminated running instance", logger.Fields{"app": app.ID, "pid": pid})
	}
	return true, nil
}

// Relaunch opens the installed bundle again.
func (c *Controller) Relaunch(ctx context.Context, installPath string) error {
	opener := "xdg-open"
	if c.goos == "darwin" {
		opener = "open"
	}
	res, err := c.runner.Run(ctx, opener, []string{installPath}, runner.RunOptions{})
	if err != nil {
		return fmt.Errorf("%s %s: %s", opener, installPath, runner.Describe(err, res))
	}
	return nil
}
