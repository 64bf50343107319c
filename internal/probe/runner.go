package probe

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner abstracts the compiler invocation for production and tests.
type Runner interface {
	Run(ctx context.Context, compiler string) (io.ReadCloser, error)
}

// ExecRunner runs the compiler in verbose preprocess-only mode on empty input.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, compiler string) (io.ReadCloser, error) {
	cmdArgs := []string{compiler, "-E", "-x", "c++", "-v", "-"}
	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	cmd.Stdin = strings.NewReader("")
	cmd.Stdout = io.Discard
	// The search list is printed on stderr.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &cmdReadCloser{rc: stderr, cmd: cmd}, nil
}

type cmdReadCloser struct {
	rc  io.ReadCloser
	cmd *exec.Cmd
}

func (c *cmdReadCloser) Read(p []byte) (int, error) {
	return c.rc.Read(p)
}

// Close drains remaining output so the compiler can exit, then waits for it.
func (c *cmdReadCloser) Close() error {
	_, _ = io.Copy(io.Discard, c.rc)
	return c.cmd.Wait()
}
