package transform

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/logger"
	"github.com/maxkimambo/sitebuild/internal/taskmanager"
)

// Tool is an external command. Args are appended after the command.
type Tool struct {
	Command []string
}

// ToolOutput is what a finished tool run produced.
type ToolOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Run executes the tool with extra args and stdin. A tool that cannot be
// started or exits non-zero returns an ExternalToolError carrying stderr;
// the output is returned in both cases.
func (t *Tool) Run(ctx context.Context, stdin []byte, args ...string) (*ToolOutput, error) {
	if len(t.Command) == 0 {
		return nil, builderrors.NewExternalToolError("", -1, "", errors.New("empty command"))
	}

	argv := append(append([]string{}, t.Command[1:]...), args...)
	cmd := exec.CommandContext(ctx, t.Command[0], argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	logger.Op.WithFields(map[string]interface{}{
		"tool": t.Command[0],
		"args": argv,
	}).Debug("Running external tool")

	wait := taskmanager.FromCallback(func(ctx context.Context, done func(error)) {
		if err := cmd.Start(); err != nil {
			done(err)
			return
		}
		go func() { done(cmd.Wait()) }()
	})
	err := wait(ctx)
	switch {
	case err == nil:
		return &ToolOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
	case ctx.Err() != nil:
		// The process is killed by the context and may still write its buffers.
		return &ToolOutput{ExitCode: -1}, builderrors.NewExternalToolError(t.Command[0], -1, "", ctx.Err())
	}
	return t.failed(&stdout, &stderr, err)
}

func (t *Tool) failed(stdout, stderr *bytes.Buffer, err error) (*ToolOutput, error) {
	out := &ToolOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	out.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	}
	return out, builderrors.NewExternalToolError(t.Command[0], out.ExitCode, stderr.String(), err)
}

// Filter returns a transform that pipes content through the tool: the file
// goes in on stdin and stdout replaces it.
func (t *Tool) Filter() Func {
	return func(ctx context.Context, c *Content) error {
		out, err := t.Run(ctx, c.Data)
		if err != nil {
			return err
		}
		c.Data = out.Stdout
		return nil
	}
}
