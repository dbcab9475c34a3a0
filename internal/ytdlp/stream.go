package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Stream is a running invocation whose stdout is consumed incrementally.
//
// Read returns bytes as the process produces them and io.EOF once it closes
// stdout. Wait must be called after reading finishes (or after Close) and
// reports the process exit status. Close releases stdout early; the process
// then fails on its next write.
type Stream interface {
	io.ReadCloser
	Wait() error
}

// execRunner runs real processes.
type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

func (execRunner) Start(ctx context.Context, name string, args ...string) (Stream, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	p := &process{cmd: cmd, name: name, args: args, stderr: tailBuffer{max: stderrTailSize}}
	cmd.Stderr = &p.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	p.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

// process is the os/exec backed Stream.
type process struct {
	cmd    *exec.Cmd
	name   string
	args   []string
	stdout io.ReadCloser
	stderr tailBuffer

	once    sync.Once
	waitErr error
}

func (p *process) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

func (p *process) Close() error {
	return p.stdout.Close()
}

func (p *process) Wait() error {
	p.once.Do(func() {
		if err := p.cmd.Wait(); err != nil {
			p.waitErr = wrapExecError(p.name, p.args, nil, p.stderr.Bytes(), err)
		}
	})
	return p.waitErr
}

// stderrTailSize bounds the stderr kept per stream; progress output from a
// long download would otherwise grow without limit.
const stderrTailSize = 64 * 1024

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= t.max {
		t.buf = append(t.buf[:0], p[n-t.max:]...)
		return n, nil
	}
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return n, nil
}

// Bytes returns the retained tail.
func (t *tailBuffer) Bytes() []byte { return t.buf }
