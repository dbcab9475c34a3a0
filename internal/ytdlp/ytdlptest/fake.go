// Package ytdlptest provides an in-memory stand-in for the yt-dlp binary.
package ytdlptest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"mediarelay/internal/ytdlp"
)

// Call records one invocation made through Runner.
type Call struct {
	Name   string
	Args   []string
	Stream bool
}

// Runner implements ytdlp.Runner. Unset funcs fail the invocation.
type Runner struct {
	OutputFunc func(args []string) (stdout []byte, stderr []byte, err error)
	StartFunc  func(args []string) (ytdlp.Stream, error)

	mu    sync.Mutex
	calls []Call
}

var _ ytdlp.Runner = (*Runner)(nil)

func (r *Runner) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a copy of the recorded invocations.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// StreamCalls returns only the streaming invocations.
func (r *Runner) StreamCalls() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Stream {
			out = append(out, c)
		}
	}
	return out
}

func (r *Runner) Output(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.record(Call{Name: name, Args: args})
	if r.OutputFunc == nil {
		return nil, []byte("no output configured"), errors.New("exit status 1")
	}
	return r.OutputFunc(args)
}

func (r *Runner) Start(_ context.Context, name string, args ...string) (ytdlp.Stream, error) {
	r.record(Call{Name: name, Args: args, Stream: true})
	if r.StartFunc == nil {
		return nil, errors.New("no stream configured")
	}
	return r.StartFunc(args)
}

// JSON returns an OutputFunc that always prints doc.
func JSON(doc string) func([]string) ([]byte, []byte, error) {
	return func([]string) ([]byte, []byte, error) {
		return []byte(doc), nil, nil
	}
}

// Stream is a canned ytdlp.Stream.
type Stream struct {
	r       io.Reader
	waitErr error

	mu     sync.Mutex
	closed bool
}

// NewStream returns a stream that yields data and then reports waitErr.
func NewStream(data []byte, waitErr error) *Stream {
	return &Stream{r: bytes.NewReader(data), waitErr: waitErr}
}

func (s *Stream) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stream) Wait() error { return s.waitErr }

// ArgValue returns the value following flag in args.
func ArgValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// HasArg reports whether flag appears in args.
func HasArg(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
