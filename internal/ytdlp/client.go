package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mediarelay/pkg/logger"

	"go.uber.org/zap"
)

// ExecError describes a failed yt-dlp invocation.
type ExecError struct {
	Cmd      string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Cause    error
}

func (e *ExecError) Error() string {
	cmdline := strings.TrimSpace(e.Cmd + " " + strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		return fmt.Sprintf("ytdlp: command failed (exit %d): %s", e.ExitCode, cmdline)
	}
	return fmt.Sprintf("ytdlp: command failed: %s", cmdline)
}

func (e *ExecError) Unwrap() error { return e.Cause }

// Diagnostic returns the text yt-dlp printed about the failure.
func (e *ExecError) Diagnostic() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Error()
}

// Diagnostic extracts the tool's diagnostic text from any invocation error.
func Diagnostic(err error) string {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Diagnostic()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Runner abstracts process execution so tests can stand in for yt-dlp.
type Runner interface {
	// Output runs the command to completion and returns its buffered output.
	Output(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
	// Start spawns the command and returns as soon as stdout is readable.
	Start(ctx context.Context, name string, args ...string) (Stream, error)
}

// Option configures the client.
type Option func(*Client)

// WithRunner injects a custom runner.
func WithRunner(r Runner) Option {
	return func(c *Client) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithExtraArgs appends args to every invocation, ahead of per-call args.
func WithExtraArgs(args ...string) Option {
	return func(c *Client) {
		c.extraArgs = append(c.extraArgs, args...)
	}
}

// WithInfoTimeout bounds JSON mode invocations. Zero disables the bound.
func WithInfoTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.infoTimeout = d
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	path        string
	extraArgs   []string
	infoTimeout time.Duration
	runner      Runner
}

// New constructs a client for the yt-dlp binary at path ("yt-dlp" when blank).
func New(path string, opts ...Option) *Client {
	c := &Client{
		path:   strings.TrimSpace(path),
		runner: execRunner{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PathOrDefault returns the configured path or "yt-dlp" if unset.
func (c *Client) PathOrDefault() string {
	if c.path == "" {
		return "yt-dlp"
	}
	return c.path
}

func (c *Client) args(args []string) []string {
	full := make([]string, 0, len(c.extraArgs)+len(args))
	full = append(full, c.extraArgs...)
	return append(full, args...)
}

// Version returns `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	args := c.args([]string{"--version"})
	stdout, stderr, err := c.runner.Output(ctx, c.PathOrDefault(), args...)
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// DumpJSON runs yt-dlp to completion and parses the single JSON document it
// prints for url.
func (c *Client) DumpJSON(ctx context.Context, url string) (*Metadata, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("ytdlp: url is required")
	}

	if c.infoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.infoTimeout)
		defer cancel()
	}

	args := c.args([]string{
		"--dump-single-json",
		"--no-warnings",
		"--no-check-certificates",
		"--prefer-free-formats",
		url,
	})

	logger.LogDebug("ytdlp: executing", zap.String("cmd", c.PathOrDefault()), zap.Strings("args", args))
	stdout, stderr, err := c.runner.Output(ctx, c.PathOrDefault(), args...)
	if err != nil {
		return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	raw := bytes.TrimSpace(stdout)
	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, fmt.Errorf("ytdlp: parse json: %w", err)
	}
	return &md, nil
}

// StreamDownload spawns yt-dlp writing the media for url to stdout. An empty
// formatID leaves format selection to yt-dlp.
func (c *Client) StreamDownload(ctx context.Context, url, formatID string) (Stream, error) {
	args := []string{"-o", "-"}
	if formatID != "" {
		args = append(args, "-f", formatID)
	}
	return c.start(ctx, url, args)
}

// SubtitleOptions selects the subtitle track written by StreamSubtitles.
type SubtitleOptions struct {
	Language string
	Format   string
	// Auto also requests automatically generated captions.
	Auto bool
}

// StreamSubtitles spawns yt-dlp writing only the requested subtitle track to
// stdout, without downloading the media itself.
func (c *Client) StreamSubtitles(ctx context.Context, url string, opts SubtitleOptions) (Stream, error) {
	if strings.TrimSpace(opts.Language) == "" {
		return nil, fmt.Errorf("ytdlp: subtitle language is required")
	}

	args := []string{"--skip-download", "--write-subs"}
	if opts.Auto {
		args = append(args, "--write-auto-subs")
	}
	args = append(args, "--sub-langs", opts.Language)
	if opts.Format != "" {
		args = append(args, "--sub-format", opts.Format)
	}
	args = append(args, "-o", "-")
	return c.start(ctx, url, args)
}

func (c *Client) start(ctx context.Context, url string, args []string) (Stream, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("ytdlp: url is required")
	}

	full := c.args(append(args, url))
	logger.LogDebug("ytdlp: starting stream", zap.String("cmd", c.PathOrDefault()), zap.Strings("args", full))
	stream, err := c.runner.Start(ctx, c.PathOrDefault(), full...)
	if err != nil {
		return nil, wrapExecError(c.PathOrDefault(), full, nil, nil, err)
	}
	return stream, nil
}

func wrapExecError(cmd string, args []string, stdout []byte, stderr []byte, cause error) error {
	var existing *ExecError
	if errors.As(cause, &existing) {
		return existing
	}

	exitCode := 0
	var ee *exec.ExitError
	if errors.As(cause, &ee) {
		exitCode = ee.ExitCode()
	}

	return &ExecError{
		Cmd:      cmd,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   strings.TrimSpace(string(stdout)),
		Stderr:   strings.TrimSpace(string(stderr)),
		Cause:    cause,
	}
}
