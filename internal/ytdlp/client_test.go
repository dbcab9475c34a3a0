package ytdlp_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mediarelay/internal/ytdlp"
	"mediarelay/internal/ytdlp/ytdlptest"

	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
	"id": "abc",
	"title": "hello",
	"uploader": "someone",
	"duration": 12.5,
	"thumbnail": "https://img.example.com/abc.jpg",
	"view_count": 42,
	"formats": [{"format_id": "22", "ext": "mp4", "width": 1280, "height": 720, "filesize": 1048576, "url": "https://cdn"}],
	"subtitles": {"fr": [{"ext": "vtt"}], "en": [{"ext": "vtt"}]},
	"automatic_captions": {"es": [], "de": []}
}`

func TestDumpJSON_ParsesMetadata(t *testing.T) {
	r := &ytdlptest.Runner{OutputFunc: ytdlptest.JSON(sampleJSON)}
	c := ytdlp.New("", ytdlp.WithRunner(r))

	md, err := c.DumpJSON(context.Background(), "https://example.com/watch?v=abc")
	require.NoError(t, err)
	require.Equal(t, "abc", md.ID)
	require.Equal(t, "hello", md.Title)
	require.Equal(t, 12.5, md.Duration)
	require.NotNil(t, md.ViewCount)
	require.EqualValues(t, 42, *md.ViewCount)
	require.Len(t, md.Formats, 1)
	require.Equal(t, ytdlp.LanguageKeys{"fr", "en"}, md.Subtitles)
	require.Equal(t, ytdlp.LanguageKeys{"es", "de"}, md.AutomaticCaptions)

	calls := r.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "yt-dlp", calls[0].Name)
	require.Equal(t, []string{
		"--dump-single-json", "--no-warnings", "--no-check-certificates", "--prefer-free-formats",
		"https://example.com/watch?v=abc",
	}, calls[0].Args)
}

func TestDumpJSON_WrapsExecError(t *testing.T) {
	r := &ytdlptest.Runner{OutputFunc: func([]string) ([]byte, []byte, error) {
		return []byte("out"), []byte(" ERROR: Unsupported URL \n"), errors.New("exit status 1")
	}}
	c := ytdlp.New("/usr/local/bin/yt-dlp", ytdlp.WithRunner(r))

	_, err := c.DumpJSON(context.Background(), "https://example.com")
	require.Error(t, err)
	var ee *ytdlp.ExecError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "/usr/local/bin/yt-dlp", ee.Cmd)
	require.Equal(t, "ERROR: Unsupported URL", ee.Stderr)
	require.Equal(t, "ERROR: Unsupported URL", ytdlp.Diagnostic(err))
}

func TestDumpJSON_MalformedOutput(t *testing.T) {
	r := &ytdlptest.Runner{OutputFunc: ytdlptest.JSON("not json")}
	c := ytdlp.New("", ytdlp.WithRunner(r))

	_, err := c.DumpJSON(context.Background(), "https://example.com")
	require.ErrorContains(t, err, "parse json")
}

func TestDumpJSON_RequiresURL(t *testing.T) {
	r := &ytdlptest.Runner{}
	c := ytdlp.New("", ytdlp.WithRunner(r))

	_, err := c.DumpJSON(context.Background(), "  ")
	require.Error(t, err)
	require.Empty(t, r.Calls())
}

func TestExtraArgsPrecedeCallArgs(t *testing.T) {
	r := &ytdlptest.Runner{OutputFunc: ytdlptest.JSON("2025.01.01\n")}
	c := ytdlp.New("", ytdlp.WithRunner(r), ytdlp.WithExtraArgs("--force-ipv4"))

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025.01.01", v)
	require.Equal(t, []string{"--force-ipv4", "--version"}, r.Calls()[0].Args)
}

func TestStreamDownload_FormatSelection(t *testing.T) {
	r := &ytdlptest.Runner{StartFunc: func([]string) (ytdlp.Stream, error) {
		return ytdlptest.NewStream(nil, nil), nil
	}}
	c := ytdlp.New("", ytdlp.WithRunner(r))

	_, err := c.StreamDownload(context.Background(), "https://example.com/v", "22")
	require.NoError(t, err)
	_, err = c.StreamDownload(context.Background(), "https://example.com/v", "")
	require.NoError(t, err)

	calls := r.StreamCalls()
	require.Len(t, calls, 2)
	require.Equal(t, []string{"-o", "-", "-f", "22", "https://example.com/v"}, calls[0].Args)
	require.Equal(t, []string{"-o", "-", "https://example.com/v"}, calls[1].Args)
}

func TestStreamSubtitles_Args(t *testing.T) {
	r := &ytdlptest.Runner{StartFunc: func([]string) (ytdlp.Stream, error) {
		return ytdlptest.NewStream(nil, nil), nil
	}}
	c := ytdlp.New("", ytdlp.WithRunner(r))

	_, err := c.StreamSubtitles(context.Background(), "https://example.com/v", ytdlp.SubtitleOptions{Language: "en", Format: "vtt"})
	require.NoError(t, err)
	_, err = c.StreamSubtitles(context.Background(), "https://example.com/v", ytdlp.SubtitleOptions{Language: "es", Format: "srt", Auto: true})
	require.NoError(t, err)

	calls := r.StreamCalls()
	require.Equal(t, []string{
		"--skip-download", "--write-subs", "--sub-langs", "en", "--sub-format", "vtt", "-o", "-", "https://example.com/v",
	}, calls[0].Args)
	require.Equal(t, []string{
		"--skip-download", "--write-subs", "--write-auto-subs", "--sub-langs", "es", "--sub-format", "srt", "-o", "-", "https://example.com/v",
	}, calls[1].Args)

	_, err = c.StreamSubtitles(context.Background(), "https://example.com/v", ytdlp.SubtitleOptions{Format: "srt"})
	require.Error(t, err)
	require.Len(t, r.StreamCalls(), 2)
}

func TestStream_StartFailureIsExecError(t *testing.T) {
	r := &ytdlptest.Runner{StartFunc: func([]string) (ytdlp.Stream, error) {
		return nil, errors.New("executable file not found in $PATH")
	}}
	c := ytdlp.New("", ytdlp.WithRunner(r))

	_, err := c.StreamDownload(context.Background(), "https://example.com/v", "")
	var ee *ytdlp.ExecError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "executable file not found in $PATH", ytdlp.Diagnostic(err))
}

func TestDumpJSON_InfoTimeout(t *testing.T) {
	var deadline time.Time
	r := &ytdlptest.Runner{OutputFunc: ytdlptest.JSON(`{}`)}
	c := ytdlp.New("", ytdlp.WithRunner(deadlineRunner{Runner: r, seen: &deadline}), ytdlp.WithInfoTimeout(time.Minute))

	_, err := c.DumpJSON(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.False(t, deadline.IsZero())
}

type deadlineRunner struct {
	*ytdlptest.Runner
	seen *time.Time
}

func (d deadlineRunner) Output(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	*d.seen, _ = ctx.Deadline()
	return d.Runner.Output(ctx, name, args...)
}

func TestStream_ReadsFakeOutput(t *testing.T) {
	r := &ytdlptest.Runner{StartFunc: func([]string) (ytdlp.Stream, error) {
		return ytdlptest.NewStream([]byte("payload"), nil), nil
	}}
	c := ytdlp.New("", ytdlp.WithRunner(r))

	s, err := c.StreamDownload(context.Background(), "https://example.com/v", "")
	require.NoError(t, err)
	b, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "payload", string(b))
	require.NoError(t, s.Wait())
}
