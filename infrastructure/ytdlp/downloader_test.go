package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt2mp3/domain/conversion"
)

// fakeExecutor mimics a yt-dlp run by writing a file and returning a canned outcome
type fakeExecutor struct {
	dir      string
	file     string
	err      error
	block    bool
	gotArgs  []string
	executed bool
}

func (f *fakeExecutor) Run(ctx context.Context, args ...string) (*ytdlp.Result, error) {
	f.executed = true
	f.gotArgs = args
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.file != "" {
		if err := os.WriteFile(filepath.Join(f.dir, f.file), []byte("audio"), 0o600); err != nil {
			return nil, err
		}
	}
	return nil, f.err
}

func newRequest(t *testing.T) *conversion.Request {
	t.Helper()
	req, err := conversion.NewRequest("https://valid.example/watch?v=1", "", "")
	require.NoError(t, err)
	return req
}

func TestDownloader_Success(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{dir: dir, file: "Song.mp3"}

	var gotReq *conversion.Request
	var gotDir string
	d := NewDownloader(WithCommandFactory(func(req *conversion.Request, dir string) Executor {
		gotReq, gotDir = req, dir
		return exec
	}))

	req := newRequest(t)
	info, err := d.Download(context.Background(), req, dir)
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.True(t, exec.executed)
	assert.Equal(t, []string{"https://valid.example/watch?v=1"}, exec.gotArgs)
	assert.Same(t, req, gotReq)
	assert.Equal(t, dir, gotDir)
	assert.Equal(t, conversion.DefaultTitle, info.DisplayTitle(), "no metadata falls back to default title")
	assert.FileExists(t, filepath.Join(dir, "Song.mp3"))
}

func TestDownloader_FailureIsWrapped(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("ERROR: [generic] Unsupported URL")}
	d := NewDownloader(WithCommandFactory(func(*conversion.Request, string) Executor { return exec }))

	_, err := d.Download(context.Background(), newRequest(t), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, conversion.ErrInvocationFailed))
	assert.Contains(t, err.Error(), "Unsupported URL")
}

func TestDownloader_Timeout(t *testing.T) {
	exec := &fakeExecutor{block: true}
	d := NewDownloader(
		WithTimeout(20*time.Millisecond),
		WithCommandFactory(func(*conversion.Request, string) Executor { return exec }),
	)

	_, err := d.Download(context.Background(), newRequest(t), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, conversion.ErrInvocationFailed))
	assert.Contains(t, err.Error(), "timed out")
}

func TestDownloader_CallerCancellation(t *testing.T) {
	exec := &fakeExecutor{block: true}
	d := NewDownloader(WithCommandFactory(func(*conversion.Request, string) Executor { return exec }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Download(ctx, newRequest(t), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, conversion.ErrInvocationFailed))
}

func TestInfoFrom(t *testing.T) {
	title := "Artist - Song"
	duration := 212.5
	extractor := "youtube"

	info := infoFrom(&ytdlp.ExtractedInfo{
		ID:        "abc123",
		Title:     &title,
		Duration:  &duration,
		Extractor: &extractor,
	})

	assert.Equal(t, "abc123", info.ID)
	assert.Equal(t, "Artist - Song", info.Title)
	assert.Equal(t, "youtube", info.Extractor)
	assert.Equal(t, 212.5, info.DurationSeconds)
}

func TestInfoFrom_Empty(t *testing.T) {
	assert.Equal(t, &conversion.SourceInfo{}, infoFrom(nil))
	assert.Equal(t, conversion.DefaultTitle, infoFrom(&ytdlp.ExtractedInfo{}).DisplayTitle())
}

// fakeYtdlp writes a shell script that records its argv one per line and
// prints a single JSON info line, the way yt-dlp does with --dump-json.
func fakeYtdlp(t *testing.T, infoJSON string) (script, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script executable")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	script = filepath.Join(dir, "yt-dlp")
	body := "#!/bin/sh\n" +
		"for a in \"$@\"; do printf '%s\\n' \"$a\" >> '" + argsFile + "'; done\n" +
		"printf '%s\\n' '" + infoJSON + "'\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script, argsFile
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// assertFlag accepts both "--flag value" and "--flag=value" spellings
func assertFlag(t *testing.T, argv []string, flag, value string) {
	t.Helper()
	for i, arg := range argv {
		if arg == flag+"="+value {
			return
		}
		if arg == flag && i+1 < len(argv) && argv[i+1] == value {
			return
		}
	}
	t.Errorf("expected %s %s in argv %q", flag, value, argv)
}

func TestDownloader_InvokesExecutable(t *testing.T) {
	script, argsFile := fakeYtdlp(t, `{"id":"abc123","title":"Song: Title","extractor":"youtube","duration":212.5}`)
	dir := t.TempDir()

	d := NewDownloader(WithExecutable(script), WithFFmpegLocation("/opt/ffmpeg"))
	req, err := conversion.NewRequest("https://valid.example/watch?v=1", "mp3", "192")
	require.NoError(t, err)

	info, err := d.Download(context.Background(), req, dir)
	require.NoError(t, err)

	argv := readArgs(t, argsFile)
	require.NotEmpty(t, argv)
	assertFlag(t, argv, "--format", DefaultFormat)
	assertFlag(t, argv, "--output", filepath.Join(dir, OutputTemplate))
	assertFlag(t, argv, "--audio-format", "mp3")
	assertFlag(t, argv, "--audio-quality", "192")
	assertFlag(t, argv, "--ffmpeg-location", "/opt/ffmpeg")
	for _, flag := range []string{"--extract-audio", "--no-progress", "--no-check-certificates", "--quiet"} {
		assert.Contains(t, argv, flag)
	}
	assert.Equal(t, "https://valid.example/watch?v=1", argv[len(argv)-1], "URL is the last argument")

	assert.Equal(t, "abc123", info.ID)
	assert.Equal(t, "Song: Title", info.Title)
	assert.Equal(t, "youtube", info.Extractor)
	assert.Equal(t, 212.5, info.DurationSeconds)
}

func TestDownloader_NoFFmpegLocationByDefault(t *testing.T) {
	script, argsFile := fakeYtdlp(t, `{"id":"abc123"}`)

	d := NewDownloader(WithExecutable(script))
	_, err := d.Download(context.Background(), newRequest(t), t.TempDir())
	require.NoError(t, err)

	for _, arg := range readArgs(t, argsFile) {
		assert.False(t, strings.HasPrefix(arg, "--ffmpeg-location"), "unexpected %q", arg)
	}
}
