//go:build integration

package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	appconv "yt2mp3/application/conversion"
	"yt2mp3/domain/conversion"
	"yt2mp3/infrastructure/filesystem"
	"yt2mp3/infrastructure/httpapi"
	"yt2mp3/infrastructure/workspace"

	"github.com/cucumber/godog"
)

const producedAudio = "ID3 fake mp3 payload"

// fakeDownloader stands in for yt-dlp and ffmpeg
type fakeDownloader struct {
	mu    sync.Mutex
	file  string
	title string
	fail  bool
	calls int
}

func (f *fakeDownloader) Download(ctx context.Context, req *conversion.Request, dir string) (*conversion.SourceInfo, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.fail {
		return nil, fmt.Errorf("%w: ERROR: Unsupported URL", conversion.ErrInvocationFailed)
	}
	if f.file != "" {
		if err := os.WriteFile(filepath.Join(dir, f.file), []byte(producedAudio), 0o600); err != nil {
			return nil, err
		}
	}
	return &conversion.SourceInfo{Title: f.title}, nil
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// downloadContext holds test state for download scenarios
type downloadContext struct {
	tempRoot   string
	wsRoot     string
	outDir     string
	downloader *fakeDownloader
	server     *httptest.Server
	last       *response
	batch      []*response
}

// SharedDownloadContext is reset before each scenario via Before hook
var SharedDownloadContext *downloadContext

func getDownloadContext() *downloadContext {
	return SharedDownloadContext
}

func InitializeDownloadScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		root, err := os.MkdirTemp("", "yt2mp3-features-")
		if err != nil {
			return c, err
		}
		SharedDownloadContext = &downloadContext{
			tempRoot:   root,
			wsRoot:     filepath.Join(root, "work"),
			outDir:     filepath.Join(root, "out"),
			downloader: &fakeDownloader{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		d := getDownloadContext()
		if d != nil {
			if d.server != nil {
				d.server.Close()
			}
			os.RemoveAll(d.tempRoot)
		}
		SharedDownloadContext = nil
		return c, nil
	})

	ctx.Step(`^the converter is running$`, theConverterIsRunning)
	ctx.Step(`^the tool chain produces "([^"]*)" for a source titled "([^"]*)"$`, theToolChainProducesForASourceTitled)
	ctx.Step(`^the tool chain fails$`, theToolChainFails)
	ctx.Step(`^I request "([^"]*)"$`, iRequest)
	ctx.Step(`^I request a download for "([^"]*)"$`, iRequestADownloadFor)
	ctx.Step(`^I request (\d+) downloads for "([^"]*)" at once$`, iRequestDownloadsAtOnce)
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the header "([^"]*)" should be "([^"]*)"$`, theHeaderShouldBe)
	ctx.Step(`^the response body should be JSON with "([^"]*)" equal to "([^"]*)"$`, theResponseBodyShouldBeJSONWith)
	ctx.Step(`^the delivered file name should match "([^"]*)"$`, theDeliveredFileNameShouldMatch)
	ctx.Step(`^the response body should be the produced audio$`, theResponseBodyShouldBeTheProducedAudio)
	ctx.Step(`^no request workspace should remain$`, noRequestWorkspaceShouldRemain)
	ctx.Step(`^the tool chain should not have been invoked$`, theToolChainShouldNotHaveBeenInvoked)
	ctx.Step(`^every response should have a distinct delivered file name$`, everyResponseShouldHaveADistinctDeliveredFileName)
	ctx.Step(`^the output directory should hold (\d+) files$`, theOutputDirectoryShouldHoldFiles)
}

func theConverterIsRunning() error {
	d := getDownloadContext()
	if err := os.MkdirAll(d.wsRoot, 0o750); err != nil {
		return err
	}
	svc := appconv.NewService(
		workspace.NewManager(d.wsRoot),
		d.downloader,
		filesystem.NewLocator(),
		filesystem.NewOutputStore(d.outDir),
	)
	d.server = httptest.NewServer(httpapi.NewServer(svc).Handler())
	return nil
}

func theToolChainProducesForASourceTitled(file, title string) error {
	d := getDownloadContext()
	d.downloader.file = file
	d.downloader.title = title
	return nil
}

func theToolChainFails() error {
	getDownloadContext().downloader.fail = true
	return nil
}

func fetch(base, path string) (*response, error) {
	resp, err := http.Get(base + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func iRequest(path string) error {
	d := getDownloadContext()
	resp, err := fetch(d.server.URL, path)
	if err != nil {
		return err
	}
	d.last = resp
	return nil
}

func iRequestADownloadFor(sourceURL string) error {
	return iRequest("/api/download?url=" + url.QueryEscape(sourceURL))
}

func iRequestDownloadsAtOnce(n int, sourceURL string) error {
	d := getDownloadContext()
	d.batch = make([]*response, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.batch[i], errs[i] = fetch(d.server.URL, "/api/download?url="+url.QueryEscape(sourceURL))
		}(i)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func theResponseStatusShouldBe(status int) error {
	d := getDownloadContext()
	if d.last.status != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, d.last.status, d.last.body)
	}
	return nil
}

func theHeaderShouldBe(name, value string) error {
	d := getDownloadContext()
	if got := d.last.header.Get(name); got != value {
		return fmt.Errorf("expected header %s %q, got %q", name, value, got)
	}
	return nil
}

func theResponseBodyShouldBeJSONWith(key, value string) error {
	d := getDownloadContext()
	var body map[string]any
	if err := json.Unmarshal(d.last.body, &body); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	if got, _ := body[key].(string); got != value {
		return fmt.Errorf("expected %s %q, got %q", key, value, got)
	}
	return nil
}

func deliveredName(h http.Header) (string, error) {
	_, params, err := mime.ParseMediaType(h.Get("Content-Disposition"))
	if err != nil {
		return "", fmt.Errorf("bad Content-Disposition %q: %w", h.Get("Content-Disposition"), err)
	}
	return params["filename"], nil
}

func theDeliveredFileNameShouldMatch(pattern string) error {
	d := getDownloadContext()
	name, err := deliveredName(d.last.header)
	if err != nil {
		return err
	}
	if !regexp.MustCompile(pattern).MatchString(name) {
		return fmt.Errorf("delivered name %q does not match %s", name, pattern)
	}
	return nil
}

func theResponseBodyShouldBeTheProducedAudio() error {
	d := getDownloadContext()
	if string(d.last.body) != producedAudio {
		return fmt.Errorf("unexpected body %q", d.last.body)
	}
	return nil
}

func noRequestWorkspaceShouldRemain() error {
	d := getDownloadContext()
	entries, err := os.ReadDir(d.wsRoot)
	if err != nil {
		return err
	}
	if len(entries) != 0 {
		return fmt.Errorf("expected no workspaces, found %d", len(entries))
	}
	return nil
}

func theToolChainShouldNotHaveBeenInvoked() error {
	d := getDownloadContext()
	if d.downloader.calls != 0 {
		return fmt.Errorf("tool chain invoked %d times", d.downloader.calls)
	}
	return nil
}

func everyResponseShouldHaveADistinctDeliveredFileName() error {
	d := getDownloadContext()
	seen := make(map[string]bool)
	for _, resp := range d.batch {
		if resp.status != http.StatusOK {
			return fmt.Errorf("expected status 200, got %d", resp.status)
		}
		name, err := deliveredName(resp.header)
		if err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("duplicate delivered name %q", name)
		}
		seen[name] = true
	}
	return nil
}

func theOutputDirectoryShouldHoldFiles(n int) error {
	d := getDownloadContext()
	entries, err := os.ReadDir(d.outDir)
	if err != nil {
		return err
	}
	if len(entries) != n {
		return fmt.Errorf("expected %d files in output directory, found %d", n, len(entries))
	}
	return nil
}
