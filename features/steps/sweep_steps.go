//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yt2mp3/cmd"
	"yt2mp3/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// sweepContext holds test state for sweep scenarios
type sweepContext struct {
	dir    string
	output *bytes.Buffer
}

// SharedSweepContext is reset before each scenario via Before hook
var SharedSweepContext *sweepContext

func InitializeSweepScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "yt2mp3-sweep-")
		if err != nil {
			return c, err
		}
		SharedSweepContext = &sweepContext{dir: dir, output: &bytes.Buffer{}}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedSweepContext != nil {
			os.RemoveAll(SharedSweepContext.dir)
		}
		SharedSweepContext = nil
		return c, nil
	})

	ctx.Step(`^an output file "([^"]*)" that is (\d+) hours old$`, anOutputFileThatIsHoursOld)
	ctx.Step(`^I sweep files older than "([^"]*)"$`, iSweepFilesOlderThan)
	ctx.Step(`^the output file "([^"]*)" should not exist$`, theOutputFileShouldNotExist)
	ctx.Step(`^the output file "([^"]*)" should exist$`, theOutputFileShouldExist)
	ctx.Step(`^the sweep output should contain "([^"]*)"$`, theSweepOutputShouldContain)
}

func anOutputFileThatIsHoursOld(name string, hours int) error {
	path := filepath.Join(SharedSweepContext.dir, name)
	if err := os.WriteFile(path, []byte("audio"), 0o600); err != nil {
		return err
	}
	mtime := time.Now().Add(-time.Duration(hours) * time.Hour)
	return os.Chtimes(path, mtime, mtime)
}

func iSweepFilesOlderThan(age string) error {
	maxAge, err := time.ParseDuration(age)
	if err != nil {
		return err
	}
	store := filesystem.NewOutputStore(SharedSweepContext.dir)
	return cmd.RunSweepWithDependencies(context.Background(), store, maxAge, SharedSweepContext.output)
}

func theOutputFileShouldNotExist(name string) error {
	if _, err := os.Stat(filepath.Join(SharedSweepContext.dir, name)); !os.IsNotExist(err) {
		return fmt.Errorf("expected %s to be removed", name)
	}
	return nil
}

func theOutputFileShouldExist(name string) error {
	if _, err := os.Stat(filepath.Join(SharedSweepContext.dir, name)); err != nil {
		return fmt.Errorf("expected %s to exist: %w", name, err)
	}
	return nil
}

func theSweepOutputShouldContain(text string) error {
	if !strings.Contains(SharedSweepContext.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, SharedSweepContext.output.String())
	}
	return nil
}
