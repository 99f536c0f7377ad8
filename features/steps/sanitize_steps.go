//go:build integration

package steps

import (
	"context"
	"fmt"
	"regexp"

	"yt2mp3/domain/conversion"

	"github.com/cucumber/godog"
)

// sanitizeContext holds test state for sanitize scenarios
type sanitizeContext struct {
	result string
}

// SharedSanitizeContext is reset before each scenario via Before hook
var SharedSanitizeContext *sanitizeContext

func InitializeSanitizeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedSanitizeContext = &sanitizeContext{}
		return c, nil
	})

	ctx.Step(`^I sanitize the title "([^"]*)"$`, iSanitizeTheTitle)
	ctx.Step(`^the sanitized name should be "([^"]*)"$`, theSanitizedNameShouldBe)
	ctx.Step(`^the sanitized name should match "([^"]*)"$`, theSanitizedNameShouldMatch)
}

func iSanitizeTheTitle(title string) error {
	SharedSanitizeContext.result = conversion.SanitizeFilename(title)
	return nil
}

func theSanitizedNameShouldBe(want string) error {
	if got := SharedSanitizeContext.result; got != want {
		return fmt.Errorf("expected %q, got %q", want, got)
	}
	return nil
}

func theSanitizedNameShouldMatch(pattern string) error {
	got := SharedSanitizeContext.result
	if !regexp.MustCompile(pattern).MatchString(got) {
		return fmt.Errorf("%q does not match %s", got, pattern)
	}
	return nil
}
