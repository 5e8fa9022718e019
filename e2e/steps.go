package e2e

import (
	"github.com/cucumber/godog"

	"fides/e2e/steps/common"
	"fides/e2e/steps/consent"
	"fides/e2e/steps/verification"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register consent-registry steps
	consent.RegisterSteps(ctx, tc)

	// Register verification-registry steps
	verification.RegisterSteps(ctx, tc)
}
