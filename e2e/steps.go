package e2e

import (
	"github.com/cucumber/godog"

	"ekyc-gateway/e2e/steps/common"
	"ekyc-gateway/e2e/steps/verification"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register verification-flow steps
	verification.RegisterSteps(ctx, tc)
}
