package verification

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	LastStatus() int
	GetResponseField(field string) (interface{}, error)
	GetAccessToken() string
}

// RegisterSteps registers verification-flow step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	ctx.Step(`^I am authenticated as user "([^"]*)"$`, steps.authenticateAs)
	ctx.Step(`^I request a verification token$`, steps.requestToken)
	ctx.Step(`^I save an OCR preview with NIK "([^"]*)" and name "([^"]*)"$`, steps.saveOCRPreview)
	ctx.Step(`^I fetch the verification result$`, steps.fetchResult)
	ctx.Step(`^I check the verification status of user "([^"]*)"$`, steps.checkStatus)
	ctx.Step(`^the verification status should be "([^"]*)"$`, steps.statusShouldBe)
}

type verificationSteps struct {
	tc TestContext

	sdkToken  string
	requestID string
}

func (s *verificationSteps) authenticateAs(ctx context.Context, userID string) error {
	// TODO: obtain a token from the auth service once the e2e environment
	// exposes one; for now the token is minted by the harness setup.
	return godog.ErrPending
}

func (s *verificationSteps) requestToken(ctx context.Context) error {
	if err := s.tc.POST("/api/ekyc/token", nil); err != nil {
		return err
	}
	tok, err := s.tc.GetResponseField("sdkToken")
	if err != nil {
		return err
	}
	s.sdkToken = fmt.Sprintf("%v", tok)
	if reqID, err := s.tc.GetResponseField("requestId"); err == nil {
		s.requestID = fmt.Sprintf("%v", reqID)
	}
	return nil
}

func (s *verificationSteps) saveOCRPreview(ctx context.Context, nik, name string) error {
	body := map[string]interface{}{
		"sdkToken":  s.sdkToken,
		"requestId": s.requestID,
		"ocrData": map[string]interface{}{
			"nik":  nik,
			"nama": name,
		},
	}
	return s.tc.POST("/api/ekyc/save-ocr-preview", body)
}

func (s *verificationSteps) fetchResult(ctx context.Context) error {
	return s.tc.POST("/api/ekyc/result", map[string]interface{}{
		"sdkToken": s.sdkToken,
	})
}

func (s *verificationSteps) checkStatus(ctx context.Context, userID string) error {
	return s.tc.GET("/api/ekyc/verification-status/"+userID, nil)
}

func (s *verificationSteps) statusShouldBe(ctx context.Context, expected string) error {
	v, err := s.tc.GetResponseField("verificationStatus")
	if err != nil {
		return err
	}
	if fmt.Sprintf("%v", v) != expected {
		return fmt.Errorf("expected verification status %q, got %v", expected, v)
	}
	return nil
}
