package verification

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string) error
	LastStatus() int
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers verification-registry step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	ctx.Step(`^the admin adds verifier "([^"]*)"$`, steps.addVerifier)
	ctx.Step(`^I submit identity data with name "([^"]*)" and document hash "([^"]*)"$`, steps.submitIdentityData)
	ctx.Step(`^verifier approves user "([^"]*)"$`, steps.verifyUser)
	ctx.Step(`^verifier rejects user "([^"]*)"$`, steps.rejectUser)

	ctx.Step(`^user "([^"]*)" should have verification status "([^"]*)"$`, steps.userShouldHaveStatus)
	ctx.Step(`^user "([^"]*)" should be verified$`, steps.userShouldBeVerified)
	ctx.Step(`^user "([^"]*)" should not be verified$`, steps.userShouldNotBeVerified)
}

type verificationSteps struct {
	tc TestContext
}

func (s *verificationSteps) addVerifier(ctx context.Context, verifier string) error {
	return s.tc.POST("/v1/verification/verifiers", map[string]interface{}{"verifier": verifier})
}

func (s *verificationSteps) submitIdentityData(ctx context.Context, name, documentHash string) error {
	body := map[string]interface{}{
		"name":          name,
		"document_hash": documentHash,
		"metadata":      "e2e submission",
	}
	return s.tc.POST("/v1/verification/submissions", body)
}

func (s *verificationSteps) verifyUser(ctx context.Context, user string) error {
	return s.tc.POST(fmt.Sprintf("/v1/verification/users/%s/verify", user), nil)
}

func (s *verificationSteps) rejectUser(ctx context.Context, user string) error {
	return s.tc.POST(fmt.Sprintf("/v1/verification/users/%s/reject", user), nil)
}

func (s *verificationSteps) userShouldHaveStatus(ctx context.Context, user, status string) error {
	if err := s.tc.GET(fmt.Sprintf("/v1/verification/users/%s/status", user)); err != nil {
		return err
	}
	value, err := s.tc.GetResponseField("status")
	if err != nil {
		return err
	}
	if fmt.Sprintf("%v", value) != status {
		return fmt.Errorf("expected status %q for %s, got %v", status, user, value)
	}
	return nil
}

func (s *verificationSteps) userShouldBeVerified(ctx context.Context, user string) error {
	return s.assertVerified(user, true)
}

func (s *verificationSteps) userShouldNotBeVerified(ctx context.Context, user string) error {
	return s.assertVerified(user, false)
}

func (s *verificationSteps) assertVerified(user string, want bool) error {
	if err := s.tc.GET(fmt.Sprintf("/v1/verification/users/%s/verified", user)); err != nil {
		return err
	}
	value, err := s.tc.GetResponseField("verified")
	if err != nil {
		return err
	}
	verified, ok := value.(bool)
	if !ok || verified != want {
		return fmt.Errorf("expected verified=%t for %s, got %v", want, user, value)
	}
	return nil
}
