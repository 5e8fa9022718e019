package consent

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

// RegisterSteps registers consent-registry step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &consentSteps{tc: tc}

	ctx.Step(`^I grant consent to "([^"]*)" for type (\d+) with purpose "([^"]*)"$`, steps.grantConsent)
	ctx.Step(`^I grant consent to "([^"]*)" for type (\d+) with purpose "([^"]*)" expiring at height (\d+)$`, steps.grantConsentExpiring)
	ctx.Step(`^I revoke consent from "([^"]*)" for type (\d+)$`, steps.revokeConsent)

	ctx.Step(`^consent from "([^"]*)" to "([^"]*)" for type (\d+) should be active$`, steps.consentShouldBeActive)
	ctx.Step(`^consent from "([^"]*)" to "([^"]*)" for type (\d+) should be inactive$`, steps.consentShouldBeInactive)
	ctx.Step(`^the consent audit log from "([^"]*)" to "([^"]*)" for type (\d+) should hold (\d+) entries$`, steps.auditLogShouldHoldEntries)
}

type consentSteps struct {
	tc TestContext
}

func (s *consentSteps) grantConsent(ctx context.Context, requester string, consentType int, purpose string) error {
	body := map[string]interface{}{
		"requester": requester,
		"type":      consentType,
		"purpose":   purpose,
	}
	return s.tc.POST("/v1/consents/grants", body)
}

func (s *consentSteps) grantConsentExpiring(ctx context.Context, requester string, consentType int, purpose string, expiry int) error {
	body := map[string]interface{}{
		"requester":  requester,
		"type":       consentType,
		"purpose":    purpose,
		"expires_at": expiry,
	}
	return s.tc.POST("/v1/consents/grants", body)
}

func (s *consentSteps) revokeConsent(ctx context.Context, requester string, consentType int) error {
	body := map[string]interface{}{
		"requester": requester,
		"type":      consentType,
	}
	return s.tc.POST("/v1/consents/grants/revoke", body)
}

func (s *consentSteps) consentShouldBeActive(ctx context.Context, user, requester string, consentType int) error {
	return s.assertActive(user, requester, consentType, true)
}

func (s *consentSteps) consentShouldBeInactive(ctx context.Context, user, requester string, consentType int) error {
	return s.assertActive(user, requester, consentType, false)
}

func (s *consentSteps) assertActive(user, requester string, consentType int, want bool) error {
	path := fmt.Sprintf("/v1/consents/users/%s/requesters/%s/types/%d/active", user, requester, consentType)
	if err := s.tc.GET(path); err != nil {
		return err
	}
	value, err := s.tc.GetResponseField("active")
	if err != nil {
		return err
	}
	active, ok := value.(bool)
	if !ok || active != want {
		return fmt.Errorf("expected active=%t for %s->%s type %d, got %v", want, user, requester, consentType, value)
	}
	return nil
}

func (s *consentSteps) auditLogShouldHoldEntries(ctx context.Context, user, requester string, consentType, count int) error {
	path := fmt.Sprintf("/v1/consents/users/%s/requesters/%s/types/%d/log", user, requester, consentType)
	if err := s.tc.GET(path); err != nil {
		return err
	}
	value, err := s.tc.GetResponseField("count")
	if err != nil {
		return err
	}
	got, ok := value.(float64)
	if !ok || int(got) != count {
		return fmt.Errorf("expected %d audit entries, got %v", count, value)
	}
	return nil
}
