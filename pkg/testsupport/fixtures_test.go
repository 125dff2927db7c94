package testsupport

import (
	"testing"

	"github.com/goliatone/go-endpointschema/pkg/validation"
)

func TestWebhookFixtureMatchesTestdata(t *testing.T) {
	t.Parallel()

	got := LoadSchema(t, "testdata/webhook.yaml")
	if diff := CompareGolden(WebhookSchema(), got); diff != "" {
		t.Fatalf("fixture mismatch (-want +got):\n%s", diff)
	}
}

func TestWebhookFixtureIsValid(t *testing.T) {
	t.Parallel()

	result := validation.Schema(WebhookSchema())
	if !result.Valid {
		t.Fatalf("fixture must validate: %v", result.Issues)
	}
}
