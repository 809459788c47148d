package email

import (
	"strings"
	"testing"
)

func TestRenderVisitScheduled(t *testing.T) {
	out, err := renderEmailTemplate("visit_scheduled.html", newVisitEmailData("Your visit is booked", VisitDetails{
		CustomerName: "Ada <script>",
		VisitType:    "pickup",
		Date:         "2025-06-04",
		Window:       "Morning (8-11)",
		Address:      "1 Main St",
		ItemCount:    3,
		PriceCents:   6_400,
		ManageURL:    "https://app.example.com/visits/recV1",
	}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Morning (8-11)", "$64.00", "Manage your visit", "Ada &lt;script&gt;"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderOpsAlert(t *testing.T) {
	out, err := renderEmailTemplate("ops_alert.html", opsAlertEmailData{
		baseEmailData: baseEmailData{Title: "Billing activation failed", Heading: "Billing activation failed"},
		Message:       "customer recC1",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "customer recC1") {
		t.Fatal("message missing")
	}
}
