package policy

import (
	"testing"

	"github.com/netwarden/netwarden/internal/models"
)

func auditFinding(ruleID, resourceID, subnetID string, sev models.Severity) models.Finding {
	return models.Finding{
		RuleID:     ruleID,
		ResourceID: resourceID,
		SubnetID:   subnetID,
		Severity:   sev,
	}
}

func TestApplyPolicy(t *testing.T) {
	cfg, err := LoadPolicy(writePolicy(t, samplePolicy))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	findings := []models.Finding{
		auditFinding("EC2_PUBLIC_SUBNET", "i-0aaa", "subnet-app", models.SeverityHigh),
		auditFinding("EC2_PUBLIC_SUBNET", "i-bastion", "subnet-app", models.SeverityHigh),  // exempt resource
		auditFinding("EC2_PUBLIC_SUBNET", "i-0bbb", "subnet-dmz01", models.SeverityHigh),   // exempt subnet
		auditFinding("ELB_PUBLIC_SUBNET", "arn:lb", "subnet-app", models.SeverityMedium),   // disabled rule
		auditFinding("RDS_PUBLIC_SUBNET", "orders-db", "subnet-app", models.SeverityMedium), // severity override
	}

	got := ApplyPolicy(findings, cfg)
	if len(got) != 2 {
		t.Fatalf("findings after policy: got %d; want 2 (%+v)", len(got), got)
	}
	if got[0].ResourceID != "i-0aaa" {
		t.Errorf("first survivor: got %s", got[0].ResourceID)
	}
	if got[1].RuleID != "RDS_PUBLIC_SUBNET" || got[1].Severity != models.SeverityCritical {
		t.Errorf("severity override not applied: %+v", got[1])
	}
}

func TestApplyPolicy_NilConfig(t *testing.T) {
	findings := []models.Finding{auditFinding("EC2_PUBLIC_SUBNET", "i-0aaa", "subnet-app", models.SeverityHigh)}
	got := ApplyPolicy(findings, nil)
	if len(got) != 1 {
		t.Errorf("nil policy must pass findings through, got %d", len(got))
	}
}
