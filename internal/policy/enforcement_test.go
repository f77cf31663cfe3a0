package policy

import (
	"testing"

	"github.com/netwarden/netwarden/internal/models"
)

func TestShouldFail(t *testing.T) {
	cfg := &Config{
		Version:     1,
		Enforcement: EnforcementConfig{FailOnSeverity: "high"},
	}

	high := []models.Finding{auditFinding("EC2_PUBLIC_SUBNET", "i-0aaa", "subnet-app", models.SeverityHigh)}
	if !ShouldFail(high, cfg) {
		t.Error("HIGH finding must trip a high threshold (case-insensitive)")
	}

	medium := []models.Finding{auditFinding("ELB_PUBLIC_SUBNET", "arn:lb", "subnet-app", models.SeverityMedium)}
	if ShouldFail(medium, cfg) {
		t.Error("MEDIUM finding must not trip a high threshold")
	}

	if ShouldFail(high, nil) {
		t.Error("nil policy never fails the run")
	}
	if ShouldFail(nil, cfg) {
		t.Error("no findings never fails the run")
	}
}

func TestShouldFail_UnknownThreshold(t *testing.T) {
	cfg := &Config{
		Version:     1,
		Enforcement: EnforcementConfig{FailOnSeverity: "SEVERE"},
	}
	findings := []models.Finding{auditFinding("EC2_PUBLIC_SUBNET", "i-0aaa", "subnet-app", models.SeverityCritical)}
	if ShouldFail(findings, cfg) {
		t.Error("unrecognised threshold must never fail the run")
	}
}

func TestShouldFail_CriticalTripsHighThreshold(t *testing.T) {
	cfg := &Config{
		Version:     1,
		Enforcement: EnforcementConfig{FailOnSeverity: "HIGH"},
	}
	findings := []models.Finding{auditFinding("RDS_PUBLIC_SUBNET", "orders-db", "subnet-app", models.SeverityCritical)}
	if !ShouldFail(findings, cfg) {
		t.Error("CRITICAL finding must trip a HIGH threshold")
	}
}
