package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/netwarden/netwarden/internal/models"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func makeReport(findings []models.Finding) *models.AuditReport {
	var s models.AuditSummary
	s.TotalFindings = len(findings)
	for _, f := range findings {
		switch f.Severity {
		case models.SeverityCritical:
			s.CriticalFindings++
		case models.SeverityHigh:
			s.HighFindings++
		case models.SeverityMedium:
			s.MediumFindings++
		case models.SeverityLow:
			s.LowFindings++
		}
	}
	s.PublicSubnets = 2
	return &models.AuditReport{
		ReportID:    "audit-test",
		GeneratedAt: time.Now().UTC(),
		Profile:     "staging",
		AccountID:   "111122223333",
		Regions:     []string{"us-east-1", "eu-west-1"},
		Summary:     s,
		Findings:    findings,
	}
}

func capture(fn func(w *bytes.Buffer)) string {
	var buf bytes.Buffer
	fn(&buf)
	return buf.String()
}

// inTempDir switches the working directory to a fresh temp directory for the
// duration of the test and returns its path.
func inTempDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return tmp
}

// ── printSummary ─────────────────────────────────────────────────────────────

func TestPrintSummary_Header(t *testing.T) {
	report := makeReport(nil)
	out := capture(func(w *bytes.Buffer) { printSummary(w, report) })

	for _, want := range []string{"111122223333", "staging", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestPrintSummary_TotalsAndPublicSubnets(t *testing.T) {
	findings := []models.Finding{
		{ResourceID: "i-1", Region: "us-east-1", Severity: models.SeverityHigh, ResourceType: models.ResourceEC2Instance},
		{ResourceID: "i-2", Region: "us-east-1", Severity: models.SeverityHigh, ResourceType: models.ResourceEC2Instance},
		{ResourceID: "lb-1", Region: "eu-west-1", Severity: models.SeverityMedium, ResourceType: models.ResourceLoadBalancer},
	}
	report := makeReport(findings)
	out := capture(func(w *bytes.Buffer) { printSummary(w, report) })

	if !strings.Contains(out, "Total Findings:  3") {
		t.Errorf("output missing total findings count\ngot:\n%s", out)
	}
	if !strings.Contains(out, "Public Subnets:  2") {
		t.Errorf("output missing public subnet count\ngot:\n%s", out)
	}
}

func TestPrintSummary_SeverityBreakdown(t *testing.T) {
	findings := []models.Finding{
		{ResourceID: "r-1", Severity: models.SeverityCritical},
		{ResourceID: "r-2", Severity: models.SeverityHigh},
		{ResourceID: "r-3", Severity: models.SeverityHigh},
		{ResourceID: "r-4", Severity: models.SeverityMedium},
		{ResourceID: "r-5", Severity: models.SeverityLow},
	}
	report := makeReport(findings)
	out := capture(func(w *bytes.Buffer) { printSummary(w, report) })

	for _, label := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		if !strings.Contains(out, label) {
			t.Errorf("output missing severity label %q\ngot:\n%s", label, out)
		}
	}
}

func TestPrintSummary_NoFindings_SkipsTypeTable(t *testing.T) {
	report := makeReport(nil)
	out := capture(func(w *bytes.Buffer) { printSummary(w, report) })

	if strings.Contains(out, "Findings by Resource Type") {
		t.Errorf("empty report must not print the resource type section\ngot:\n%s", out)
	}
}

func TestPrintSummary_ResourceTypeCounts(t *testing.T) {
	findings := []models.Finding{
		{ResourceID: "i-1", Severity: models.SeverityHigh, ResourceType: models.ResourceEC2Instance},
		{ResourceID: "i-2", Severity: models.SeverityHigh, ResourceType: models.ResourceEC2Instance},
		{ResourceID: "db-1", Severity: models.SeverityMedium, ResourceType: models.ResourceRDSInstance},
	}
	report := makeReport(findings)
	out := capture(func(w *bytes.Buffer) { printSummary(w, report) })

	if !strings.Contains(out, "Findings by Resource Type") {
		t.Errorf("output missing resource type section\ngot:\n%s", out)
	}
	for _, want := range []string{"EC2_INSTANCE", "RDS_INSTANCE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing resource type %q\ngot:\n%s", want, out)
		}
	}
	// No load balancer findings, so that row must be absent.
	if strings.Contains(out, "LOAD_BALANCER") {
		t.Errorf("output must not list LOAD_BALANCER with zero findings\ngot:\n%s", out)
	}
	// EC2 renders before RDS regardless of finding order.
	if strings.Index(out, "EC2_INSTANCE") > strings.Index(out, "RDS_INSTANCE") {
		t.Errorf("resource types out of order\ngot:\n%s", out)
	}
}

// ── countByResourceType ──────────────────────────────────────────────────────

func TestCountByResourceType_Empty(t *testing.T) {
	got := countByResourceType(nil)
	if len(got) != 0 {
		t.Errorf("want empty map, got %v", got)
	}
}

func TestCountByResourceType_Counts(t *testing.T) {
	findings := []models.Finding{
		{ResourceID: "i-1", ResourceType: models.ResourceEC2Instance},
		{ResourceID: "i-2", ResourceType: models.ResourceEC2Instance},
		{ResourceID: "lb-1", ResourceType: models.ResourceLoadBalancer},
	}
	got := countByResourceType(findings)
	if got[models.ResourceEC2Instance] != 2 {
		t.Errorf("EC2 count: got %d; want 2", got[models.ResourceEC2Instance])
	}
	if got[models.ResourceLoadBalancer] != 1 {
		t.Errorf("LB count: got %d; want 1", got[models.ResourceLoadBalancer])
	}
}

// ── writeReportToFile ─────────────────────────────────────────────────────────

func TestWriteReportToFile_Success(t *testing.T) {
	report := makeReport(nil)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := writeReportToFile(path, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not created: %v", err)
	}
}

func TestWriteReportToFile_InvalidPath(t *testing.T) {
	report := makeReport(nil)
	// Directory does not exist, so the write must fail.
	path := filepath.Join(t.TempDir(), "nonexistent", "report.json")

	if err := writeReportToFile(path, report); err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestWriteReportToFile_ContentMatchesJSON(t *testing.T) {
	findings := []models.Finding{
		{
			ResourceID:   "i-0abc",
			ResourceType: models.ResourceEC2Instance,
			Region:       "us-east-1",
			Severity:     models.SeverityHigh,
			SubnetID:     "subnet-0aa1bb2cc3dd4ee5f",
		},
	}
	report := makeReport(findings)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := writeReportToFile(path, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	var got models.AuditReport
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.AccountID != report.AccountID {
		t.Errorf("account_id: got %q; want %q", got.AccountID, report.AccountID)
	}
	if got.Profile != report.Profile {
		t.Errorf("profile: got %q; want %q", got.Profile, report.Profile)
	}
	if len(got.Findings) != 1 {
		t.Fatalf("findings count: got %d; want 1", len(got.Findings))
	}
	if got.Findings[0].ResourceID != "i-0abc" {
		t.Errorf("finding resource_id: got %q; want i-0abc", got.Findings[0].ResourceID)
	}
	if got.Findings[0].SubnetID != "subnet-0aa1bb2cc3dd4ee5f" {
		t.Errorf("finding subnet_id: got %q; want subnet-0aa1bb2cc3dd4ee5f", got.Findings[0].SubnetID)
	}
	if got.Summary.PublicSubnets != 2 {
		t.Errorf("public_subnets: got %d; want 2", got.Summary.PublicSubnets)
	}
}

// ── loadCLIPolicy ────────────────────────────────────────────────────────────

func TestLoadCLIPolicy_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "policy.yaml")
	policyYAML := "version: 1\nrules:\n  ELB_PUBLIC_SUBNET:\n    severity: low\n"
	if err := os.WriteFile(path, []byte(policyYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadCLIPolicy(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Rules["ELB_PUBLIC_SUBNET"].Severity != "low" {
		t.Errorf("severity override not loaded; got %+v", cfg.Rules)
	}
}

func TestLoadCLIPolicy_ExplicitPathMissing(t *testing.T) {
	if _, err := loadCLIPolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit policy file, got nil")
	}
}

func TestLoadCLIPolicy_NoDefaultFile(t *testing.T) {
	inTempDir(t)

	cfg, err := loadCLIPolicy("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config without a policy file; got %+v", cfg)
	}
}

func TestLoadCLIPolicy_DefaultFilePresent(t *testing.T) {
	tmp := inTempDir(t)

	if err := os.WriteFile(filepath.Join(tmp, "netwarden.yaml"), []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadCLIPolicy("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config loaded from ./netwarden.yaml")
	}
	if cfg.Version != 1 {
		t.Errorf("version: got %d; want 1", cfg.Version)
	}
}

func TestLoadCLIPolicy_DefaultFileInvalid(t *testing.T) {
	tmp := inTempDir(t)

	if err := os.WriteFile(filepath.Join(tmp, "netwarden.yaml"), []byte("version: 99\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadCLIPolicy(""); err == nil {
		t.Error("expected error for invalid default policy, got nil")
	}
}

// ── report s3 flag defaults ──────────────────────────────────────────────────

// TestReportS3Cmd_DateDefaults verifies the --start/--end defaults form a
// valid one day window ending today.
func TestReportS3Cmd_DateDefaults(t *testing.T) {
	cmd := newReportS3Cmd()

	startDef := cmd.Flags().Lookup("start").DefValue
	endDef := cmd.Flags().Lookup("end").DefValue

	start, err := time.Parse("2006-01-02", startDef)
	if err != nil {
		t.Fatalf("default --start %q is not a date: %v", startDef, err)
	}
	end, err := time.Parse("2006-01-02", endDef)
	if err != nil {
		t.Fatalf("default --end %q is not a date: %v", endDef, err)
	}
	if !start.Before(end) {
		t.Errorf("default window reversed: start %s, end %s", startDef, endDef)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Errorf("default window: got %v; want 24h", end.Sub(start))
	}
}

func TestReportS3Cmd_RegionDefault(t *testing.T) {
	cmd := newReportS3Cmd()
	if got := cmd.Flags().Lookup("region").DefValue; got != "us-east-1" {
		t.Errorf("default --region: got %q; want us-east-1", got)
	}
}
