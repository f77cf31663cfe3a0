package models

import "time"

// Severity represents the impact level of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// ResourceType identifies the kind of AWS resource a finding refers to.
type ResourceType string

const (
	ResourceEC2Instance  ResourceType = "EC2_INSTANCE"
	ResourceLoadBalancer ResourceType = "LOAD_BALANCER"
	ResourceRDSInstance  ResourceType = "RDS_INSTANCE"
)

// Finding is a single detected public-exposure issue.
// It is the atomic output unit of the rule engine.
type Finding struct {
	ID             string         `json:"id"`
	RuleID         string         `json:"rule_id"`
	ResourceID     string         `json:"resource_id"`
	ResourceType   ResourceType   `json:"resource_type"`
	Region         string         `json:"region"`
	AccountID      string         `json:"account_id"`
	Profile        string         `json:"profile"`
	SubnetID       string         `json:"subnet_id,omitempty"`
	Severity       Severity       `json:"severity"`
	Explanation    string         `json:"explanation"`
	Recommendation string         `json:"recommendation"`
	DetectedAt     time.Time      `json:"detected_at"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// AuditSummary aggregates counts across all findings.
type AuditSummary struct {
	TotalFindings    int `json:"total_findings"`
	CriticalFindings int `json:"critical_findings"`
	HighFindings     int `json:"high_findings"`
	MediumFindings   int `json:"medium_findings"`
	LowFindings      int `json:"low_findings"`
	// PublicSubnets is the total number of distinct public subnets seen
	// across all audited regions.
	PublicSubnets int `json:"public_subnets"`
}

// AuditReport is the top-level output of an audit run.
type AuditReport struct {
	ReportID    string              `json:"report_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Profile     string              `json:"profile"`
	AccountID   string              `json:"account_id"`
	Regions     []string            `json:"regions"`
	Summary     AuditSummary        `json:"summary"`
	Findings    []Finding           `json:"findings"`
	RegionData  []NetworkRegionData `json:"region_data,omitempty"`
}
