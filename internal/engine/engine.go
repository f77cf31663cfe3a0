package engine

import (
	"context"
	"time"

	"github.com/netwarden/netwarden/internal/models"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatTable ReportFormat = "table"
)

// AuditOptions configures a single network exposure audit run.
// It is the sole input to Engine.RunAudit.
type AuditOptions struct {
	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// AllProfiles, when true, runs the audit across every configured AWS profile.
	AllProfiles bool

	// Regions is an explicit list of AWS regions to audit.
	// When empty the engine discovers and iterates all active regions.
	Regions []string

	// ReportFormat controls how the CLI renders the returned report.
	ReportFormat ReportFormat
}

// BucketMetricsOptions configures an S3 storage metrics report run.
type BucketMetricsOptions struct {
	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// AllProfiles, when true, reports buckets for every configured AWS profile.
	AllProfiles bool

	// Region restricts the report to buckets homed in this region.
	// Defaults to us-east-1 when empty.
	Region string

	// Start and End bound the CloudWatch metric window. Zero values default
	// to the start of yesterday and the end of today (UTC).
	Start time.Time
	End   time.Time
}

// TagCostOptions configures a cost-by-tag report run.
type TagCostOptions struct {
	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// TagKey is the cost allocation tag to group spend by.
	// Defaults to the tag the launch tagger writes when empty.
	TagKey string

	// DaysBack is the lookback window in days. Defaults to 30 when zero.
	DaysBack int
}

// Engine is the central orchestration interface.
// It coordinates provider collection, rule evaluation, and report assembly.
//
// Engine must not call the AWS SDK directly; it delegates to the provider
// and collector interfaces.
type Engine interface {
	// RunAudit collects topology and inventory for the requested profile(s),
	// evaluates the registered rules, and returns the assembled report.
	RunAudit(ctx context.Context, opts AuditOptions) (*models.AuditReport, error)

	// RunBucketMetricsReport gathers per-bucket CloudWatch storage metrics
	// for the requested profile(s) over the configured window.
	RunBucketMetricsReport(ctx context.Context, opts BucketMetricsOptions) (*models.BucketMetricsReport, error)

	// RunTagCostReport breaks down recent spend by the values of one cost
	// allocation tag.
	RunTagCostReport(ctx context.Context, opts TagCostOptions) (*models.TagCostReport, error)
}
