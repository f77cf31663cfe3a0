package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/policy"
	"github.com/netwarden/netwarden/internal/providers/aws/common"
	"github.com/netwarden/netwarden/internal/providers/aws/costreport"
	awsnetwork "github.com/netwarden/netwarden/internal/providers/aws/network"
	"github.com/netwarden/netwarden/internal/providers/aws/storagemetrics"
	"github.com/netwarden/netwarden/internal/rules"
)

// DefaultEngine is the production implementation of Engine.
// It coordinates data collection, rule evaluation, policy application, and
// report assembly. It never calls the AWS SDK or any external service
// directly.
type DefaultEngine struct {
	provider common.AWSClientProvider
	network  awsnetwork.NetworkCollector
	storage  storagemetrics.StorageMetricsCollector
	costs    costreport.CostReportCollector
	registry rules.RuleRegistry
	policy   *policy.Config
}

// NewDefaultEngine constructs a DefaultEngine wired to the supplied provider,
// collectors, rule registry, and policy config. policyCfg may be nil; the
// engine then runs with all rules enabled and no exemptions.
func NewDefaultEngine(
	provider common.AWSClientProvider,
	network awsnetwork.NetworkCollector,
	storage storagemetrics.StorageMetricsCollector,
	costs costreport.CostReportCollector,
	registry rules.RuleRegistry,
	policyCfg *policy.Config,
) *DefaultEngine {
	return &DefaultEngine{
		provider: provider,
		network:  network,
		storage:  storage,
		costs:    costs,
		registry: registry,
		policy:   policyCfg,
	}
}

// ---------------------------------------------------------------------------
// Network exposure audit
// ---------------------------------------------------------------------------

// RunAudit implements Engine. It loads the requested AWS profile(s),
// discovers regions if not explicitly provided, collects topology and
// public-resource inventory, evaluates all registered rules, applies the
// policy, and returns a fully populated AuditReport.
func (e *DefaultEngine) RunAudit(ctx context.Context, opts AuditOptions) (*models.AuditReport, error) {
	if opts.AllProfiles {
		return e.runAllProfiles(ctx, opts)
	}
	return e.runSingleProfile(ctx, opts)
}

// runSingleProfile executes an audit for one AWS profile and returns the
// resulting report.
func (e *DefaultEngine) runSingleProfile(
	ctx context.Context,
	opts AuditOptions,
) (*models.AuditReport, error) {
	profile, err := e.provider.LoadProfile(ctx, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
	}

	regions, err := e.resolveRegions(ctx, profile, opts.Regions)
	if err != nil {
		return nil, fmt.Errorf("resolve regions for profile %q: %w", profile.ProfileName, err)
	}

	regionData, err := e.network.CollectAll(ctx, profile, e.provider, regions)
	if err != nil {
		return nil, fmt.Errorf("collect network data for profile %q: %w", profile.ProfileName, err)
	}

	findings := e.evaluateAll(regionData, profile.AccountID, profile.ProfileName)
	return e.buildReport(profile.ProfileName, profile.AccountID, regions, findings, regionData), nil
}

// runAllProfiles loads every configured AWS profile, audits each one, and
// merges all findings into a single report. The report-level Profile field is
// set to "multi"; each individual Finding carries its own Profile and AccountID.
// Profile failures are skipped non-fatally; an error is returned only when no
// profile can be audited at all.
func (e *DefaultEngine) runAllProfiles(
	ctx context.Context,
	opts AuditOptions,
) (*models.AuditReport, error) {
	profiles, err := e.provider.LoadAllProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no AWS profiles found")
	}

	var (
		allFindings   []models.Finding
		allRegionData []models.NetworkRegionData
		allRegions    []string
		seenRegions   = make(map[string]struct{})
		audited       int
	)

	for _, profile := range profiles {
		regions, err := e.resolveRegions(ctx, profile, opts.Regions)
		if err != nil {
			logProfileSkip(profile.ProfileName, "region resolution", err)
			continue // skip this profile; others may succeed
		}

		regionData, err := e.network.CollectAll(ctx, profile, e.provider, regions)
		if err != nil {
			logProfileSkip(profile.ProfileName, "network collection", err)
			continue
		}
		audited++

		allFindings = append(allFindings, e.evaluateAll(regionData, profile.AccountID, profile.ProfileName)...)
		allRegionData = append(allRegionData, regionData...)

		for _, r := range regions {
			if _, seen := seenRegions[r]; !seen {
				seenRegions[r] = struct{}{}
				allRegions = append(allRegions, r)
			}
		}
	}

	if audited == 0 {
		return nil, fmt.Errorf("all profiles failed; no data collected")
	}

	return e.buildReport("multi", "", allRegions, allFindings, allRegionData), nil
}

// logProfileSkip records a non-fatal per-profile failure in multi-profile
// runs. The run continues with the remaining profiles.
func logProfileSkip(profile, stage string, err error) {
	logrus.WithFields(logrus.Fields{
		"profile": profile,
		"stage":   stage,
	}).WithError(err).Warn("skipping profile")
}

// resolveRegions returns the explicit region list when provided, otherwise
// calls GetActiveRegions to discover opted-in regions for the profile.
func (e *DefaultEngine) resolveRegions(
	ctx context.Context,
	profile *common.ProfileConfig,
	explicit []string,
) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	return e.provider.GetActiveRegions(ctx, profile)
}

// evaluateAll applies every registered rule to each region's collected data
// and returns the merged findings slice.
func (e *DefaultEngine) evaluateAll(
	regionData []models.NetworkRegionData,
	accountID, profile string,
) []models.Finding {
	var findings []models.Finding
	for i := range regionData {
		rctx := rules.RuleContext{
			AccountID:  accountID,
			Profile:    profile,
			RegionData: &regionData[i],
			Policy:     e.policy,
		}
		findings = append(findings, e.registry.EvaluateAll(rctx)...)
	}
	return findings
}

// buildReport assembles the final AuditReport. The policy is applied first
// (dropping exempt and disabled-rule findings, overriding severities), then
// findings are sorted: HIGH before MEDIUM before LOW, ties broken by
// ResourceID so parallel collection order never leaks into the report.
func (e *DefaultEngine) buildReport(
	profile, accountID string,
	regions []string,
	findings []models.Finding,
	regionData []models.NetworkRegionData,
) *models.AuditReport {
	findings = policy.ApplyPolicy(findings, e.policy)
	sortFindings(findings)

	summary := computeSummary(findings)
	summary.PublicSubnets = countPublicSubnets(regionData)

	return &models.AuditReport{
		ReportID:    fmt.Sprintf("audit-%d", time.Now().UnixNano()),
		GeneratedAt: time.Now().UTC(),
		Profile:     profile,
		AccountID:   accountID,
		Regions:     regions,
		Summary:     summary,
		Findings:    findings,
		RegionData:  regionData,
	}
}

// severityRank maps Severity values to sort keys (lower = higher priority).
var severityRank = map[models.Severity]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
	models.SeverityLow:      3,
	models.SeverityInfo:     4,
}

// sortFindings sorts findings in-place: severity descending (CRITICAL first),
// then ResourceID ascending within the same severity.
func sortFindings(findings []models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		ri := severityRank[findings[i].Severity]
		rj := severityRank[findings[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return findings[i].ResourceID < findings[j].ResourceID
	})
}

// computeSummary aggregates finding counts across all severity levels.
func computeSummary(findings []models.Finding) models.AuditSummary {
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
	return s
}

// countPublicSubnets returns the number of distinct public subnets seen
// across all audited regions. Subnet IDs are region-unique, so a plain set
// over all regions is exact.
func countPublicSubnets(regionData []models.NetworkRegionData) int {
	seen := make(map[string]struct{})
	for _, rd := range regionData {
		for _, id := range rd.PublicSubnets {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// ---------------------------------------------------------------------------
// S3 storage metrics report
// ---------------------------------------------------------------------------

// RunBucketMetricsReport implements Engine. It collects per-bucket object
// counts and sizes for the requested profile(s) in one region. In
// all-profiles mode a failing profile is skipped; an error is returned only
// when no profile can be reported at all.
func (e *DefaultEngine) RunBucketMetricsReport(
	ctx context.Context,
	opts BucketMetricsOptions,
) (*models.BucketMetricsReport, error) {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	start, end, err := effectiveWindow(opts.Start, opts.End)
	if err != nil {
		return nil, err
	}

	report := &models.BucketMetricsReport{
		Region:      region,
		WindowStart: start.Format("2006-01-02"),
		WindowEnd:   end.Format("2006-01-02"),
	}

	if !opts.AllProfiles {
		profile, err := e.provider.LoadProfile(ctx, opts.Profile)
		if err != nil {
			return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
		}
		buckets, err := e.collectProfileBuckets(ctx, profile, region, start, end)
		if err != nil {
			return nil, err
		}
		report.Profiles = append(report.Profiles, *buckets)
		return report, nil
	}

	profiles, err := e.provider.LoadAllProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no AWS profiles found")
	}

	for _, profile := range profiles {
		buckets, err := e.collectProfileBuckets(ctx, profile, region, start, end)
		if err != nil {
			logProfileSkip(profile.ProfileName, "bucket metrics", err)
			continue // skip this profile; others may succeed
		}
		report.Profiles = append(report.Profiles, *buckets)
	}
	if len(report.Profiles) == 0 {
		return nil, fmt.Errorf("all profiles failed; no bucket metrics collected")
	}
	return report, nil
}

// collectProfileBuckets gathers one profile's bucket metrics in region.
func (e *DefaultEngine) collectProfileBuckets(
	ctx context.Context,
	profile *common.ProfileConfig,
	region string,
	start, end time.Time,
) (*models.ProfileBucketMetrics, error) {
	cfg := e.provider.ConfigForRegion(profile, region)
	buckets, err := e.storage.CollectProfileMetrics(ctx, cfg, region, start, end)
	if err != nil {
		return nil, fmt.Errorf("collect bucket metrics for profile %q: %w", profile.ProfileName, err)
	}
	return &models.ProfileBucketMetrics{
		Profile:   profile.ProfileName,
		AccountID: profile.AccountID,
		Buckets:   buckets,
	}, nil
}

// effectiveWindow fills zero start/end values with the default reporting
// window: start of yesterday through the end of today, UTC.
func effectiveWindow(start, end time.Time) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	if start.IsZero() {
		y := now.AddDate(0, 0, -1)
		start = time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC)
	}
	if end.IsZero() {
		end = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("metric window end %s is before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return start, end, nil
}

// ---------------------------------------------------------------------------
// Cost-by-tag report
// ---------------------------------------------------------------------------

// RunTagCostReport implements Engine. Cost Explorer is a global service, so
// a single profile is loaded and the collector pins its own us-east-1 client.
func (e *DefaultEngine) RunTagCostReport(
	ctx context.Context,
	opts TagCostOptions,
) (*models.TagCostReport, error) {
	profile, err := e.provider.LoadProfile(ctx, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
	}

	report, err := e.costs.CollectTagCosts(ctx, profile.Config, opts.TagKey, opts.DaysBack)
	if err != nil {
		return nil, fmt.Errorf("collect tag costs for profile %q: %w", profile.ProfileName, err)
	}
	return report, nil
}
