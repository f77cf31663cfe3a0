package costreport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/netwarden/netwarden/internal/models"
)

// DefaultTagKey is the cost allocation tag the report groups by when the
// caller does not pick one. It matches the tag the launch tagger writes, so
// the default report answers "what does each IAM user's infrastructure cost".
const DefaultTagKey = "IAM User Name"

// CostReportCollector gathers tag-attributed spend from Cost Explorer.
//
// All implementations must use the AWS SDK v2 only.
type CostReportCollector interface {
	// CollectTagCosts returns spend over the last daysBack days grouped by
	// the values of tagKey. daysBack defaults to 30 when zero or negative.
	CollectTagCosts(
		ctx context.Context,
		cfg aws.Config,
		tagKey string,
		daysBack int,
	) (*models.TagCostReport, error)
}

// DefaultCostReportCollector is the production implementation of
// CostReportCollector.
//
// Inject a custom ceClientFactory via NewDefaultCostReportCollectorWithFactory
// to replace the real Cost Explorer client with a stub in unit tests.
type DefaultCostReportCollector struct {
	factory ceClientFactory
}

// NewDefaultCostReportCollector returns a collector backed by the real AWS SDK.
func NewDefaultCostReportCollector() *DefaultCostReportCollector {
	return &DefaultCostReportCollector{factory: newDefaultCEClient}
}

// NewDefaultCostReportCollectorWithFactory returns a collector that uses f to
// create its Cost Explorer client. Pass a stub factory in tests.
func NewDefaultCostReportCollectorWithFactory(f ceClientFactory) *DefaultCostReportCollector {
	return &DefaultCostReportCollector{factory: f}
}

// CollectTagCosts implements CostReportCollector.
func (d *DefaultCostReportCollector) CollectTagCosts(
	ctx context.Context,
	cfg aws.Config,
	tagKey string,
	daysBack int,
) (*models.TagCostReport, error) {
	if tagKey == "" {
		tagKey = DefaultTagKey
	}
	start, end := billingDateRange(effectiveDaysBack(daysBack))
	return collectTagCosts(ctx, d.factory(cfg), tagKey, start, end)
}

// effectiveDaysBack returns daysBack if positive, otherwise the default of 30.
func effectiveDaysBack(daysBack int) int {
	if daysBack > 0 {
		return daysBack
	}
	return 30
}

// billingDateRange returns start and end dates for a Cost Explorer query.
// end is today (UTC); start is daysBack days ago. Format: "2006-01-02".
func billingDateRange(daysBack int) (start, end string) {
	now := time.Now().UTC()
	end = now.Format("2006-01-02")
	start = now.AddDate(0, 0, -daysBack).Format("2006-01-02")
	return
}
