package storagemetrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/netwarden/netwarden/internal/models"
)

// StorageMetricsCollector gathers S3 storage metrics from CloudWatch and
// converts them into internal models. It must not format output or decide
// which profiles to cover; the engine orchestrates that.
//
// All implementations must use the AWS SDK v2 only.
type StorageMetricsCollector interface {
	// CollectProfileMetrics resolves the buckets the profile owns in region
	// and fetches the object-count and size metrics for each over the
	// [start, end] window. Buckets whose location lookup fails are skipped;
	// buckets without datapoints are returned with the Has*Data flags unset.
	CollectProfileMetrics(
		ctx context.Context,
		cfg aws.Config,
		region string,
		start, end time.Time,
	) ([]models.BucketMetrics, error)
}
