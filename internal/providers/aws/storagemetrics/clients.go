package storagemetrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the SDK operations used by this package.
// The real *s3.Client and *cloudwatch.Client satisfy these automatically.
// Replace any field in metricsClients with a stub struct in unit tests.
// ---------------------------------------------------------------------------

// metricsS3Client covers the S3 operations required for the storage report.
// ListBuckets is account-global; GetBucketLocation resolves each bucket's
// home region so the report can be filtered to one region.
type metricsS3Client interface {
	ListBuckets(
		ctx context.Context,
		params *s3svc.ListBucketsInput,
		optFns ...func(*s3svc.Options),
	) (*s3svc.ListBucketsOutput, error)

	GetBucketLocation(
		ctx context.Context,
		params *s3svc.GetBucketLocationInput,
		optFns ...func(*s3svc.Options),
	) (*s3svc.GetBucketLocationOutput, error)
}

// metricsCWClient covers the CloudWatch operations required for the storage
// report. S3 storage metrics live in the bucket's region, so the client must
// be initialised with a regional aws.Config.
type metricsCWClient interface {
	GetMetricStatistics(
		ctx context.Context,
		params *cloudwatch.GetMetricStatisticsInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// ---------------------------------------------------------------------------
// metricsClients and factory
// ---------------------------------------------------------------------------

// metricsClients holds the service clients needed for one report run.
// Both fields are interfaces so tests can swap in stubs.
type metricsClients struct {
	S3 metricsS3Client
	CW metricsCWClient
}

// metricsClientFactory creates a metricsClients from an aws.Config.
type metricsClientFactory func(cfg aws.Config) *metricsClients

// newDefaultMetricsClients is the production metricsClientFactory.
func newDefaultMetricsClients(cfg aws.Config) *metricsClients {
	return &metricsClients{
		S3: s3svc.NewFromConfig(cfg),
		CW: cloudwatch.NewFromConfig(cfg),
	}
}
