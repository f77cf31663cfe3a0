package storagemetrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/netwarden/netwarden/internal/models"
)

// DefaultStorageMetricsCollector is the production implementation of
// StorageMetricsCollector backed by the AWS SDK v2.
//
// Inject a custom metricsClientFactory via
// NewDefaultStorageMetricsCollectorWithFactory to replace real SDK clients
// with stubs in unit tests.
type DefaultStorageMetricsCollector struct {
	factory metricsClientFactory
}

// NewDefaultStorageMetricsCollector returns a collector backed by the real AWS SDK.
func NewDefaultStorageMetricsCollector() *DefaultStorageMetricsCollector {
	return &DefaultStorageMetricsCollector{factory: newDefaultMetricsClients}
}

// NewDefaultStorageMetricsCollectorWithFactory returns a collector that uses f
// to create its service clients. Pass a stub factory in tests.
func NewDefaultStorageMetricsCollectorWithFactory(f metricsClientFactory) *DefaultStorageMetricsCollector {
	return &DefaultStorageMetricsCollector{factory: f}
}

// CollectProfileMetrics implements StorageMetricsCollector.
func (d *DefaultStorageMetricsCollector) CollectProfileMetrics(
	ctx context.Context,
	cfg aws.Config,
	region string,
	start, end time.Time,
) ([]models.BucketMetrics, error) {
	clients := d.factory(cfg)
	return collectBucketMetrics(ctx, clients, region, start, end)
}
