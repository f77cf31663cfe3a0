package storagemetrics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/sirupsen/logrus"

	"github.com/netwarden/netwarden/internal/models"
)

// S3 publishes daily storage metrics under AWS/S3. NumberOfObjects is only
// reported for the AllStorageTypes dimension, BucketSizeBytes per storage
// class (StandardStorage covers the default class).
const (
	s3MetricNamespace     = "AWS/S3"
	metricNumberOfObjects = "NumberOfObjects"
	metricBucketSizeBytes = "BucketSizeBytes"
	storageTypeAllTypes   = "AllStorageTypes"
	storageTypeStandard   = "StandardStorage"

	// dayFormat is the wire format of the report window flags.
	dayFormat = "2006-01-02"
)

// DayWindow parses two YYYY-MM-DD dates and expands them to the start of the
// first day and the last second of the second day, both UTC. The storage
// metrics are daily datapoints stamped at midnight; the expansion guarantees
// both boundary days fall inside the query window.
func DayWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dayFormat, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse(dayFormat, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s precedes start date %s", endDate, startDate)
	}
	endOfDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	return start, endOfDay, nil
}

// fetchBucketMetric queries one daily S3 storage metric for bucket over
// [start, end] and returns the earliest datapoint's average. ok is false when
// the call fails or CloudWatch has no datapoints for the window; callers must
// then treat the value as unknown, not as zero.
func fetchBucketMetric(
	ctx context.Context,
	cw metricsCWClient,
	bucket, metricName, storageType string,
	start, end time.Time,
) (float64, bool) {
	out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(s3MetricNamespace),
		MetricName: aws.String(metricName),
		Dimensions: []cwtypes.Dimension{
			{
				Name:  aws.String("BucketName"),
				Value: aws.String(bucket),
			},
			{
				Name:  aws.String("StorageType"),
				Value: aws.String(storageType),
			},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(86400), // daily, matching the metric's publish cadence
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"bucket": bucket,
			"metric": metricName,
			"error":  err,
		}).Warn("GetMetricStatistics failed, treating metric as unknown")
		return 0, false
	}
	if len(out.Datapoints) == 0 {
		return 0, false
	}

	// CloudWatch returns datapoints in arbitrary order; pick the earliest so
	// repeated runs over the same window read the same value.
	points := make([]cwtypes.Datapoint, len(out.Datapoints))
	copy(points, out.Datapoints)
	sort.Slice(points, func(i, j int) bool {
		return aws.ToTime(points[i].Timestamp).Before(aws.ToTime(points[j].Timestamp))
	})
	for _, dp := range points {
		if dp.Average != nil {
			return *dp.Average, true
		}
	}
	return 0, false
}

// collectBucketMetrics resolves the region's buckets and fetches both storage
// metrics for each. Buckets with no object datapoints are still reported
// (HasObjectData false) so the report shows them as empty during the window;
// the size metric is only queried when object data exists.
func collectBucketMetrics(
	ctx context.Context,
	clients *metricsClients,
	region string,
	start, end time.Time,
) ([]models.BucketMetrics, error) {
	buckets, err := collectRegionBuckets(ctx, clients.S3, region)
	if err != nil {
		return nil, err
	}

	metrics := make([]models.BucketMetrics, 0, len(buckets))
	for _, bucket := range buckets {
		bm := models.BucketMetrics{Bucket: bucket}

		bm.ObjectCount, bm.HasObjectData = fetchBucketMetric(
			ctx, clients.CW, bucket, metricNumberOfObjects, storageTypeAllTypes, start, end)
		if bm.HasObjectData {
			bm.SizeBytes, bm.HasSizeData = fetchBucketMetric(
				ctx, clients.CW, bucket, metricBucketSizeBytes, storageTypeStandard, start, end)
		}

		metrics = append(metrics, bm)
	}
	return metrics, nil
}
