package storagemetrics

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/netwarden/netwarden/internal/models"
)

// ── stub clients ──────────────────────────────────────────────────────────────

type stubS3 struct {
	buckets     []string
	locations   map[string]s3types.BucketLocationConstraint
	locationErr map[string]error
	listErr     error
}

func (s *stubS3) ListBuckets(_ context.Context, _ *s3svc.ListBucketsInput, _ ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := &s3svc.ListBucketsOutput{}
	for _, name := range s.buckets {
		out.Buckets = append(out.Buckets, s3types.Bucket{Name: aws.String(name)})
	}
	return out, nil
}

func (s *stubS3) GetBucketLocation(_ context.Context, params *s3svc.GetBucketLocationInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketLocationOutput, error) {
	name := aws.ToString(params.Bucket)
	if err, ok := s.locationErr[name]; ok {
		return nil, err
	}
	return &s3svc.GetBucketLocationOutput{LocationConstraint: s.locations[name]}, nil
}

// stubCW serves datapoints keyed by "<bucket>/<metric>/<storageType>" and
// records every query it receives in the same format.
type stubCW struct {
	datapoints map[string][]cwtypes.Datapoint
	queries    []string
	err        error
}

func metricKey(params *cloudwatch.GetMetricStatisticsInput) string {
	var bucket, storageType string
	for _, d := range params.Dimensions {
		switch aws.ToString(d.Name) {
		case "BucketName":
			bucket = aws.ToString(d.Value)
		case "StorageType":
			storageType = aws.ToString(d.Value)
		}
	}
	return fmt.Sprintf("%s/%s/%s", bucket, aws.ToString(params.MetricName), storageType)
}

func (s *stubCW) GetMetricStatistics(_ context.Context, params *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	key := metricKey(params)
	s.queries = append(s.queries, key)
	if s.err != nil {
		return nil, s.err
	}
	return &cloudwatch.GetMetricStatisticsOutput{Datapoints: s.datapoints[key]}, nil
}

func datapoint(ts time.Time, avg float64) cwtypes.Datapoint {
	return cwtypes.Datapoint{Timestamp: aws.Time(ts), Average: aws.Float64(avg)}
}

// ── DayWindow ─────────────────────────────────────────────────────────────────

func TestDayWindow(t *testing.T) {
	start, end, err := DayWindow("2026-08-01", "2026-08-24")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := start.Format(time.RFC3339), "2026-08-01T00:00:00Z"; got != want {
		t.Errorf("start: got %s; want %s", got, want)
	}
	if got, want := end.Format(time.RFC3339), "2026-08-24T23:59:59Z"; got != want {
		t.Errorf("end: got %s; want %s", got, want)
	}
}

func TestDayWindow_SingleDay(t *testing.T) {
	start, end, err := DayWindow("2026-08-24", "2026-08-24")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.After(start) {
		t.Errorf("single-day window must still span the day: start=%v end=%v", start, end)
	}
}

func TestDayWindow_Invalid(t *testing.T) {
	if _, _, err := DayWindow("08/01/2026", "2026-08-24"); err == nil {
		t.Error("want error for non-ISO start date")
	}
	if _, _, err := DayWindow("2026-08-01", "yesterday"); err == nil {
		t.Error("want error for non-ISO end date")
	}
	if _, _, err := DayWindow("2026-08-24", "2026-08-01"); err == nil {
		t.Error("want error when end precedes start")
	}
}

// ── collectRegionBuckets ──────────────────────────────────────────────────────

func TestCollectRegionBuckets(t *testing.T) {
	s3c := &stubS3{
		buckets: []string{"logs-virginia", "logs-ireland", "assets-virginia"},
		locations: map[string]s3types.BucketLocationConstraint{
			// us-east-1 buckets report an empty constraint.
			"logs-virginia":   "",
			"logs-ireland":    s3types.BucketLocationConstraintEuWest1,
			"assets-virginia": "",
		},
	}

	got, err := collectRegionBuckets(context.Background(), s3c, "us-east-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"logs-virginia", "assets-virginia"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("us-east-1 buckets: got %v; want %v", got, want)
	}

	got, err = collectRegionBuckets(context.Background(), s3c, "eu-west-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"logs-ireland"}) {
		t.Errorf("eu-west-1 buckets: got %v; want [logs-ireland]", got)
	}
}

func TestCollectRegionBuckets_LocationFailureSkipsBucket(t *testing.T) {
	s3c := &stubS3{
		buckets: []string{"readable", "forbidden"},
		locations: map[string]s3types.BucketLocationConstraint{
			"readable": s3types.BucketLocationConstraintEuWest1,
		},
		locationErr: map[string]error{
			"forbidden": errors.New("AccessDenied"),
		},
	}

	got, err := collectRegionBuckets(context.Background(), s3c, "eu-west-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"readable"}) {
		t.Errorf("buckets: got %v; want [readable]", got)
	}
}

func TestCollectRegionBuckets_ListFailure(t *testing.T) {
	s3c := &stubS3{listErr: errors.New("ExpiredToken")}
	if _, err := collectRegionBuckets(context.Background(), s3c, "us-east-1"); err == nil {
		t.Fatal("want error when ListBuckets fails")
	}
}

// ── fetchBucketMetric ─────────────────────────────────────────────────────────

func TestFetchBucketMetric_EarliestDatapoint(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	cw := &stubCW{
		datapoints: map[string][]cwtypes.Datapoint{
			// Deliberately unordered: CloudWatch gives no ordering guarantee.
			"logs/NumberOfObjects/AllStorageTypes": {
				datapoint(day3, 330),
				datapoint(day1, 110),
				datapoint(day2, 220),
			},
		},
	}

	got, ok := fetchBucketMetric(context.Background(), cw, "logs",
		metricNumberOfObjects, storageTypeAllTypes, day1, day3)
	if !ok {
		t.Fatal("want ok for bucket with datapoints")
	}
	if got != 110 {
		t.Errorf("value: got %v; want 110 (the earliest datapoint)", got)
	}
}

func TestFetchBucketMetric_NoDatapoints(t *testing.T) {
	cw := &stubCW{datapoints: map[string][]cwtypes.Datapoint{}}

	got, ok := fetchBucketMetric(context.Background(), cw, "empty",
		metricNumberOfObjects, storageTypeAllTypes, time.Now().Add(-24*time.Hour), time.Now())
	if ok {
		t.Error("want ok=false when CloudWatch has no datapoints")
	}
	if got != 0 {
		t.Errorf("value: got %v; want 0", got)
	}
}

// An API failure reads as "metric unknown", same as a bucket with no
// datapoints: one unreadable metric must not abort the whole report.
func TestFetchBucketMetric_APIFailure(t *testing.T) {
	cw := &stubCW{err: errors.New("Throttling")}

	got, ok := fetchBucketMetric(context.Background(), cw, "logs",
		metricNumberOfObjects, storageTypeAllTypes, time.Now().Add(-24*time.Hour), time.Now())
	if ok {
		t.Error("want ok=false when GetMetricStatistics fails")
	}
	if got != 0 {
		t.Errorf("value: got %v; want 0", got)
	}
}

// ── collectBucketMetrics ──────────────────────────────────────────────────────

func TestCollectBucketMetrics(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	s3c := &stubS3{
		buckets: []string{"active", "empty"},
		locations: map[string]s3types.BucketLocationConstraint{
			"active": s3types.BucketLocationConstraintEuWest1,
			"empty":  s3types.BucketLocationConstraintEuWest1,
		},
	}
	cw := &stubCW{
		datapoints: map[string][]cwtypes.Datapoint{
			"active/NumberOfObjects/AllStorageTypes": {datapoint(day, 42)},
			"active/BucketSizeBytes/StandardStorage": {datapoint(day, 1 << 20)},
		},
	}
	clients := &metricsClients{S3: s3c, CW: cw}

	got, err := collectBucketMetrics(context.Background(), clients, "eu-west-1", day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.BucketMetrics{
		{Bucket: "active", ObjectCount: 42, HasObjectData: true, SizeBytes: 1 << 20, HasSizeData: true},
		{Bucket: "empty"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("metrics:\n got %+v\nwant %+v", got, want)
	}

	// The size metric must not be queried for a bucket with no object data.
	for _, q := range cw.queries {
		if q == "empty/BucketSizeBytes/StandardStorage" {
			t.Error("size metric queried for bucket without object datapoints")
		}
	}
}

func TestCollectProfileMetrics_FactoryInjection(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	s3c := &stubS3{
		buckets:   []string{"only"},
		locations: map[string]s3types.BucketLocationConstraint{"only": ""},
	}
	cw := &stubCW{
		datapoints: map[string][]cwtypes.Datapoint{
			"only/NumberOfObjects/AllStorageTypes": {datapoint(day, 7)},
			"only/BucketSizeBytes/StandardStorage": {datapoint(day, 512)},
		},
	}
	collector := NewDefaultStorageMetricsCollectorWithFactory(func(_ aws.Config) *metricsClients {
		return &metricsClients{S3: s3c, CW: cw}
	})

	got, err := collector.CollectProfileMetrics(context.Background(), aws.Config{}, "us-east-1", day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ObjectCount != 7 || got[0].SizeBytes != 512 {
		t.Errorf("metrics: got %+v; want one bucket with 7 objects and 512 bytes", got)
	}
}
