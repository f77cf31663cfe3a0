package storagemetrics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// usEast1 is the region S3 reports as an empty LocationConstraint.
const usEast1 = "us-east-1"

// collectRegionBuckets lists every bucket in the account and keeps those
// homed in region. GetBucketLocation returns an empty LocationConstraint for
// buckets created in us-east-1, so an empty constraint matches that region.
//
// A failed location lookup skips that bucket only; the report covers the
// buckets that could be resolved.
func collectRegionBuckets(ctx context.Context, client metricsS3Client, region string) ([]string, error) {
	out, err := client.ListBuckets(ctx, &s3svc.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list S3 buckets: %w", err)
	}

	var buckets []string
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)

		loc, err := client.GetBucketLocation(ctx, &s3svc.GetBucketLocationInput{
			Bucket: aws.String(name),
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"bucket": name,
				"error":  err,
			}).Warn("Skipping bucket: GetBucketLocation failed")
			continue
		}

		bucketRegion := string(loc.LocationConstraint)
		if bucketRegion == "" {
			bucketRegion = usEast1
		}
		if bucketRegion == region {
			buckets = append(buckets, name)
		}
	}
	return buckets, nil
}
