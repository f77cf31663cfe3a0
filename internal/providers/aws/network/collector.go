package awsnetwork

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/providers/aws/common"
)

// NetworkCollector gathers VPC routing topology and the public-exposure
// inventory from AWS and converts them into internal models. It must not
// apply business rules; classification of subnets is delegated to the pure
// classifier and everything else is raw collection.
//
// All implementations must use the AWS SDK v2 only.
type NetworkCollector interface {
	// CollectAll coordinates per-region collection for one profile. Regions
	// that fail are logged and skipped so a single unreachable region does
	// not abort the audit; an error is returned only when the region list is
	// empty or every region fails.
	CollectAll(
		ctx context.Context,
		profile *common.ProfileConfig,
		provider common.AWSClientProvider,
		regions []string,
	) ([]models.NetworkRegionData, error)

	// CollectRegion gathers one region: topology, public-subnet
	// classification, and the EC2 / ELBv2 / RDS resources inside the public
	// set.
	CollectRegion(ctx context.Context, cfg aws.Config, region string) (*models.NetworkRegionData, error)

	// PublicSubnets fetches the region's topology and classifies it.
	// On topology failure the returned set is empty and the error is
	// non-nil; callers must log the error and may proceed with the empty
	// set, but never ignore it silently.
	PublicSubnets(ctx context.Context, cfg aws.Config, region string) (models.SubnetSet, error)

	// InstanceSubnet returns the subnet ID of one EC2 instance, or "" when
	// the instance has no subnet.
	InstanceSubnet(ctx context.Context, cfg aws.Config, instanceID string) (string, error)

	// LoadBalancerSubnets returns the subnets an ELBv2 load balancer spans.
	LoadBalancerSubnets(ctx context.Context, cfg aws.Config, arn string) ([]string, error)
}
