package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ---------------------------------------------------------------------------
// Per-service client interfaces
//
// Each interface covers only the operations used by this project. Using narrow
// interfaces instead of the full SDK clients makes mocking in unit tests
// trivial: create a struct that satisfies the interface and return canned data.
// ---------------------------------------------------------------------------

// STSClient is the subset of STS operations used by the loader.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// EC2RegionClient is the subset of EC2 operations used for region discovery.
// Topology and inventory EC2 operations are defined in the network package.
type EC2RegionClient interface {
	DescribeRegions(
		ctx context.Context,
		params *ec2.DescribeRegionsInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeRegionsOutput, error)
}

// ConfigServiceClient covers the AWS Config operations used by environment
// diagnostics: the compliance rules depend on an active configuration
// recorder in the target region.
type ConfigServiceClient interface {
	DescribeConfigurationRecorderStatus(
		ctx context.Context,
		params *configsvc.DescribeConfigurationRecorderStatusInput,
		optFns ...func(*configsvc.Options),
	) (*configsvc.DescribeConfigurationRecorderStatusOutput, error)
}

// CloudTrailClient covers the CloudTrail operations used by environment
// diagnostics: the resource auto-tagger is driven by CloudTrail management
// events, so a multi-region trail must exist.
type CloudTrailClient interface {
	DescribeTrails(
		ctx context.Context,
		params *cloudtrailsvc.DescribeTrailsInput,
		optFns ...func(*cloudtrailsvc.Options),
	) (*cloudtrailsvc.DescribeTrailsOutput, error)
}

// ---------------------------------------------------------------------------
// ClientSet and ClientFactory
// ---------------------------------------------------------------------------

// ClientSet holds fully initialised AWS service clients for a given profile
// and region. All fields are interfaces so they can be replaced with mocks in
// tests without importing the AWS SDK in test files.
type ClientSet struct {
	STS        STSClient
	EC2        EC2RegionClient
	Config     ConfigServiceClient
	CloudTrail CloudTrailClient
}

// ClientFactory creates a ClientSet from an aws.Config.
// Swap this in tests to inject mock clients.
type ClientFactory func(cfg aws.Config) *ClientSet

// NewClientSet is the production ClientFactory. It constructs real AWS SDK
// clients from cfg.
func NewClientSet(cfg aws.Config) *ClientSet {
	return &ClientSet{
		STS:        sts.NewFromConfig(cfg),
		EC2:        ec2.NewFromConfig(cfg),
		Config:     configsvc.NewFromConfig(cfg),
		CloudTrail: cloudtrailsvc.NewFromConfig(cfg),
	}
}
