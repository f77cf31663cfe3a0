package tagging

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	ssmsvc "github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the SDK operations used by this package.
// The real *ec2.Client, *iam.Client, and *ssm.Client satisfy these
// automatically. Replace any field in taggingClients with a stub in tests.
// ---------------------------------------------------------------------------

// taggingEC2Client covers the EC2 operations required to apply tags.
// DescribeVolumes also satisfies ec2.DescribeVolumesAPIClient for the SDK v2
// paginator.
type taggingEC2Client interface {
	CreateTags(
		ctx context.Context,
		params *ec2svc.CreateTagsInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.CreateTagsOutput, error)

	DescribeVolumes(
		ctx context.Context,
		params *ec2svc.DescribeVolumesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeVolumesOutput, error)
}

// taggingIAMClient covers the IAM tag lookups. IAM caps tags at 50 per
// principal, so a single unpaginated call always returns the full set.
type taggingIAMClient interface {
	ListUserTags(
		ctx context.Context,
		params *iamsvc.ListUserTagsInput,
		optFns ...func(*iamsvc.Options),
	) (*iamsvc.ListUserTagsOutput, error)

	ListRoleTags(
		ctx context.Context,
		params *iamsvc.ListRoleTagsInput,
		optFns ...func(*iamsvc.Options),
	) (*iamsvc.ListRoleTagsOutput, error)
}

// taggingSSMClient covers the Parameter Store lookup. Satisfies
// ssm.GetParametersByPathAPIClient for the SDK v2 paginator.
type taggingSSMClient interface {
	GetParametersByPath(
		ctx context.Context,
		params *ssmsvc.GetParametersByPathInput,
		optFns ...func(*ssmsvc.Options),
	) (*ssmsvc.GetParametersByPathOutput, error)
}

// ---------------------------------------------------------------------------
// taggingClients and factory
// ---------------------------------------------------------------------------

// taggingClients holds the service clients needed to assemble and apply tags
// for one launch event. All fields are interfaces so tests can swap in stubs.
type taggingClients struct {
	EC2 taggingEC2Client
	IAM taggingIAMClient
	SSM taggingSSMClient
}

// taggingClientFactory creates a taggingClients from an aws.Config.
type taggingClientFactory func(cfg aws.Config) *taggingClients

// newDefaultTaggingClients is the production taggingClientFactory.
func newDefaultTaggingClients(cfg aws.Config) *taggingClients {
	return &taggingClients{
		EC2: ec2svc.NewFromConfig(cfg),
		IAM: iamsvc.NewFromConfig(cfg),
		SSM: ssmsvc.NewFromConfig(cfg),
	}
}
