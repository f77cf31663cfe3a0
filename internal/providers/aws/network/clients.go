package awsnetwork

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the SDK operations used by this package.
// The real *ec2.Client, *elbv2.Client, and *rds.Client satisfy these
// automatically. Replace any field in netClients with a stub struct in
// unit tests.
// ---------------------------------------------------------------------------

// netEC2Client covers the EC2 operations required for topology and inventory
// collection. The describe methods also satisfy ec2.DescribeSubnetsAPIClient,
// ec2.DescribeRouteTablesAPIClient, and ec2.DescribeInstancesAPIClient,
// enabling SDK v2 paginators.
type netEC2Client interface {
	DescribeSubnets(
		ctx context.Context,
		params *ec2svc.DescribeSubnetsInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeSubnetsOutput, error)

	DescribeRouteTables(
		ctx context.Context,
		params *ec2svc.DescribeRouteTablesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeRouteTablesOutput, error)

	DescribeInstances(
		ctx context.Context,
		params *ec2svc.DescribeInstancesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeInstancesOutput, error)
}

// netELBv2Client covers the ELBv2 operations required for load balancer
// inventory. Satisfies elbv2.DescribeLoadBalancersAPIClient for the paginator.
type netELBv2Client interface {
	DescribeLoadBalancers(
		ctx context.Context,
		params *elbv2.DescribeLoadBalancersInput,
		optFns ...func(*elbv2.Options),
	) (*elbv2.DescribeLoadBalancersOutput, error)
}

// netRDSClient covers the RDS operations required for database instance
// inventory. Satisfies rds.DescribeDBInstancesAPIClient for the paginator.
type netRDSClient interface {
	DescribeDBInstances(
		ctx context.Context,
		params *rds.DescribeDBInstancesInput,
		optFns ...func(*rds.Options),
	) (*rds.DescribeDBInstancesOutput, error)
}

// ---------------------------------------------------------------------------
// netClients and factory
// ---------------------------------------------------------------------------

// netClients holds all service clients needed for one regional collection.
// All fields are interfaces so any can be swapped with a mock in tests.
type netClients struct {
	EC2 netEC2Client
	ELB netELBv2Client
	RDS netRDSClient
}

// netClientFactory creates a netClients from an aws.Config.
type netClientFactory func(cfg aws.Config) *netClients

// newDefaultNetClients is the production netClientFactory.
func newDefaultNetClients(cfg aws.Config) *netClients {
	return &netClients{
		EC2: ec2svc.NewFromConfig(cfg),
		ELB: elbv2.NewFromConfig(cfg),
		RDS: rds.NewFromConfig(cfg),
	}
}
