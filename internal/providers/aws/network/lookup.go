package awsnetwork

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
)

// subnetIDPrefix guards against the describe calls handing back something
// other than a subnet identifier.
const subnetIDPrefix = "subnet-"

// lookupInstanceSubnet returns the subnet of a single EC2 instance, or ""
// when the instance does not exist or carries no subnet (e.g. terminated).
func lookupInstanceSubnet(ctx context.Context, client netEC2Client, instanceID string) (string, error) {
	out, err := client.DescribeInstances(ctx, &ec2svc.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("instance-id"),
				Values: []string{instanceID},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("DescribeInstances %s: %w", instanceID, err)
	}

	for _, reservation := range out.Reservations {
		for _, inst := range reservation.Instances {
			if subnetID := aws.ToString(inst.SubnetId); strings.HasPrefix(subnetID, subnetIDPrefix) {
				return subnetID, nil
			}
		}
	}
	return "", nil
}

// lookupLoadBalancerSubnets returns the subnets a load balancer spans, one
// per availability zone. A missing load balancer yields an error from the API.
func lookupLoadBalancerSubnets(ctx context.Context, client netELBv2Client, arn string) ([]string, error) {
	out, err := client.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{
		LoadBalancerArns: []string{arn},
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeLoadBalancers %s: %w", arn, err)
	}

	var subnets []string
	for _, lb := range out.LoadBalancers {
		for _, az := range lb.AvailabilityZones {
			if subnetID := aws.ToString(az.SubnetId); strings.HasPrefix(subnetID, subnetIDPrefix) {
				subnets = append(subnets, subnetID)
			}
		}
	}
	return subnets, nil
}
