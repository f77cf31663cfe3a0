package awsnetwork

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/netwarden/netwarden/internal/models"
)

// collectPublicInstances pages through every EC2 instance that has a network
// interface in one of the public subnets. An empty public set short-circuits
// to nil: an unfiltered DescribeInstances would return the whole region.
func collectPublicInstances(
	ctx context.Context,
	client netEC2Client,
	public models.SubnetSet,
) ([]models.PublicInstance, error) {
	if len(public) == 0 {
		return nil, nil
	}

	input := &ec2svc.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("network-interface.subnet-id"),
				Values: public.Sorted(),
			},
		},
	}

	paginator := ec2svc.NewDescribeInstancesPaginator(client, input)

	var instances []models.PublicInstance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeInstances page: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, toPublicInstance(inst))
			}
		}
	}
	return instances, nil
}

// toPublicInstance converts an SDK instance to the internal model.
func toPublicInstance(inst ec2types.Instance) models.PublicInstance {
	var state string
	if inst.State != nil {
		state = string(inst.State.Name)
	}
	return models.PublicInstance{
		InstanceID: aws.ToString(inst.InstanceId),
		SubnetID:   aws.ToString(inst.SubnetId),
		State:      state,
		Tags:       tagsFromEC2(inst.Tags),
	}
}

// collectPublicLoadBalancers pages through every ELBv2 load balancer and
// keeps those with at least one availability-zone subnet in the public set.
func collectPublicLoadBalancers(
	ctx context.Context,
	client netELBv2Client,
	public models.SubnetSet,
) ([]models.PublicLoadBalancer, error) {
	if len(public) == 0 {
		return nil, nil
	}

	paginator := elbv2.NewDescribeLoadBalancersPaginator(client, &elbv2.DescribeLoadBalancersInput{})

	var balancers []models.PublicLoadBalancer
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeLoadBalancers page: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			var publicSubnets []string
			for _, az := range lb.AvailabilityZones {
				if subnetID := aws.ToString(az.SubnetId); public.Contains(subnetID) {
					publicSubnets = append(publicSubnets, subnetID)
				}
			}
			if len(publicSubnets) == 0 {
				continue
			}
			balancers = append(balancers, models.PublicLoadBalancer{
				Name:          aws.ToString(lb.LoadBalancerName),
				ARN:           aws.ToString(lb.LoadBalancerArn),
				Type:          string(lb.Type),
				Scheme:        string(lb.Scheme),
				PublicSubnets: publicSubnets,
			})
		}
	}
	return balancers, nil
}

// collectPublicDBInstances pages through every RDS instance and keeps those
// whose DB subnet group includes at least one public subnet.
func collectPublicDBInstances(
	ctx context.Context,
	client netRDSClient,
	public models.SubnetSet,
) ([]models.PublicDBInstance, error) {
	if len(public) == 0 {
		return nil, nil
	}

	paginator := rdssvc.NewDescribeDBInstancesPaginator(client, &rdssvc.DescribeDBInstancesInput{})

	var dbs []models.PublicDBInstance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeDBInstances page: %w", err)
		}
		for _, db := range page.DBInstances {
			if db.DBSubnetGroup == nil {
				continue
			}
			var publicSubnets []string
			for _, sn := range db.DBSubnetGroup.Subnets {
				if subnetID := aws.ToString(sn.SubnetIdentifier); public.Contains(subnetID) {
					publicSubnets = append(publicSubnets, subnetID)
				}
			}
			if len(publicSubnets) == 0 {
				continue
			}
			dbs = append(dbs, models.PublicDBInstance{
				DBInstanceID:       aws.ToString(db.DBInstanceIdentifier),
				Engine:             aws.ToString(db.Engine),
				PubliclyAccessible: aws.ToBool(db.PubliclyAccessible),
				PublicSubnets:      publicSubnets,
			})
		}
	}
	return dbs, nil
}

// tagsFromEC2 converts EC2 SDK tags to a plain string map.
func tagsFromEC2(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil && t.Value != nil {
			m[*t.Key] = *t.Value
		}
	}
	return m
}
