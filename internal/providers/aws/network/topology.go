package awsnetwork

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/netwarden/netwarden/internal/models"
)

// collectTopology pages through every subnet and route table in region and
// assembles the NetworkTopology consumed by the classifier.
//
// Any API failure aborts the whole collection: a partially populated topology
// would silently misclassify the subnets that were never fetched, so callers
// get either the complete routing picture or an error.
func collectTopology(
	ctx context.Context,
	client netEC2Client,
	region string,
) (*models.NetworkTopology, error) {
	topo := &models.NetworkTopology{
		Region:     region,
		VPCSubnets: make(map[string][]string),
	}

	subnetPages := ec2svc.NewDescribeSubnetsPaginator(client, &ec2svc.DescribeSubnetsInput{})
	for subnetPages.HasMorePages() {
		page, err := subnetPages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeSubnets page: %w", err)
		}
		for _, sn := range page.Subnets {
			vpcID := aws.ToString(sn.VpcId)
			topo.VPCSubnets[vpcID] = append(topo.VPCSubnets[vpcID], aws.ToString(sn.SubnetId))
		}
	}

	tablePages := ec2svc.NewDescribeRouteTablesPaginator(client, &ec2svc.DescribeRouteTablesInput{})
	for tablePages.HasMorePages() {
		page, err := tablePages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeRouteTables page: %w", err)
		}
		for _, rt := range page.RouteTables {
			topo.RouteTables = append(topo.RouteTables, toRouteTable(rt))
		}
	}

	return topo, nil
}

// toRouteTable converts an SDK route table to the internal model, keeping
// association order as returned by the API.
func toRouteTable(rt ec2types.RouteTable) models.RouteTable {
	table := models.RouteTable{
		RouteTableID: aws.ToString(rt.RouteTableId),
		VPCID:        aws.ToString(rt.VpcId),
	}
	for _, assoc := range rt.Associations {
		table.Associations = append(table.Associations, models.RouteTableAssociation{
			SubnetID: aws.ToString(assoc.SubnetId),
			Main:     aws.ToBool(assoc.Main),
		})
	}
	for _, route := range rt.Routes {
		table.Routes = append(table.Routes, models.Route{
			DestinationCIDR: aws.ToString(route.DestinationCidrBlock),
			GatewayID:       aws.ToString(route.GatewayId),
		})
	}
	return table
}
