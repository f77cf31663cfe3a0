// Package subnets implements public-subnet classification over a collected
// VPC network topology. The classifier is pure: it makes no network calls,
// never fails, and never mutates its input.
package subnets

import (
	"strings"

	"github.com/netwarden/netwarden/internal/models"
)

// internetGatewayPrefix identifies internet gateway targets in route entries.
// A route table with at least one route to an "igw-" gateway gives every
// subnet it serves a path to the internet.
const internetGatewayPrefix = "igw-"

// ClassifyPublic returns the set of subnet IDs that are public in topo.
//
// A subnet is public when the route table that serves it has a route whose
// gateway is an internet gateway. Which table serves a subnet follows VPC
// routing semantics:
//
//   - a subnet explicitly associated with a route table is served by that
//     table and by no other, even when the VPC main table is internet-routed
//   - every remaining subnet of a VPC is served implicitly by the VPC main
//     table (the table whose association records carry the main flag)
//
// Explicit associations are consumed from a per-VPC pool before any table is
// classified, so the result does not depend on the order route tables appear
// in the topology. The returned set is always a subset of the subnets listed
// in topo.VPCSubnets; a nil topology yields an empty set.
func ClassifyPublic(topo *models.NetworkTopology) models.SubnetSet {
	public := make(models.SubnetSet)
	if topo == nil {
		return public
	}

	// Per-VPC pool of subnets with no explicit table association yet.
	// Working on a copy keeps the input topology untouched. The known set
	// bounds the result: an association referencing a subnet absent from the
	// listing can never leak into the output.
	pool := make(map[string]models.SubnetSet, len(topo.VPCSubnets))
	known := make(models.SubnetSet)
	for vpcID, subnetIDs := range topo.VPCSubnets {
		pool[vpcID] = models.NewSubnetSet(subnetIDs...)
		for _, id := range subnetIDs {
			known.Add(id)
		}
	}

	// First pass: every explicit association claims its subnet from the pool.
	// Done up front so an explicitly associated subnet can never be swept up
	// by a main table processed earlier in the slice.
	for _, table := range topo.RouteTables {
		for _, assoc := range table.Associations {
			if assoc.SubnetID == "" {
				continue
			}
			if vpcPool, ok := pool[table.VPCID]; ok {
				delete(vpcPool, assoc.SubnetID)
			}
		}
	}

	// Second pass: classify each table independently. Candidates never leak
	// between tables; a table with no associations contributes nothing no
	// matter what it routes.
	for _, table := range topo.RouteTables {
		var candidates []string
		isMain := false

		for _, assoc := range table.Associations {
			if assoc.Main {
				isMain = true
			}
			if assoc.SubnetID != "" {
				candidates = append(candidates, assoc.SubnetID)
			}
		}

		// The main table also serves every subnet of its VPC that no table
		// claimed explicitly.
		if isMain {
			for subnetID := range pool[table.VPCID] {
				candidates = append(candidates, subnetID)
			}
		}

		if !hasInternetRoute(table.Routes) {
			continue
		}
		for _, subnetID := range candidates {
			if known.Contains(subnetID) {
				public.Add(subnetID)
			}
		}
	}

	return public
}

// hasInternetRoute reports whether any route targets an internet gateway.
// Multiple internet routes in one table are equivalent to one.
func hasInternetRoute(routes []models.Route) bool {
	for _, route := range routes {
		if strings.HasPrefix(route.GatewayID, internetGatewayPrefix) {
			return true
		}
	}
	return false
}
