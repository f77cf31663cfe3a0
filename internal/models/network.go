package models

import "sort"

// ---------------------------------------------------------------------------
// VPC network topology models (collected by provider, consumed by classifier)
// ---------------------------------------------------------------------------

// RouteTableAssociation links a route table to a subnet. Implicit association
// records (the main-table marker) carry no subnet ID; Main is true on the
// record that marks a table as the VPC main table.
type RouteTableAssociation struct {
	SubnetID string `json:"subnet_id,omitempty"`
	Main     bool   `json:"main"`
}

// Route is a single entry in a route table. Only the gateway target matters
// for public-subnet classification; an internet gateway target has the
// "igw-" ID prefix.
type Route struct {
	DestinationCIDR string `json:"destination_cidr,omitempty"`
	GatewayID       string `json:"gateway_id,omitempty"`
}

// RouteTable is one VPC route table with its associations and routes, in the
// order the API returned them.
type RouteTable struct {
	RouteTableID string                  `json:"route_table_id"`
	VPCID        string                  `json:"vpc_id"`
	Associations []RouteTableAssociation `json:"associations"`
	Routes       []Route                 `json:"routes"`
}

// NetworkTopology is the complete routing picture of one region: every subnet
// grouped by VPC, plus every route table. It is the sole input to the
// public-subnet classifier.
type NetworkTopology struct {
	Region      string              `json:"region"`
	VPCSubnets  map[string][]string `json:"vpc_subnets"`
	RouteTables []RouteTable        `json:"route_tables"`
}

// SubnetSet is a membership set of subnet IDs.
type SubnetSet map[string]struct{}

// NewSubnetSet builds a SubnetSet from the given IDs.
func NewSubnetSet(ids ...string) SubnetSet {
	s := make(SubnetSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s SubnetSet) Add(id string) { s[id] = struct{}{} }

// Contains reports whether id is in the set.
func (s SubnetSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the set's members in lexical order for deterministic output.
func (s SubnetSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ---------------------------------------------------------------------------
// Public-exposure inventory models
// ---------------------------------------------------------------------------

// PublicInstance is an EC2 instance with at least one network interface in a
// public subnet.
type PublicInstance struct {
	InstanceID string            `json:"instance_id"`
	SubnetID   string            `json:"subnet_id,omitempty"`
	State      string            `json:"state,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// PublicLoadBalancer is an ELBv2 load balancer with at least one subnet in the
// public set. PublicSubnets lists only the subnets that are public; the LB may
// span additional private subnets.
type PublicLoadBalancer struct {
	Name          string   `json:"name"`
	ARN           string   `json:"arn"`
	Type          string   `json:"type"`   // application | network | gateway
	Scheme        string   `json:"scheme"` // internet-facing | internal
	PublicSubnets []string `json:"public_subnets"`
}

// PublicDBInstance is an RDS instance whose DB subnet group includes at least
// one public subnet.
type PublicDBInstance struct {
	DBInstanceID       string   `json:"db_instance_id"`
	Engine             string   `json:"engine,omitempty"`
	PubliclyAccessible bool     `json:"publicly_accessible"`
	PublicSubnets      []string `json:"public_subnets"`
}

// NetworkRegionData holds everything collected from one region: the public
// subnet set and the resources found inside it. It is passed to the rule
// engine for evaluation.
type NetworkRegionData struct {
	Region        string               `json:"region"`
	PublicSubnets []string             `json:"public_subnets"`
	Instances     []PublicInstance     `json:"instances"`
	LoadBalancers []PublicLoadBalancer `json:"load_balancers"`
	DBInstances   []PublicDBInstance   `json:"db_instances"`
}
