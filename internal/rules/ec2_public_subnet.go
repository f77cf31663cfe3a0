package rules

import (
	"fmt"
	"time"

	"github.com/netwarden/netwarden/internal/models"
)

// EC2PublicSubnetRule flags EC2 instances whose network interface sits in a
// subnet routed to an internet gateway. Such instances are one public IP or
// permissive security group away from direct internet exposure.
type EC2PublicSubnetRule struct{}

func (r EC2PublicSubnetRule) ID() string   { return "EC2_PUBLIC_SUBNET" }
func (r EC2PublicSubnetRule) Name() string { return "EC2 Instance In Public Subnet" }

// Evaluate returns one HIGH finding per instance in the region's
// public-subnet inventory. The collector has already restricted the
// inventory to public subnets, so every entry is a finding.
func (r EC2PublicSubnetRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.RegionData == nil {
		return nil
	}
	var findings []models.Finding
	for _, inst := range ctx.RegionData.Instances {
		f := models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), inst.InstanceID),
			RuleID:         r.ID(),
			ResourceID:     inst.InstanceID,
			ResourceType:   models.ResourceEC2Instance,
			Region:         ctx.RegionData.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			SubnetID:       inst.SubnetID,
			Severity:       models.SeverityHigh,
			Explanation:    fmt.Sprintf("EC2 instance runs in public subnet %s (route table targets an internet gateway).", inst.SubnetID),
			Recommendation: "Move the instance to a private subnet, or route its traffic through a NAT gateway and remove the IGW route.",
			DetectedAt:     time.Now().UTC(),
		}
		if inst.State != "" {
			f.Metadata = map[string]any{"state": inst.State}
		}
		findings = append(findings, f)
	}
	return findings
}
