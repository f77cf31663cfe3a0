package rules

import (
	"fmt"
	"time"

	"github.com/netwarden/netwarden/internal/models"
)

// ELBPublicSubnetRule flags load balancers with at least one subnet
// attachment in a public subnet. Internal-scheme load balancers placed in
// public subnets are a common misconfiguration: the scheme hides them from
// DNS but the subnet still routes to the internet gateway.
type ELBPublicSubnetRule struct{}

func (r ELBPublicSubnetRule) ID() string   { return "ELB_PUBLIC_SUBNET" }
func (r ELBPublicSubnetRule) Name() string { return "Load Balancer In Public Subnet" }

func (r ELBPublicSubnetRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.RegionData == nil {
		return nil
	}
	var findings []models.Finding
	for _, lb := range ctx.RegionData.LoadBalancers {
		if len(lb.PublicSubnets) == 0 {
			continue
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), lb.Name),
			RuleID:         r.ID(),
			ResourceID:     lb.Name,
			ResourceType:   models.ResourceLoadBalancer,
			Region:         ctx.RegionData.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			SubnetID:       lb.PublicSubnets[0],
			Severity:       models.SeverityMedium,
			Explanation:    fmt.Sprintf("Load balancer has %d subnet attachment(s) in public subnets.", len(lb.PublicSubnets)),
			Recommendation: "Attach internal load balancers to private subnets only; reserve public subnets for internet-facing listeners that need them.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"type":           lb.Type,
				"scheme":         lb.Scheme,
				"public_subnets": lb.PublicSubnets,
				"arn":            lb.ARN,
			},
		})
	}
	return findings
}
