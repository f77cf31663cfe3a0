package rules

import (
	"fmt"
	"time"

	"github.com/netwarden/netwarden/internal/models"
)

// RDSPublicSubnetRule flags DB instances whose subnet group includes a
// public subnet. Severity depends on the PubliclyAccessible flag: a database
// that also resolves to a public IP is rated HIGH, one that merely sits in a
// public subnet is rated MEDIUM.
type RDSPublicSubnetRule struct{}

func (r RDSPublicSubnetRule) ID() string   { return "RDS_PUBLIC_SUBNET" }
func (r RDSPublicSubnetRule) Name() string { return "RDS Instance In Public Subnet" }

func (r RDSPublicSubnetRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.RegionData == nil {
		return nil
	}
	var findings []models.Finding
	for _, db := range ctx.RegionData.DBInstances {
		if len(db.PublicSubnets) == 0 {
			continue
		}
		severity := models.SeverityMedium
		explanation := fmt.Sprintf("DB instance subnet group includes %d public subnet(s).", len(db.PublicSubnets))
		if db.PubliclyAccessible {
			severity = models.SeverityHigh
			explanation = "DB instance is publicly accessible and its subnet group includes public subnets."
		}
		findings = append(findings, models.Finding{
			ID:             fmt.Sprintf("%s-%s", r.ID(), db.DBInstanceID),
			RuleID:         r.ID(),
			ResourceID:     db.DBInstanceID,
			ResourceType:   models.ResourceRDSInstance,
			Region:         ctx.RegionData.Region,
			AccountID:      ctx.AccountID,
			Profile:        ctx.Profile,
			SubnetID:       db.PublicSubnets[0],
			Severity:       severity,
			Explanation:    explanation,
			Recommendation: "Use a DB subnet group made of private subnets and disable public accessibility unless the database must be reached from the internet.",
			DetectedAt:     time.Now().UTC(),
			Metadata: map[string]any{
				"engine":              db.Engine,
				"publicly_accessible": db.PubliclyAccessible,
				"public_subnets":      db.PublicSubnets,
			},
		})
	}
	return findings
}
