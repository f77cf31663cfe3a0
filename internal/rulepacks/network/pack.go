// Package network provides the network exposure rule pack.
// It groups all public-subnet rules into a single New() function that the
// CLI wires into a DefaultRuleRegistry before invoking the audit engine.
//
// Convention: every rule pack lives in internal/rulepacks/<domain>/pack.go
// and exposes a single New() func returning []rules.Rule.
// Future exposure rules (e.g. EIP on stopped instance, open NACL) should be
// added to the slice returned by New().
package network

import "github.com/netwarden/netwarden/internal/rules"

// New returns the default network exposure rule pack.
func New() []rules.Rule {
	return []rules.Rule{
		rules.EC2PublicSubnetRule{}, // HIGH:        EC2 instance in public subnet
		rules.ELBPublicSubnetRule{}, // MEDIUM:      load balancer attached to public subnet
		rules.RDSPublicSubnetRule{}, // HIGH/MEDIUM: DB instance in public subnet group
	}
}
