package policy

import (
	"strings"

	"github.com/netwarden/netwarden/internal/models"
)

// ApplyPolicy filters and adjusts raw audit findings according to cfg:
//
//   - findings from disabled rules are dropped
//   - findings for exempt subnets or exempt resources are dropped
//   - severity overrides replace the rule's default severity
//
// A nil cfg returns the findings unchanged.
func ApplyPolicy(findings []models.Finding, cfg *Config) []models.Finding {
	if cfg == nil {
		return findings
	}

	var result []models.Finding
	for _, f := range findings {
		if !cfg.RuleEnabled(f.RuleID) {
			continue
		}
		if cfg.IsSubnetExempt(f.SubnetID) || cfg.IsResourceExempt(f.ResourceID) {
			continue
		}

		if rc, ok := cfg.Rules[f.RuleID]; ok && rc.Severity != "" {
			f.Severity = models.Severity(strings.ToUpper(rc.Severity))
		}

		result = append(result, f)
	}
	return result
}
