package policy

import (
	"fmt"
	"strings"
)

// validSeverities is the set of allowed severity strings (upper-case canonical form).
var validSeverities = map[string]struct{}{
	"CRITICAL": {},
	"HIGH":     {},
	"MEDIUM":   {},
	"LOW":      {},
	"INFO":     {},
}

// Validate checks cfg for semantic correctness and returns all validation errors
// found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - rule IDs must appear in availableRuleIDs
//   - rule severity overrides must be valid severity values if set
//   - exemption subnet entries must carry the subnet- prefix
//   - tagging ssm_path_prefix must be an absolute parameter path if set
//   - enforcement fail_on_severity must be a valid severity value if set
//
// All errors are collected before returning; Validate never stops at the first error.
func Validate(cfg *Config, availableRuleIDs []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	// Build a lookup set for fast rule ID membership tests.
	knownIDs := make(map[string]struct{}, len(availableRuleIDs))
	for _, id := range availableRuleIDs {
		knownIDs[id] = struct{}{}
	}

	var errs []error

	// Version check.
	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	// Rule checks.
	for ruleID, rcfg := range cfg.Rules {
		if _, ok := knownIDs[ruleID]; !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule ID", ruleID))
		}
		if rcfg.Severity != "" {
			upper := strings.ToUpper(rcfg.Severity)
			if _, ok := validSeverities[upper]; !ok {
				errs = append(errs, fmt.Errorf("rules.%s.severity: invalid value %q; valid values: CRITICAL, HIGH, MEDIUM, LOW, INFO", ruleID, rcfg.Severity))
			}
		}
	}

	// Exemption checks.
	for _, subnet := range cfg.Exemptions.Subnets {
		if !strings.HasPrefix(subnet, "subnet-") {
			errs = append(errs, fmt.Errorf("exemptions.subnets: %q is not a subnet ID", subnet))
		}
	}

	// Tagging checks.
	if p := cfg.Tagging.SSMPathPrefix; p != "" && !strings.HasPrefix(p, "/") {
		errs = append(errs, fmt.Errorf("tagging.ssm_path_prefix: %q must start with /", p))
	}

	// Enforcement checks.
	if s := cfg.Enforcement.FailOnSeverity; s != "" {
		upper := strings.ToUpper(s)
		if _, ok := validSeverities[upper]; !ok {
			errs = append(errs, fmt.Errorf("enforcement.fail_on_severity: invalid value %q; valid values: CRITICAL, HIGH, MEDIUM, LOW, INFO", s))
		}
	}

	return errs
}
