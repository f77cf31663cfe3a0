package policy

import (
	"strings"

	"github.com/netwarden/netwarden/internal/models"
)

// severityRank orders severities for threshold comparison:
// CRITICAL (5) > HIGH (4) > MEDIUM (3) > LOW (2) > INFO (1).
var severityRank = map[models.Severity]int{
	models.SeverityCritical: 5,
	models.SeverityHigh:     4,
	models.SeverityMedium:   3,
	models.SeverityLow:      2,
	models.SeverityInfo:     1,
}

// ShouldFail reports whether any finding reaches the policy's
// fail_on_severity threshold, turning the audit into a CI gate.
//
// It returns false when:
//   - cfg is nil (no policy loaded)
//   - fail_on_severity is empty or an unrecognised value
//   - findings is empty
func ShouldFail(findings []models.Finding, cfg *Config) bool {
	if cfg == nil || cfg.Enforcement.FailOnSeverity == "" {
		return false
	}
	threshold, ok := severityRank[models.Severity(strings.ToUpper(cfg.Enforcement.FailOnSeverity))]
	if !ok {
		return false
	}
	for _, f := range findings {
		if r, ok := severityRank[f.Severity]; ok && r >= threshold {
			return true
		}
	}
	return false
}
