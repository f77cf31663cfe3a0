package rules

import (
	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/policy"
)

// RuleContext carries all collected data for a single region and profile.
// It is the sole input to Rule.Evaluate and must contain everything a rule
// needs; rules must never make network calls or read external state.
type RuleContext struct {
	// AccountID is the AWS account being evaluated.
	AccountID string

	// Profile is the AWS profile name for this evaluation run.
	Profile string

	// RegionData holds the region's public subnets and the inventory of
	// resources placed in them.
	RegionData *models.NetworkRegionData

	// Policy holds the active policy config. May be nil when no policy file
	// is loaded; rules must treat nil as "use defaults". Exemptions and
	// severity overrides are applied by the engine after evaluation, not by
	// the rules themselves.
	Policy *policy.Config
}

// Rule is a single deterministic exposure-detection rule.
// Rules must be stateless and safe to call concurrently.
// They must never call the AWS SDK or any external service.
type Rule interface {
	// ID returns the unique, stable identifier for this rule (e.g. "EC2_PUBLIC_SUBNET").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Evaluate inspects the provided context and returns zero or more findings.
	// An empty slice means no issue was detected.
	Evaluate(ctx RuleContext) []models.Finding
}

// RuleRegistry manages the set of active rules and drives evaluation.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// EvaluateAll runs every registered rule against ctx and merges results.
	EvaluateAll(ctx RuleContext) []models.Finding
}
