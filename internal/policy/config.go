package policy

import (
	"sort"

	"github.com/netwarden/netwarden/internal/models"
)

// DefaultSSMPathPrefix is the Parameter Store root the tagger reads tag
// definitions from when the policy does not override it.
const DefaultSSMPathPrefix = "/auto-tag"

// Config is the parsed netwarden.yaml policy. All accessors are nil-safe:
// a nil *Config behaves as an empty policy (every rule enabled, nothing
// exempt, tagging defaults).
type Config struct {
	Version     int                   `yaml:"version"`
	Rules       map[string]RuleConfig `yaml:"rules"`
	Exemptions  ExemptionConfig       `yaml:"exemptions"`
	Tagging     TaggingConfig         `yaml:"tagging"`
	Enforcement EnforcementConfig     `yaml:"enforcement"`
}

// RuleConfig tunes a single audit rule.
type RuleConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Severity string `yaml:"severity,omitempty"`
}

// ExemptionConfig lists subnets and resources that are allowed to be public.
type ExemptionConfig struct {
	Subnets   []string `yaml:"subnets,omitempty"`
	Resources []string `yaml:"resources,omitempty"`
}

// TaggingConfig tunes the launch tagger.
type TaggingConfig struct {
	SSMPathPrefix string            `yaml:"ssm_path_prefix,omitempty"`
	ExtraTags     map[string]string `yaml:"extra_tags,omitempty"`
}

// EnforcementConfig turns audit findings into a CI gate.
type EnforcementConfig struct {
	FailOnSeverity string `yaml:"fail_on_severity,omitempty"`
}

// RuleEnabled reports whether ruleID should run. Rules are enabled unless the
// policy explicitly disables them.
func (c *Config) RuleEnabled(ruleID string) bool {
	if c == nil {
		return true
	}
	rc, ok := c.Rules[ruleID]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}

// IsSubnetExempt reports whether the policy allows subnetID to be public.
func (c *Config) IsSubnetExempt(subnetID string) bool {
	if c == nil || subnetID == "" {
		return false
	}
	for _, s := range c.Exemptions.Subnets {
		if s == subnetID {
			return true
		}
	}
	return false
}

// IsResourceExempt reports whether the policy allows resourceID to be public.
func (c *Config) IsResourceExempt(resourceID string) bool {
	if c == nil || resourceID == "" {
		return false
	}
	for _, r := range c.Exemptions.Resources {
		if r == resourceID {
			return true
		}
	}
	return false
}

// SSMPathPrefix returns the Parameter Store root for tag definitions.
func (c *Config) SSMPathPrefix() string {
	if c == nil || c.Tagging.SSMPathPrefix == "" {
		return DefaultSSMPathPrefix
	}
	return c.Tagging.SSMPathPrefix
}

// ExtraTags returns the policy's default tags sorted by key, so the tag set
// applied to a resource does not depend on map iteration order.
func (c *Config) ExtraTags() []models.ResourceTag {
	if c == nil || len(c.Tagging.ExtraTags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Tagging.ExtraTags))
	for k := range c.Tagging.ExtraTags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]models.ResourceTag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, models.ResourceTag{Key: k, Value: c.Tagging.ExtraTags[k]})
	}
	return tags
}
