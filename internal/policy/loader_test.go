package policy

import (
	"os"
	"path/filepath"
	"testing"
)

// writePolicy writes content to a temp file and returns its path.
func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netwarden.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

const samplePolicy = `
version: 1
rules:
  ELB_PUBLIC_SUBNET:
    enabled: false
  RDS_PUBLIC_SUBNET:
    severity: CRITICAL
exemptions:
  subnets:
    - subnet-dmz01
  resources:
    - i-bastion
tagging:
  ssm_path_prefix: /org/auto-tag
  extra_tags:
    managed-by: netwarden
    cost-center: "4711"
enforcement:
  fail_on_severity: HIGH
`

func TestLoadPolicy(t *testing.T) {
	cfg, err := LoadPolicy(writePolicy(t, samplePolicy))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RuleEnabled("ELB_PUBLIC_SUBNET") {
		t.Error("ELB_PUBLIC_SUBNET must be disabled")
	}
	if !cfg.RuleEnabled("EC2_PUBLIC_SUBNET") {
		t.Error("unlisted rules must stay enabled")
	}
	if !cfg.IsSubnetExempt("subnet-dmz01") || cfg.IsSubnetExempt("subnet-other") {
		t.Error("subnet exemptions not honoured")
	}
	if !cfg.IsResourceExempt("i-bastion") {
		t.Error("resource exemptions not honoured")
	}
	if got := cfg.SSMPathPrefix(); got != "/org/auto-tag" {
		t.Errorf("ssm path prefix: got %q", got)
	}
	if cfg.Enforcement.FailOnSeverity != "HIGH" {
		t.Errorf("fail_on_severity: got %q", cfg.Enforcement.FailOnSeverity)
	}
}

func TestLoadPolicy_UnsupportedVersion(t *testing.T) {
	if _, err := LoadPolicy(writePolicy(t, "version: 2\n")); err == nil {
		t.Fatal("want error for version 2")
	}
}

func TestLoadPolicy_MalformedYAML(t *testing.T) {
	if _, err := LoadPolicy(writePolicy(t, "version: [1\n")); err == nil {
		t.Fatal("want error for malformed YAML")
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestLoadFromEnv_Unset(t *testing.T) {
	t.Setenv(PolicyPathEnv, "")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("unset %s must yield a nil config, got %+v", PolicyPathEnv, cfg)
	}
}

func TestLoadFromEnv_Set(t *testing.T) {
	t.Setenv(PolicyPathEnv, writePolicy(t, samplePolicy))
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || !cfg.IsResourceExempt("i-bastion") {
		t.Error("policy from env not loaded")
	}
}

func TestNilConfigDefaults(t *testing.T) {
	var cfg *Config

	if !cfg.RuleEnabled("EC2_PUBLIC_SUBNET") {
		t.Error("nil config must enable every rule")
	}
	if cfg.IsSubnetExempt("subnet-a") || cfg.IsResourceExempt("i-0abc") {
		t.Error("nil config must exempt nothing")
	}
	if got := cfg.SSMPathPrefix(); got != DefaultSSMPathPrefix {
		t.Errorf("ssm path prefix: got %q; want %q", got, DefaultSSMPathPrefix)
	}
	if cfg.ExtraTags() != nil {
		t.Error("nil config must carry no extra tags")
	}
}

func TestExtraTags_SortedByKey(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Tagging: TaggingConfig{
			ExtraTags: map[string]string{
				"managed-by":  "netwarden",
				"cost-center": "4711",
			},
		},
	}

	tags := cfg.ExtraTags()
	if len(tags) != 2 {
		t.Fatalf("extra tags: got %d; want 2", len(tags))
	}
	if tags[0].Key != "cost-center" || tags[1].Key != "managed-by" {
		t.Errorf("extra tags must be sorted by key, got %v", tags)
	}
}
