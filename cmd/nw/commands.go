package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/netwarden/netwarden/internal/engine"
	"github.com/netwarden/netwarden/internal/log"
	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/output"
	"github.com/netwarden/netwarden/internal/policy"
	"github.com/netwarden/netwarden/internal/providers/aws/common"
	"github.com/netwarden/netwarden/internal/providers/aws/costreport"
	awsnetwork "github.com/netwarden/netwarden/internal/providers/aws/network"
	"github.com/netwarden/netwarden/internal/providers/aws/storagemetrics"
	"github.com/netwarden/netwarden/internal/rules"
	netpack "github.com/netwarden/netwarden/internal/rulepacks/network"
	"github.com/netwarden/netwarden/internal/version"
)

// defaultPolicyPath is where the audit command looks for a policy file when
// --policy is not given. A missing file simply means no policy.
const defaultPolicyPath = "./netwarden.yaml"

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		debug    bool
	)

	root := &cobra.Command{
		Use:   "nw",
		Short: "NetWarden: AWS network exposure auditing and account reporting",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetupCLI(logLevel, debug)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (overrides --log-level)")

	root.AddCommand(newAuditCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run an audit against an AWS account",
	}
	cmd.AddCommand(newAuditNetworkCmd())
	return cmd
}

func newAuditNetworkCmd() *cobra.Command {
	var (
		profile     string
		allProfiles bool
		regions     []string
		reportFmt   string
		summary     bool
		outputPath  string
		policyPath  string
		colored     bool
	)

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Audit EC2, ELB and RDS placement against public subnets",
		RunE: func(cmd *cobra.Command, args []string) error {
			pol, err := loadCLIPolicy(policyPath)
			if err != nil {
				return err
			}

			eng := buildEngine(pol)

			opts := engine.AuditOptions{
				Profile:      profile,
				AllProfiles:  allProfiles,
				Regions:      regions,
				ReportFormat: engine.ReportFormat(reportFmt),
			}

			report, err := eng.RunAudit(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("audit failed: %w", err)
			}

			if outputPath != "" {
				if err := writeReportToFile(outputPath, report); err != nil {
					return err
				}
			}

			switch {
			case summary:
				printSummary(os.Stdout, report)
			case reportFmt == "json":
				if err := printJSON(report); err != nil {
					return err
				}
			default:
				printTable(report, output.TableOptions{
					Colored:        colored,
					IncludeProfile: allProfiles,
				})
			}

			// fail_on_severity turns the audit into a CI gate: surface the
			// breach as an error so main exits non-zero.
			if policy.ShouldFail(report.Findings, pol) {
				return fmt.Errorf(
					"findings at or above policy threshold %q",
					pol.Enforcement.FailOnSeverity,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().BoolVar(&allProfiles, "all-profiles", false, "Audit all configured AWS profiles")
	cmd.Flags().StringSliceVar(&regions, "region", nil, "AWS region(s) to audit (default: all active regions)")
	cmd.Flags().StringVar(&reportFmt, "report", "table", "Output format: json or table")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print compact summary: totals, severity breakdown, counts by resource type")
	cmd.Flags().StringVar(&outputPath, "output", "", "Write full JSON report to this file path (in addition to stdout output)")
	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy file path (default: ./netwarden.yaml if present)")
	cmd.Flags().BoolVar(&colored, "color", false, "Colorize severity labels in table output")

	return cmd
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate account reports",
	}
	cmd.AddCommand(newReportS3Cmd())
	cmd.AddCommand(newReportCostCmd())
	return cmd
}

func newReportS3Cmd() *cobra.Command {
	var (
		profile     string
		allProfiles bool
		region      string
		startDate   string
		endDate     string
		reportFmt   string
	)

	now := time.Now().UTC()

	cmd := &cobra.Command{
		Use:   "s3",
		Short: "Report S3 bucket object counts and sizes from CloudWatch",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := storagemetrics.DayWindow(startDate, endDate)
			if err != nil {
				return err
			}

			eng := buildEngine(nil)

			report, err := eng.RunBucketMetricsReport(cmd.Context(), engine.BucketMetricsOptions{
				Profile:     profile,
				AllProfiles: allProfiles,
				Region:      region,
				Start:       start,
				End:         end,
			})
			if err != nil {
				return fmt.Errorf("bucket metrics report failed: %w", err)
			}

			if reportFmt == "json" {
				return printJSON(report)
			}
			output.RenderBucketMetricsTable(os.Stdout, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().BoolVar(&allProfiles, "all-profiles", false, "Report buckets for all configured AWS profiles")
	cmd.Flags().StringVar(&region, "region", "us-east-1", "Region whose buckets to report")
	cmd.Flags().StringVar(&startDate, "start", now.AddDate(0, 0, -1).Format("2006-01-02"), "Window start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", now.Format("2006-01-02"), "Window end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reportFmt, "report", "table", "Output format: json or table")

	return cmd
}

func newReportCostCmd() *cobra.Command {
	var (
		profile   string
		tagKey    string
		days      int
		reportFmt string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Report spend grouped by a cost allocation tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := buildEngine(nil)

			report, err := eng.RunTagCostReport(cmd.Context(), engine.TagCostOptions{
				Profile:  profile,
				TagKey:   tagKey,
				DaysBack: days,
			})
			if err != nil {
				return fmt.Errorf("tag cost report failed: %w", err)
			}

			if reportFmt == "json" {
				return printJSON(report)
			}
			output.RenderTagCostTable(os.Stdout, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().StringVar(&tagKey, "tag-key", costreport.DefaultTagKey, "Cost allocation tag to group spend by")
	cmd.Flags().IntVar(&days, "days", 30, "Lookback window in days")
	cmd.Flags().StringVar(&reportFmt, "report", "table", "Output format: json or table")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// buildEngine wires the production provider, collectors and rule pack into a
// DefaultEngine. pol may be nil (no policy loaded).
func buildEngine(pol *policy.Config) engine.Engine {
	registry := rules.NewDefaultRuleRegistry()
	for _, r := range netpack.New() {
		registry.Register(r)
	}

	return engine.NewDefaultEngine(
		common.NewDefaultAWSClientProvider(),
		awsnetwork.NewDefaultNetworkCollector(),
		storagemetrics.NewDefaultStorageMetricsCollector(),
		costreport.NewDefaultCostReportCollector(),
		registry,
		pol,
	)
}

// loadCLIPolicy resolves the policy for a CLI run. An explicitly named file
// must load cleanly; the default ./netwarden.yaml is optional and returns a
// nil config when absent.
func loadCLIPolicy(path string) (*policy.Config, error) {
	if path != "" {
		return policy.LoadPolicy(path)
	}
	if _, err := os.Stat(defaultPolicyPath); err != nil {
		return nil, nil
	}
	return policy.LoadPolicy(defaultPolicyPath)
}

// printJSON writes the report as indented JSON to stdout.
func printJSON(report any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// writeReportToFile serialises report as indented JSON and writes it to path,
// creating or overwriting the file. It does not affect stdout output.
func writeReportToFile(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	return nil
}

// printSummary renders a compact summary view to w:
//   - Account / profile / region header
//   - Total findings and distinct public subnet count
//   - Per-severity finding counts
//   - Finding counts per resource type
//
// It reuses the already-computed AuditReport; no engine logic is duplicated.
func printSummary(w io.Writer, report *models.AuditReport) {
	s := report.Summary

	fmt.Fprintf(w, "Account:  %s\n", report.AccountID)
	fmt.Fprintf(w, "Profile:  %s\n", report.Profile)
	fmt.Fprintf(w, "Regions:  %d\n", len(report.Regions))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Findings:  %d\n", s.TotalFindings)
	fmt.Fprintf(w, "Public Subnets:  %d\n", s.PublicSubnets)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Severity Breakdown")
	fmt.Fprintf(w, "  %-10s  %d\n", "CRITICAL", s.CriticalFindings)
	fmt.Fprintf(w, "  %-10s  %d\n", "HIGH", s.HighFindings)
	fmt.Fprintf(w, "  %-10s  %d\n", "MEDIUM", s.MediumFindings)
	fmt.Fprintf(w, "  %-10s  %d\n", "LOW", s.LowFindings)

	byType := countByResourceType(report.Findings)
	if len(byType) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Findings by Resource Type")
	for _, rt := range resourceTypeOrder {
		if n, ok := byType[rt]; ok {
			fmt.Fprintf(w, "  %-22s  %d\n", string(rt), n)
		}
	}
}

// resourceTypeOrder fixes the rendering order of the per-type summary so the
// output is deterministic.
var resourceTypeOrder = []models.ResourceType{
	models.ResourceEC2Instance,
	models.ResourceLoadBalancer,
	models.ResourceRDSInstance,
}

func countByResourceType(findings []models.Finding) map[models.ResourceType]int {
	counts := make(map[models.ResourceType]int)
	for _, f := range findings {
		counts[f.ResourceType]++
	}
	return counts
}

// printTable renders a profile header followed by the findings table and the
// severity summary.
func printTable(report *models.AuditReport, opts output.TableOptions) {
	fmt.Printf(
		"Profile: %-20s  Account: %-14s  Regions: %d\n\n",
		report.Profile,
		report.AccountID,
		len(report.Regions),
	)
	output.RenderTable(os.Stdout, report.Findings, opts)
	fmt.Println()
	output.RenderSummary(os.Stdout, report)
}
