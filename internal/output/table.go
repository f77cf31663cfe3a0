package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/netwarden/netwarden/internal/models"
)

// ANSI color codes for severity output (used when Colored=true).
const (
	ansiReset   = "\033[0m"
	ansiBoldRed = "\033[1;31m"
	ansiRed     = "\033[0;31m"
	ansiYellow  = "\033[0;33m"
	ansiBlue    = "\033[0;34m"
)

// TableOptions controls which columns RenderTable renders and how severity is coloured.
type TableOptions struct {
	// Colored wraps severity labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// IncludeProfile adds a PROFILE column (useful with --all-profiles).
	IncludeProfile bool
}

// ColorSeverity wraps a severity string with ANSI codes when colored is true.
// When colored is false the string is returned unchanged (CI-safe default).
func ColorSeverity(sev models.Severity, colored bool) string {
	s := string(sev)
	if !colored {
		return s
	}
	switch sev {
	case models.SeverityCritical:
		return ansiBoldRed + s + ansiReset
	case models.SeverityHigh:
		return ansiRed + s + ansiReset
	case models.SeverityMedium:
		return ansiYellow + s + ansiReset
	case models.SeverityLow:
		return ansiBlue + s + ansiReset
	default:
		return s
	}
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// severityCell returns the severity padded to width characters.
// When colored, ANSI codes wrap only the text; trailing padding spaces are plain
// so subsequent columns stay visually aligned regardless of terminal ANSI support.
func severityCell(sev models.Severity, width int, colored bool) string {
	text := string(sev)
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	var code string
	switch sev {
	case models.SeverityCritical:
		code = ansiBoldRed
	case models.SeverityHigh:
		code = ansiRed
	case models.SeverityMedium:
		code = ansiYellow
	case models.SeverityLow:
		code = ansiBlue
	default:
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return code + text + ansiReset + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max bytes for ID/label columns.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max < 4 {
		max = 4
	}
	return s[:max-3] + "..."
}

// RenderTable writes a formatted findings table to w.
// Columns are dynamically selected based on opts; the separator line width is
// derived from the header row so all rows align correctly.
//
// Column order:
//
//	RESOURCE ID  [PROFILE]  REGION  SEVERITY  SUBNET  TYPE  MESSAGE
func RenderTable(w io.Writer, findings []models.Finding, opts TableOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}

	// Fixed column display widths.
	const (
		wResource = 30
		wProfile  = 12
		wRegion   = 15
		wSeverity = 10
		wSubnet   = 24
		wType     = 15
		wMessage  = 55
	)

	// Build the header row.
	var hb strings.Builder
	hb.WriteString(fmt.Sprintf("%-*s", wResource, "RESOURCE ID"))
	if opts.IncludeProfile {
		hb.WriteString(fmt.Sprintf("  %-*s", wProfile, "PROFILE"))
	}
	hb.WriteString(fmt.Sprintf("  %-*s", wRegion, "REGION"))
	hb.WriteString(fmt.Sprintf("  %-*s", wSeverity, "SEVERITY"))
	hb.WriteString(fmt.Sprintf("  %-*s", wSubnet, "SUBNET"))
	hb.WriteString(fmt.Sprintf("  %-*s", wType, "TYPE"))
	hb.WriteString(fmt.Sprintf("  %-*s", wMessage, "MESSAGE"))
	header := hb.String()

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, f := range findings {
		var rb strings.Builder
		rb.WriteString(fmt.Sprintf("%-*s", wResource, truncateField(f.ResourceID, wResource)))
		if opts.IncludeProfile {
			rb.WriteString(fmt.Sprintf("  %-*s", wProfile, truncateField(f.Profile, wProfile)))
		}
		rb.WriteString(fmt.Sprintf("  %-*s", wRegion, truncateField(f.Region, wRegion)))
		rb.WriteString("  " + severityCell(f.Severity, wSeverity, opts.Colored))
		rb.WriteString(fmt.Sprintf("  %-*s", wSubnet, truncateField(f.SubnetID, wSubnet)))
		rb.WriteString(fmt.Sprintf("  %-*s", wType, truncateField(string(f.ResourceType), wType)))
		rb.WriteString(fmt.Sprintf("  %-*s", wMessage, ShortenMessage(f.Explanation, wMessage)))
		fmt.Fprintln(w, rb.String())
	}
}

// RenderSummary writes the audit summary block to w: total findings, the
// per-severity breakdown, and the distinct public subnet count.
func RenderSummary(w io.Writer, report *models.AuditReport) {
	s := report.Summary
	fmt.Fprintf(w, "Findings: %d total", s.TotalFindings)
	if s.TotalFindings > 0 {
		var parts []string
		if s.CriticalFindings > 0 {
			parts = append(parts, fmt.Sprintf("%d critical", s.CriticalFindings))
		}
		if s.HighFindings > 0 {
			parts = append(parts, fmt.Sprintf("%d high", s.HighFindings))
		}
		if s.MediumFindings > 0 {
			parts = append(parts, fmt.Sprintf("%d medium", s.MediumFindings))
		}
		if s.LowFindings > 0 {
			parts = append(parts, fmt.Sprintf("%d low", s.LowFindings))
		}
		if len(parts) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(parts, ", "))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Public subnets: %d across %d region(s)\n", s.PublicSubnets, len(report.Regions))
}

// RenderBucketMetricsTable writes the S3 storage metrics report to w, one
// section per profile. Buckets that returned no object datapoints over the
// window are rendered as a "no objects during the window" row.
func RenderBucketMetricsTable(w io.Writer, report *models.BucketMetricsReport) {
	fmt.Fprintf(w, "S3 storage metrics for %s (%s to %s)\n",
		report.Region, report.WindowStart, report.WindowEnd)

	const (
		wBucket  = 40
		wObjects = 14
	)

	for _, p := range report.Profiles {
		fmt.Fprintf(w, "\nProfile %s (account %s):\n", p.Profile, p.AccountID)
		if len(p.Buckets) == 0 {
			fmt.Fprintln(w, "  No buckets in this region.")
			continue
		}

		header := fmt.Sprintf("  %-*s  %-*s  %s", wBucket, "BUCKET", wObjects, "OBJECTS", "SIZE (BYTES)")
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, "  "+strings.Repeat("-", len(header)-2))

		for _, b := range p.Buckets {
			if !b.HasObjectData {
				fmt.Fprintf(w, "  %-*s  no objects during the window\n",
					wBucket, truncateField(b.Bucket, wBucket))
				continue
			}
			size := "-"
			if b.HasSizeData {
				size = fmt.Sprintf("%.0f", b.SizeBytes)
			}
			fmt.Fprintf(w, "  %-*s  %-*.0f  %s\n",
				wBucket, truncateField(b.Bucket, wBucket), wObjects, b.ObjectCount, size)
		}
	}
}

// RenderTagCostTable writes the cost-by-tag report to w: one row per tag
// value, highest spend first, with the period total underneath.
func RenderTagCostTable(w io.Writer, report *models.TagCostReport) {
	fmt.Fprintf(w, "Cost by tag %q (%s to %s)\n\n", report.TagKey, report.PeriodStart, report.PeriodEnd)

	if len(report.Breakdown) == 0 {
		fmt.Fprintln(w, "No spend recorded for this tag in the period.")
		return
	}

	const wValue = 40
	header := fmt.Sprintf("%-*s  %s", wValue, "TAG VALUE", "COST (USD)")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, tc := range report.Breakdown {
		fmt.Fprintf(w, "%-*s  $%.2f\n", wValue, truncateField(tc.TagValue, wValue), tc.CostUSD)
	}

	fmt.Fprintln(w, strings.Repeat("-", len(header)))
	fmt.Fprintf(w, "%-*s  $%.2f\n", wValue, "TOTAL", report.TotalCostUSD)
}
