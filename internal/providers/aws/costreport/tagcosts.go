package costreport

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/netwarden/netwarden/internal/models"
)

// UntaggedLabel is the breakdown entry that aggregates spend carrying no
// value for the grouping tag.
const UntaggedLabel = "(untagged)"

// collectTagCosts calls Cost Explorer GetCostAndUsage for [start, end)
// grouped by the values of one cost allocation tag and returns the aggregated
// TagCostReport.
//
// Granularity is MONTHLY; costs are summed across all returned time periods
// so the report covers the full requested window (which may span two calendar
// months). Tag values are sorted descending by cost.
func collectTagCosts(
	ctx context.Context,
	client ceAPIClient,
	tagKey string,
	start, end string,
) (*models.TagCostReport, error) {
	// Per-tag-value cost accumulator across all time periods.
	valueTotals := make(map[string]float64)

	var nextToken *string
	for {
		out, err := client.GetCostAndUsage(ctx, &ce.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(start),
				End:   aws.String(end),
			},
			Granularity: cetypes.GranularityMonthly,
			Metrics:     []string{"UnblendedCost"},
			GroupBy: []cetypes.GroupDefinition{
				{
					Key:  aws.String(tagKey),
					Type: cetypes.GroupDefinitionTypeTag,
				},
			},
			NextPageToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("GetCostAndUsage (by tag %s): %w", tagKey, err)
		}

		for _, result := range out.ResultsByTime {
			for _, group := range result.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				metric, ok := group.Metrics["UnblendedCost"]
				if !ok {
					continue
				}
				valueTotals[tagValueFromGroupKey(group.Keys[0])] += parseCostFloat(metric.Amount)
			}
		}

		if out.NextPageToken == nil {
			break
		}
		nextToken = out.NextPageToken
	}

	// Compute grand total.
	var totalCost float64
	for _, v := range valueTotals {
		totalCost += v
	}

	// Build breakdown sorted by cost descending (biggest spender first);
	// equal costs fall back to the tag value so the order is stable.
	breakdown := make([]models.TagCost, 0, len(valueTotals))
	for value, cost := range valueTotals {
		if cost > 0 {
			breakdown = append(breakdown, models.TagCost{
				TagValue: value,
				CostUSD:  cost,
			})
		}
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].CostUSD != breakdown[j].CostUSD {
			return breakdown[i].CostUSD > breakdown[j].CostUSD
		}
		return breakdown[i].TagValue < breakdown[j].TagValue
	})

	return &models.TagCostReport{
		TagKey:       tagKey,
		PeriodStart:  start,
		PeriodEnd:    end,
		TotalCostUSD: totalCost,
		Breakdown:    breakdown,
	}, nil
}

// tagValueFromGroupKey extracts the tag value from a Cost Explorer TAG group
// key, which arrives as "key$value". Spend without the tag has an empty value
// part and is attributed to UntaggedLabel.
func tagValueFromGroupKey(key string) string {
	parts := strings.SplitN(key, "$", 2)
	if len(parts) < 2 || parts[1] == "" {
		return UntaggedLabel
	}
	return parts[1]
}

// parseCostFloat parses a cost string returned by the Cost Explorer API
// (e.g. "1234.5678"). Returns 0 on parse failure; CE strings should always
// be valid decimals, so 0 is a safe sentinel.
func parseCostFloat(s *string) float64 {
	if s == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(*s, 64)
	return v
}
