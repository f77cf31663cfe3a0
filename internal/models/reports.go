package models

// ---------------------------------------------------------------------------
// S3 CloudWatch storage metrics report models
// ---------------------------------------------------------------------------

// BucketMetrics holds the CloudWatch storage metrics for one bucket.
// HasObjectData / HasSizeData are false when CloudWatch returned no datapoints
// for the window; the corresponding values must then be treated as unknown,
// not as zero.
type BucketMetrics struct {
	Bucket        string  `json:"bucket"`
	ObjectCount   float64 `json:"object_count"`
	HasObjectData bool    `json:"has_object_data"`
	SizeBytes     float64 `json:"size_bytes"`
	HasSizeData   bool    `json:"has_size_data"`
}

// ProfileBucketMetrics groups bucket metrics per AWS profile.
type ProfileBucketMetrics struct {
	Profile   string          `json:"profile"`
	AccountID string          `json:"account_id"`
	Buckets   []BucketMetrics `json:"buckets"`
}

// BucketMetricsReport is the full output of the S3 storage metrics report:
// every audited profile's buckets in the target region with their object
// counts and sizes over the reporting window.
type BucketMetricsReport struct {
	Region      string                 `json:"region"`
	WindowStart string                 `json:"window_start"`
	WindowEnd   string                 `json:"window_end"`
	Profiles    []ProfileBucketMetrics `json:"profiles"`
}

// ---------------------------------------------------------------------------
// Cost-by-tag report models
// ---------------------------------------------------------------------------

// TagCost is the aggregated spend attributed to one value of the grouping tag.
type TagCost struct {
	TagValue string  `json:"tag_value"`
	CostUSD  float64 `json:"cost_usd"`
}

// TagCostReport breaks down account spend by the values of a single cost
// allocation tag. Spend with no value for the tag is reported under the
// "(untagged)" entry.
type TagCostReport struct {
	TagKey       string    `json:"tag_key"`
	PeriodStart  string    `json:"period_start"`
	PeriodEnd    string    `json:"period_end"`
	TotalCostUSD float64   `json:"total_cost_usd"`
	Breakdown    []TagCost `json:"breakdown"`
}

// ---------------------------------------------------------------------------
// Resource tagging models
// ---------------------------------------------------------------------------

// ResourceTag is a single key/value tag destined for an EC2 resource.
// Tags are carried in a slice, not a map, so the assembly order of tag
// sources is preserved through to the CreateTags call.
type ResourceTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
