package costreport

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
)

// ceAPIClient covers the only Cost Explorer operation this package uses.
// The real *costexplorer.Client satisfies it automatically; tests swap in a
// stub.
type ceAPIClient interface {
	GetCostAndUsage(
		ctx context.Context,
		params *ce.GetCostAndUsageInput,
		optFns ...func(*ce.Options),
	) (*ce.GetCostAndUsageOutput, error)
}

// ceClientFactory creates a ceAPIClient from an aws.Config.
type ceClientFactory func(cfg aws.Config) ceAPIClient

// newDefaultCEClient is the production ceClientFactory. Cost Explorer is a
// global service; the client is always pointed at us-east-1 regardless of the
// region in cfg.
func newDefaultCEClient(cfg aws.Config) ceAPIClient {
	ceCfg := cfg
	ceCfg.Region = "us-east-1"
	return ce.NewFromConfig(ceCfg)
}
