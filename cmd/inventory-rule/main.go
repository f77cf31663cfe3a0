// Command inventory-rule is the AWS Config custom rule Lambda that evaluates
// an EC2 instance against the region's full public-instance inventory rather
// than a single per-instance subnet lookup.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/sirupsen/logrus"

	"github.com/netwarden/netwarden/internal/compliance"
	"github.com/netwarden/netwarden/internal/log"
	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/policy"
	awsnetwork "github.com/netwarden/netwarden/internal/providers/aws/network"
)

// ruleHandler holds the dependencies that live for the whole Lambda container.
type ruleHandler struct {
	baseCfg   aws.Config
	collector awsnetwork.NetworkCollector
	reporter  *compliance.Reporter
	policy    *policy.Config
}

func newRuleHandler(ctx context.Context) (*ruleHandler, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	pol, err := policy.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return &ruleHandler{
		baseCfg:   cfg,
		collector: awsnetwork.NewDefaultNetworkCollector(),
		reporter:  compliance.NewReporter(configsvc.NewFromConfig(cfg)),
		policy:    pol,
	}, nil
}

// regionConfig scopes the base config to the evaluated item's region.
func (h *ruleHandler) regionConfig(region string) aws.Config {
	cfg := h.baseCfg
	if region != "" {
		cfg.Region = region
	}
	return cfg
}

func (h *ruleHandler) handle(ctx context.Context, event events.ConfigEvent) error {
	item, err := compliance.ParseInvokingEvent(event.InvokingEvent)
	if err != nil {
		return err
	}

	if event.EventLeftScope {
		// The resource left the rule's scope (deleted or filtered out);
		// clear any prior verdict.
		return h.reporter.Report(ctx, event.ResultToken, []compliance.Evaluation{{
			ResourceType: item.ResourceType,
			ResourceID:   item.ResourceID,
			Compliance:   compliance.NotApplicable,
			OrderingTime: item.CaptureTime,
		}})
	}

	ev := h.evaluate(ctx, item)
	return h.reporter.Report(ctx, event.ResultToken, []compliance.Evaluation{ev})
}

// evaluate produces the verdict for one configuration item. Inventory
// failures fail open: when the region cannot be collected the instance is
// evaluated against an empty inventory and comes out COMPLIANT.
func (h *ruleHandler) evaluate(ctx context.Context, item compliance.ConfigurationItem) compliance.Evaluation {
	if item.ResourceType != compliance.ResourceTypeEC2Instance {
		return compliance.EvaluateInstanceInventory(item, nil)
	}

	cfg := h.regionConfig(item.Region)

	regionData, err := h.collector.CollectRegion(ctx, cfg, item.Region)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"region": item.Region,
			"error":  err,
		}).Warn("Region inventory collection failed, evaluating with empty inventory")
	}

	var publicIDs []string
	if regionData != nil {
		for _, inst := range regionData.Instances {
			publicIDs = append(publicIDs, inst.InstanceID)
		}
	}

	ev := compliance.EvaluateInstanceInventory(item, publicIDs)
	if h.policy.IsResourceExempt(item.ResourceID) || h.policy.IsSubnetExempt(instanceSubnet(regionData, item.ResourceID)) {
		ev = compliance.Exempt(ev)
	}
	return ev
}

// instanceSubnet returns the subnet the inventory recorded for instanceID,
// or "" when the instance is not in the public inventory.
func instanceSubnet(regionData *models.NetworkRegionData, instanceID string) string {
	if regionData == nil {
		return ""
	}
	for _, inst := range regionData.Instances {
		if inst.InstanceID == instanceID {
			return inst.SubnetID
		}
	}
	return ""
}

func main() {
	log.SetupLambda()
	h, err := newRuleHandler(context.Background())
	if err != nil {
		logrus.WithFields(logrus.Fields{"error": err}).Fatal("Lambda initialisation failed")
	}
	lambda.Start(h.handle)
}
