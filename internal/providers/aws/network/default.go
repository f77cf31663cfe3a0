package awsnetwork

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/providers/aws/common"
	"github.com/netwarden/netwarden/internal/subnets"
)

// DefaultNetworkCollector is the production implementation of NetworkCollector.
// It uses AWS SDK v2 to collect routing topology and inventory region by region.
//
// Inject a custom netClientFactory via NewDefaultNetworkCollectorWithFactory
// to replace real SDK clients with mocks in unit tests.
type DefaultNetworkCollector struct {
	factory netClientFactory
}

// NewDefaultNetworkCollector returns a collector backed by the real AWS SDK.
func NewDefaultNetworkCollector() *DefaultNetworkCollector {
	return &DefaultNetworkCollector{factory: newDefaultNetClients}
}

// NewDefaultNetworkCollectorWithFactory returns a collector that uses f to
// create its service clients. Pass a mock factory in tests.
func NewDefaultNetworkCollectorWithFactory(f netClientFactory) *DefaultNetworkCollector {
	return &DefaultNetworkCollector{factory: f}
}

// maxConcurrentRegions is the maximum number of regions collected in parallel.
const maxConcurrentRegions = 5

// CollectAll collects every requested region for one profile, up to
// maxConcurrentRegions at a time. A failing region is logged at warn level
// and skipped; the audit proceeds with whatever regions could be collected.
// An error is returned only when no region yields data at all.
func (d *DefaultNetworkCollector) CollectAll(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
) ([]models.NetworkRegionData, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions to collect for profile %q", profile.ProfileName)
	}

	sem := make(chan struct{}, maxConcurrentRegions)

	var (
		mu     sync.Mutex
		all    []models.NetworkRegionData
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, region := range regions {
		region := region
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			return nil, gctx.Err()
		}

		regionalCfg := provider.ConfigForRegion(profile, region)

		g.Go(func() error {
			defer func() { <-sem }()

			rd, err := d.CollectRegion(gctx, regionalCfg, region)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"profile": profile.ProfileName,
					"region":  region,
				}).WithError(err).Warn("skipping region: collection failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			all = append(all, *rd)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failed == len(regions) {
		return nil, fmt.Errorf("all %d regions failed for profile %q", failed, profile.ProfileName)
	}
	return all, nil
}

// CollectRegion gathers the topology of one region, classifies its public
// subnets, and inventories the EC2 instances, load balancers, and RDS
// instances sitting inside the public set.
func (d *DefaultNetworkCollector) CollectRegion(
	ctx context.Context,
	cfg aws.Config,
	region string,
) (*models.NetworkRegionData, error) {
	clients := d.factory(cfg)

	topo, err := collectTopology(ctx, clients.EC2, region)
	if err != nil {
		return nil, fmt.Errorf("collect topology in %s: %w", region, err)
	}
	public := subnets.ClassifyPublic(topo)

	rd := &models.NetworkRegionData{
		Region:        region,
		PublicSubnets: public.Sorted(),
	}

	rd.Instances, err = collectPublicInstances(ctx, clients.EC2, public)
	if err != nil {
		return nil, fmt.Errorf("collect public instances in %s: %w", region, err)
	}

	rd.LoadBalancers, err = collectPublicLoadBalancers(ctx, clients.ELB, public)
	if err != nil {
		return nil, fmt.Errorf("collect public load balancers in %s: %w", region, err)
	}

	rd.DBInstances, err = collectPublicDBInstances(ctx, clients.RDS, public)
	if err != nil {
		return nil, fmt.Errorf("collect public DB instances in %s: %w", region, err)
	}

	return rd, nil
}

// PublicSubnets fetches the region's routing topology and classifies it.
// On failure the returned set is empty, never nil, so membership tests on
// the result stay valid even when the error is only logged.
func (d *DefaultNetworkCollector) PublicSubnets(
	ctx context.Context,
	cfg aws.Config,
	region string,
) (models.SubnetSet, error) {
	clients := d.factory(cfg)
	topo, err := collectTopology(ctx, clients.EC2, region)
	if err != nil {
		return make(models.SubnetSet), fmt.Errorf("collect topology in %s: %w", region, err)
	}
	return subnets.ClassifyPublic(topo), nil
}

// InstanceSubnet implements NetworkCollector.
func (d *DefaultNetworkCollector) InstanceSubnet(
	ctx context.Context,
	cfg aws.Config,
	instanceID string,
) (string, error) {
	return lookupInstanceSubnet(ctx, d.factory(cfg).EC2, instanceID)
}

// LoadBalancerSubnets implements NetworkCollector.
func (d *DefaultNetworkCollector) LoadBalancerSubnets(
	ctx context.Context,
	cfg aws.Config,
	arn string,
) ([]string, error) {
	return lookupLoadBalancerSubnets(ctx, d.factory(cfg).ELB, arn)
}
