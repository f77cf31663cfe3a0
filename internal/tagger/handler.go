package tagger

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/policy"
)

// TagApplier combines the tag sources with the ability to write the
// assembled set to an instance. Satisfied by tagging.DefaultTagCollector.
type TagApplier interface {
	TagSource
	ApplyToInstance(ctx context.Context, instanceID string, tags []models.ResourceTag) error
}

// Handler tags freshly launched EC2 instances from RunInstances CloudTrail
// events.
type Handler struct {
	collector TagApplier
	policy    *policy.Config
}

// NewHandler returns a Handler using collector for lookups and tag writes.
// pol may be nil (defaults apply).
func NewHandler(collector TagApplier, pol *policy.Config) *Handler {
	return &Handler{collector: collector, policy: pol}
}

// HandleEvent processes one EventBridge-delivered RunInstances event: parse
// the caller identity, assemble the tag set, and apply it to every launched
// instance and its volumes. Instances are tagged independently; the returned
// error reports how many failed.
func (h *Handler) HandleEvent(ctx context.Context, event events.CloudWatchEvent) error {
	ev, err := ParseRunInstancesEvent(event.Detail)
	if err != nil {
		return err
	}

	if len(ev.InstanceIDs) == 0 {
		logrus.WithField("event_id", event.ID).Info("No EC2 resources to tag")
		return nil
	}

	tags := BuildTags(ctx, h.collector, ev, h.policy)

	var failed int
	for _, instanceID := range ev.InstanceIDs {
		if err := h.collector.ApplyToInstance(ctx, instanceID, tags); err != nil {
			failed++
			logrus.WithFields(logrus.Fields{
				"instance_id": instanceID,
				"error":       err,
			}).Error("No tags applied to instance")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"instance_id": instanceID,
			"tags":        len(tags),
		}).Info("Tagged instance and attached volumes")
	}

	if failed > 0 {
		return fmt.Errorf("tagging failed for %d of %d instances", failed, len(ev.InstanceIDs))
	}
	return nil
}
