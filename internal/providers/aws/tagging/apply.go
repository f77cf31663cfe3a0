package tagging

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/sirupsen/logrus"

	"github.com/netwarden/netwarden/internal/models"
)

// applyToInstance tags the instance, then finds its attached EBS volumes and
// tags each of them with the same set.
//
// Instance tags are never rolled back: a volume-stage failure returns an
// error while the instance keeps the tags already applied. Volumes tagged
// before the failing one keep theirs too.
func applyToInstance(ctx context.Context, client taggingEC2Client, instanceID string, tags []models.ResourceTag) error {
	if len(tags) == 0 {
		return fmt.Errorf("no tags to apply to %s", instanceID)
	}
	ec2Tags := toEC2Tags(tags)

	if _, err := client.CreateTags(ctx, &ec2svc.CreateTagsInput{
		Resources: []string{instanceID},
		Tags:      ec2Tags,
	}); err != nil {
		return fmt.Errorf("tag instance %s: %w", instanceID, err)
	}

	volumeIDs, err := attachedVolumeIDs(ctx, client, instanceID)
	if err != nil {
		return fmt.Errorf("list volumes of %s: %w", instanceID, err)
	}

	for _, volumeID := range volumeIDs {
		if _, err := client.CreateTags(ctx, &ec2svc.CreateTagsInput{
			Resources: []string{volumeID},
			Tags:      ec2Tags,
		}); err != nil {
			return fmt.Errorf("tag volume %s of %s: %w", volumeID, instanceID, err)
		}
		logrus.WithFields(logrus.Fields{
			"instance_id": instanceID,
			"volume_id":   volumeID,
		}).Debug("Tagged attached volume")
	}
	return nil
}

// attachedVolumeIDs returns the IDs of all EBS volumes attached to the instance.
func attachedVolumeIDs(ctx context.Context, client taggingEC2Client, instanceID string) ([]string, error) {
	var ids []string

	paginator := ec2svc.NewDescribeVolumesPaginator(client, &ec2svc.DescribeVolumesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("attachment.instance-id"),
				Values: []string{instanceID},
			},
		},
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range out.Volumes {
			ids = append(ids, aws.ToString(v.VolumeId))
		}
	}
	return ids, nil
}

// toEC2Tags converts internal tags to SDK tags, preserving order.
func toEC2Tags(tags []models.ResourceTag) []ec2types.Tag {
	out := make([]ec2types.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, ec2types.Tag{
			Key:   aws.String(t.Key),
			Value: aws.String(t.Value),
		})
	}
	return out
}
