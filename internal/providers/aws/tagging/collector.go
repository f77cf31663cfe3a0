package tagging

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/netwarden/netwarden/internal/models"
)

// TagCollector looks up tags from the identity-linked sources (IAM principal
// tags, SSM parameter paths) and applies assembled tag sets to EC2 instances.
//
// All implementations must use the AWS SDK v2 only.
type TagCollector interface {
	// UserTags returns the tags attached to the named IAM user.
	UserTags(ctx context.Context, userName string) ([]models.ResourceTag, error)

	// RoleTags returns the tags attached to the named IAM role.
	RoleTags(ctx context.Context, roleName string) ([]models.ResourceTag, error)

	// ParameterTags returns the tag definitions stored under an SSM
	// Parameter Store path (key = last path segment, value = parameter value).
	ParameterTags(ctx context.Context, path string) ([]models.ResourceTag, error)

	// ApplyToInstance tags the instance and its attached EBS volumes.
	// Already-applied tags are not rolled back on partial failure.
	ApplyToInstance(ctx context.Context, instanceID string, tags []models.ResourceTag) error
}

// DefaultTagCollector is the production implementation of TagCollector,
// bound to one regional aws.Config at construction (the tagger runs in the
// region the launch event arrived in).
type DefaultTagCollector struct {
	clients *taggingClients
}

// NewDefaultTagCollector returns a collector backed by the real AWS SDK.
func NewDefaultTagCollector(cfg aws.Config) *DefaultTagCollector {
	return &DefaultTagCollector{clients: newDefaultTaggingClients(cfg)}
}

// UserTags implements TagCollector.
func (d *DefaultTagCollector) UserTags(ctx context.Context, userName string) ([]models.ResourceTag, error) {
	return collectUserTags(ctx, d.clients.IAM, userName)
}

// RoleTags implements TagCollector.
func (d *DefaultTagCollector) RoleTags(ctx context.Context, roleName string) ([]models.ResourceTag, error) {
	return collectRoleTags(ctx, d.clients.IAM, roleName)
}

// ParameterTags implements TagCollector.
func (d *DefaultTagCollector) ParameterTags(ctx context.Context, path string) ([]models.ResourceTag, error) {
	return collectParameterTags(ctx, d.clients.SSM, path)
}

// ApplyToInstance implements TagCollector.
func (d *DefaultTagCollector) ApplyToInstance(ctx context.Context, instanceID string, tags []models.ResourceTag) error {
	return applyToInstance(ctx, d.clients.EC2, instanceID, tags)
}
