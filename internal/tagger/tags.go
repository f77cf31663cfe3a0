package tagger

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/policy"
)

// Tag keys written by the tagger itself; the remaining keys come from IAM
// principal tags, SSM parameters, and the policy's extra tags.
const (
	tagIAMUserName = "IAM User Name"
	tagDateCreated = "Date created"
	tagIAMRoleName = "IAM Role Name"
	tagCreatedBy   = "Created by"
)

// TagSource resolves tags from the identity-linked stores. Satisfied by
// tagging.DefaultTagCollector.
type TagSource interface {
	UserTags(ctx context.Context, userName string) ([]models.ResourceTag, error)
	RoleTags(ctx context.Context, roleName string) ([]models.ResourceTag, error)
	ParameterTags(ctx context.Context, path string) ([]models.ResourceTag, error)
}

// BuildTags assembles the tag set for the instances of a launch event.
//
// Assembly order is part of the contract (later CreateTags entries win on
// duplicate keys, so more specific sources come later):
//
//  1. user identity tag, the user's IAM tags, the user's SSM parameter tags
//  2. creation date tag
//  3. role identity tag, the role's IAM tags, the session's creator tag,
//     the role+session SSM parameter tags
//  4. the policy's extra default tags
//
// Failing sources contribute nothing; every tag that can be resolved is.
func BuildTags(ctx context.Context, src TagSource, ev LaunchEvent, pol *policy.Config) []models.ResourceTag {
	var tags []models.ResourceTag

	if ev.IAMUserName != "" {
		tags = append(tags, models.ResourceTag{Key: tagIAMUserName, Value: ev.IAMUserName})
		tags = append(tags, fetchSource("IAM user tags", func() ([]models.ResourceTag, error) {
			return src.UserTags(ctx, ev.IAMUserName)
		})...)
		tags = append(tags, fetchSource("SSM user tags", func() ([]models.ResourceTag, error) {
			return src.ParameterTags(ctx, pol.SSMPathPrefix()+"/"+ev.IAMUserName+"/tag")
		})...)
	}

	if ev.ResourceDate != "" {
		tags = append(tags, models.ResourceTag{Key: tagDateCreated, Value: ev.ResourceDate})
	}

	if ev.RoleName != "" {
		tags = append(tags, models.ResourceTag{Key: tagIAMRoleName, Value: ev.RoleName})
		tags = append(tags, fetchSource("IAM role tags", func() ([]models.ResourceTag, error) {
			return src.RoleTags(ctx, ev.RoleName)
		})...)
		if ev.UserID != "" {
			tags = append(tags, models.ResourceTag{Key: tagCreatedBy, Value: ev.UserID})
			tags = append(tags, fetchSource("SSM role tags", func() ([]models.ResourceTag, error) {
				return src.ParameterTags(ctx, pol.SSMPathPrefix()+"/"+ev.RoleName+"/"+ev.UserID+"/tag")
			})...)
		}
	}

	return append(tags, pol.ExtraTags()...)
}

// fetchSource runs one tag lookup, logging and absorbing its failure.
func fetchSource(name string, fetch func() ([]models.ResourceTag, error)) []models.ResourceTag {
	tags, err := fetch()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"source": name,
			"error":  err,
		}).Warn("Tag source lookup failed, continuing without it")
		return nil
	}
	return tags
}
