package tagging

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	ssmsvc "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/netwarden/netwarden/internal/models"
)

// collectUserTags returns the resource tags attached to an IAM user, in the
// order IAM returns them.
func collectUserTags(ctx context.Context, client taggingIAMClient, userName string) ([]models.ResourceTag, error) {
	out, err := client.ListUserTags(ctx, &iamsvc.ListUserTagsInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return nil, fmt.Errorf("list tags for IAM user %s: %w", userName, err)
	}

	tags := make([]models.ResourceTag, 0, len(out.Tags))
	for _, t := range out.Tags {
		tags = append(tags, models.ResourceTag{
			Key:   aws.ToString(t.Key),
			Value: aws.ToString(t.Value),
		})
	}
	return tags, nil
}

// collectRoleTags returns the resource tags attached to an IAM role, in the
// order IAM returns them.
func collectRoleTags(ctx context.Context, client taggingIAMClient, roleName string) ([]models.ResourceTag, error) {
	out, err := client.ListRoleTags(ctx, &iamsvc.ListRoleTagsInput{
		RoleName: aws.String(roleName),
	})
	if err != nil {
		return nil, fmt.Errorf("list tags for IAM role %s: %w", roleName, err)
	}

	tags := make([]models.ResourceTag, 0, len(out.Tags))
	for _, t := range out.Tags {
		tags = append(tags, models.ResourceTag{
			Key:   aws.ToString(t.Key),
			Value: aws.ToString(t.Value),
		})
	}
	return tags, nil
}

// collectParameterTags reads tag definitions stored under an SSM Parameter
// Store path. Each parameter becomes one tag whose key is the last segment of
// the parameter name and whose value is the (decrypted) parameter value.
func collectParameterTags(ctx context.Context, client taggingSSMClient, path string) ([]models.ResourceTag, error) {
	var tags []models.ResourceTag

	paginator := ssmsvc.NewGetParametersByPathPaginator(client, &ssmsvc.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("get SSM parameters under %s: %w", path, err)
		}
		for _, p := range out.Parameters {
			name := aws.ToString(p.Name)
			tags = append(tags, models.ResourceTag{
				Key:   name[strings.LastIndex(name, "/")+1:],
				Value: aws.ToString(p.Value),
			})
		}
	}
	return tags, nil
}
