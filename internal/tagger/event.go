package tagger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Identity types CloudTrail reports for the RunInstances caller.
const (
	identityIAMUser       = "IAMUser"
	identityAssumedRole   = "AssumedRole"
	identityFederatedUser = "FederatedUser"
	issuerRole            = "Role"
)

// LaunchEvent is the distilled RunInstances CloudTrail event: who launched,
// when, and which instances came up. Exactly one of IAMUserName and RoleName
// is set for a well-formed event; UserID accompanies RoleName when the
// session ARN carries a session name.
type LaunchEvent struct {
	IAMUserName  string
	RoleName     string
	UserID       string
	ResourceDate string
	InstanceIDs  []string
}

// runInstancesDetail mirrors the CloudTrail detail fields the tagger reads.
type runInstancesDetail struct {
	EventTime    string `json:"eventTime"`
	UserIdentity struct {
		Type           string `json:"type"`
		UserName       string `json:"userName"`
		ARN            string `json:"arn"`
		SessionContext struct {
			SessionIssuer struct {
				Type string `json:"type"`
				ARN  string `json:"arn"`
			} `json:"sessionIssuer"`
		} `json:"sessionContext"`
	} `json:"userIdentity"`
	ResponseElements struct {
		InstancesSet struct {
			Items []struct {
				InstanceID string `json:"instanceId"`
			} `json:"items"`
		} `json:"instancesSet"`
	} `json:"responseElements"`
}

// ParseRunInstancesEvent extracts a LaunchEvent from the CloudTrail detail
// document of an EventBridge-delivered RunInstances event.
func ParseRunInstancesEvent(detail json.RawMessage) (LaunchEvent, error) {
	var d runInstancesDetail
	if err := json.Unmarshal(detail, &d); err != nil {
		return LaunchEvent{}, fmt.Errorf("decode CloudTrail detail: %w", err)
	}

	ev := LaunchEvent{ResourceDate: d.EventTime}

	switch d.UserIdentity.Type {
	case identityIAMUser:
		ev.IAMUserName = d.UserIdentity.UserName
	case identityAssumedRole, identityFederatedUser:
		// The sessionIssuer tells which IAM role was assumed; the identity
		// ARN's last segment names the session (usually the human behind it).
		if d.UserIdentity.SessionContext.SessionIssuer.Type == issuerRole {
			ev.RoleName = lastARNSegment(d.UserIdentity.SessionContext.SessionIssuer.ARN)
			if d.UserIdentity.ARN != "" {
				ev.UserID = lastARNSegment(d.UserIdentity.ARN)
			}
		}
	}

	for _, item := range d.ResponseElements.InstancesSet.Items {
		if item.InstanceID != "" {
			ev.InstanceIDs = append(ev.InstanceIDs, item.InstanceID)
		}
	}
	return ev, nil
}

// lastARNSegment returns the part of arn after the final slash, or the whole
// string when it carries none.
func lastARNSegment(arn string) string {
	if arn == "" {
		return ""
	}
	return arn[strings.LastIndex(arn, "/")+1:]
}
