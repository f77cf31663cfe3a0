package compliance

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ConfigurationItem is the slice of an AWS Config configuration item the rule
// evaluators need. CaptureTime is never zero: it orders the evaluation in the
// Config timeline, so a missing or malformed capture time falls back to the
// evaluation time.
type ConfigurationItem struct {
	Region       string
	ResourceID   string
	ResourceType string
	ARN          string
	CaptureTime  time.Time
}

// invokingEvent mirrors the JSON document AWS Config passes in
// events.ConfigEvent.InvokingEvent.
type invokingEvent struct {
	ConfigurationItem struct {
		AWSRegion    string `json:"awsRegion"`
		ResourceID   string `json:"resourceId"`
		ResourceType string `json:"resourceType"`
		ARN          string `json:"ARN"`
		CaptureTime  string `json:"configurationItemCaptureTime"`
	} `json:"configurationItem"`
}

// ParseInvokingEvent decodes the invoking-event JSON string of an AWS Config
// rule invocation into a ConfigurationItem.
func ParseInvokingEvent(raw string) (ConfigurationItem, error) {
	var ev invokingEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return ConfigurationItem{}, fmt.Errorf("decode invoking event: %w", err)
	}

	ci := ev.ConfigurationItem
	item := ConfigurationItem{
		Region:       ci.AWSRegion,
		ResourceID:   ci.ResourceID,
		ResourceType: ci.ResourceType,
		ARN:          ci.ARN,
		CaptureTime:  parseCaptureTime(ci.CaptureTime),
	}
	if item.ResourceID == "" {
		return ConfigurationItem{}, fmt.Errorf("invoking event carries no resourceId")
	}
	return item, nil
}

// parseCaptureTime parses the RFC3339 capture timestamp, falling back to the
// current time so the ordering timestamp sent back to Config is never zero.
func parseCaptureTime(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"capture_time": raw,
			"error":        err,
		}).Warn("Unparseable configurationItemCaptureTime, using current time")
		return time.Now().UTC()
	}
	return t
}
