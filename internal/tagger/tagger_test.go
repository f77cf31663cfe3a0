package tagger

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/netwarden/netwarden/internal/models"
	"github.com/netwarden/netwarden/internal/policy"
)

// ── stub collector ────────────────────────────────────────────────────────────

type stubCollector struct {
	userTags  map[string][]models.ResourceTag
	roleTags  map[string][]models.ResourceTag
	paramTags map[string][]models.ResourceTag

	userErr  error
	roleErr  error
	paramErr error

	paramPaths []string
	applied    map[string][]models.ResourceTag
	applyErr   map[string]error
}

func newStubCollector() *stubCollector {
	return &stubCollector{
		userTags:  map[string][]models.ResourceTag{},
		roleTags:  map[string][]models.ResourceTag{},
		paramTags: map[string][]models.ResourceTag{},
		applied:   map[string][]models.ResourceTag{},
		applyErr:  map[string]error{},
	}
}

func (s *stubCollector) UserTags(_ context.Context, userName string) ([]models.ResourceTag, error) {
	if s.userErr != nil {
		return nil, s.userErr
	}
	return s.userTags[userName], nil
}

func (s *stubCollector) RoleTags(_ context.Context, roleName string) ([]models.ResourceTag, error) {
	if s.roleErr != nil {
		return nil, s.roleErr
	}
	return s.roleTags[roleName], nil
}

func (s *stubCollector) ParameterTags(_ context.Context, path string) ([]models.ResourceTag, error) {
	s.paramPaths = append(s.paramPaths, path)
	if s.paramErr != nil {
		return nil, s.paramErr
	}
	return s.paramTags[path], nil
}

func (s *stubCollector) ApplyToInstance(_ context.Context, instanceID string, tags []models.ResourceTag) error {
	if err, ok := s.applyErr[instanceID]; ok {
		return err
	}
	s.applied[instanceID] = tags
	return nil
}

// ── event fixtures ────────────────────────────────────────────────────────────

const iamUserDetail = `{
	"eventTime": "2026-08-24T10:00:00Z",
	"userIdentity": {
		"type": "IAMUser",
		"userName": "alice",
		"arn": "arn:aws:iam::111122223333:user/alice"
	},
	"responseElements": {
		"instancesSet": {
			"items": [{"instanceId": "i-0abc"}, {"instanceId": "i-0def"}]
		}
	}
}`

const assumedRoleDetail = `{
	"eventTime": "2026-08-24T11:30:00Z",
	"userIdentity": {
		"type": "AssumedRole",
		"arn": "arn:aws:sts::111122223333:assumed-role/deployer/alice-session",
		"sessionContext": {
			"sessionIssuer": {
				"type": "Role",
				"arn": "arn:aws:iam::111122223333:role/deployer"
			}
		}
	},
	"responseElements": {
		"instancesSet": {
			"items": [{"instanceId": "i-0abc"}]
		}
	}
}`

// ── ParseRunInstancesEvent ────────────────────────────────────────────────────

func TestParseRunInstancesEvent_IAMUser(t *testing.T) {
	ev, err := ParseRunInstancesEvent(json.RawMessage(iamUserDetail))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.IAMUserName != "alice" {
		t.Errorf("user: got %q; want alice", ev.IAMUserName)
	}
	if ev.RoleName != "" || ev.UserID != "" {
		t.Errorf("role fields must stay empty for an IAM user event: %+v", ev)
	}
	if ev.ResourceDate != "2026-08-24T10:00:00Z" {
		t.Errorf("date: got %q", ev.ResourceDate)
	}
	if !reflect.DeepEqual(ev.InstanceIDs, []string{"i-0abc", "i-0def"}) {
		t.Errorf("instances: got %v", ev.InstanceIDs)
	}
}

func TestParseRunInstancesEvent_AssumedRole(t *testing.T) {
	ev, err := ParseRunInstancesEvent(json.RawMessage(assumedRoleDetail))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.RoleName != "deployer" {
		t.Errorf("role: got %q; want deployer", ev.RoleName)
	}
	if ev.UserID != "alice-session" {
		t.Errorf("user id: got %q; want alice-session", ev.UserID)
	}
	if ev.IAMUserName != "" {
		t.Errorf("IAM user must stay empty for a role event, got %q", ev.IAMUserName)
	}
}

func TestParseRunInstancesEvent_NonRoleIssuer(t *testing.T) {
	detail := `{
		"eventTime": "2026-08-24T11:30:00Z",
		"userIdentity": {
			"type": "AssumedRole",
			"arn": "arn:aws:sts::111122223333:assumed-role/x/y",
			"sessionContext": {"sessionIssuer": {"type": "Root", "arn": "arn:aws:iam::111122223333:root"}}
		}
	}`
	ev, err := ParseRunInstancesEvent(json.RawMessage(detail))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.RoleName != "" || ev.UserID != "" {
		t.Errorf("non-Role issuer must not produce role fields: %+v", ev)
	}
}

func TestParseRunInstancesEvent_InvalidJSON(t *testing.T) {
	if _, err := ParseRunInstancesEvent(json.RawMessage(`{"userIdentity":`)); err == nil {
		t.Fatal("want error for truncated detail")
	}
}

func TestParseRunInstancesEvent_NoInstances(t *testing.T) {
	ev, err := ParseRunInstancesEvent(json.RawMessage(`{"eventTime": "2026-08-24T10:00:00Z", "userIdentity": {"type": "IAMUser", "userName": "alice"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ev.InstanceIDs) != 0 {
		t.Errorf("instances: got %v; want none", ev.InstanceIDs)
	}
}

// ── BuildTags ─────────────────────────────────────────────────────────────────

func tagKeys(tags []models.ResourceTag) []string {
	keys := make([]string, 0, len(tags))
	for _, t := range tags {
		keys = append(keys, t.Key)
	}
	return keys
}

func TestBuildTags_UserEventOrder(t *testing.T) {
	src := newStubCollector()
	src.userTags["alice"] = []models.ResourceTag{{Key: "team", Value: "platform"}}
	src.paramTags["/auto-tag/alice/tag"] = []models.ResourceTag{{Key: "project", Value: "atlantis"}}

	ev := LaunchEvent{IAMUserName: "alice", ResourceDate: "2026-08-24T10:00:00Z"}
	tags := BuildTags(context.Background(), src, ev, nil)

	want := []string{"IAM User Name", "team", "project", "Date created"}
	if !reflect.DeepEqual(tagKeys(tags), want) {
		t.Errorf("tag keys: got %v; want %v", tagKeys(tags), want)
	}
}

func TestBuildTags_RoleEventOrder(t *testing.T) {
	src := newStubCollector()
	src.roleTags["deployer"] = []models.ResourceTag{{Key: "owner", Value: "infra"}}
	src.paramTags["/auto-tag/deployer/alice-session/tag"] = []models.ResourceTag{{Key: "env", Value: "staging"}}

	ev := LaunchEvent{RoleName: "deployer", UserID: "alice-session", ResourceDate: "2026-08-24T11:30:00Z"}
	tags := BuildTags(context.Background(), src, ev, nil)

	want := []string{"Date created", "IAM Role Name", "owner", "Created by", "env"}
	if !reflect.DeepEqual(tagKeys(tags), want) {
		t.Errorf("tag keys: got %v; want %v", tagKeys(tags), want)
	}
}

// A role event without a session name skips the Created by tag and the
// role+session SSM lookup.
func TestBuildTags_RoleWithoutUserID(t *testing.T) {
	src := newStubCollector()

	ev := LaunchEvent{RoleName: "deployer"}
	tags := BuildTags(context.Background(), src, ev, nil)

	if !reflect.DeepEqual(tagKeys(tags), []string{"IAM Role Name"}) {
		t.Errorf("tag keys: got %v; want [IAM Role Name]", tagKeys(tags))
	}
	if len(src.paramPaths) != 0 {
		t.Errorf("no SSM lookup expected without a session name, got %v", src.paramPaths)
	}
}

func TestBuildTags_SourceFailuresNonFatal(t *testing.T) {
	src := newStubCollector()
	src.userErr = errors.New("AccessDenied")
	src.paramErr = errors.New("ThrottlingException")

	ev := LaunchEvent{IAMUserName: "alice", ResourceDate: "2026-08-24T10:00:00Z"}
	tags := BuildTags(context.Background(), src, ev, nil)

	want := []string{"IAM User Name", "Date created"}
	if !reflect.DeepEqual(tagKeys(tags), want) {
		t.Errorf("tag keys: got %v; want %v", tagKeys(tags), want)
	}
}

func TestBuildTags_PolicyPrefixAndExtraTags(t *testing.T) {
	src := newStubCollector()
	pol := &policy.Config{
		Version: 1,
		Tagging: policy.TaggingConfig{
			SSMPathPrefix: "/org/auto-tag",
			ExtraTags:     map[string]string{"managed-by": "netwarden"},
		},
	}

	ev := LaunchEvent{IAMUserName: "alice"}
	tags := BuildTags(context.Background(), src, ev, pol)

	if !reflect.DeepEqual(src.paramPaths, []string{"/org/auto-tag/alice/tag"}) {
		t.Errorf("SSM paths: got %v", src.paramPaths)
	}
	last := tags[len(tags)-1]
	if last.Key != "managed-by" || last.Value != "netwarden" {
		t.Errorf("extra tags must come last, got %+v", tags)
	}
}

// ── Handler ───────────────────────────────────────────────────────────────────

func launchEvent(detail string) events.CloudWatchEvent {
	return events.CloudWatchEvent{
		ID:         "event-1",
		DetailType: "AWS API Call via CloudTrail",
		Detail:     json.RawMessage(detail),
	}
}

func TestHandleEvent(t *testing.T) {
	src := newStubCollector()
	h := NewHandler(src, nil)

	if err := h.HandleEvent(context.Background(), launchEvent(iamUserDetail)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{"i-0abc", "i-0def"} {
		tags, ok := src.applied[id]
		if !ok {
			t.Fatalf("instance %s not tagged", id)
		}
		if tags[0].Key != "IAM User Name" || tags[0].Value != "alice" {
			t.Errorf("instance %s tags: got %+v", id, tags)
		}
	}
}

func TestHandleEvent_PartialFailure(t *testing.T) {
	src := newStubCollector()
	src.applyErr["i-0abc"] = errors.New("InvalidInstanceID.NotFound")
	h := NewHandler(src, nil)

	err := h.HandleEvent(context.Background(), launchEvent(iamUserDetail))
	if err == nil {
		t.Fatal("want error when an instance fails to tag")
	}

	// The other instance must still have been tagged.
	if _, ok := src.applied["i-0def"]; !ok {
		t.Error("failure on one instance must not stop the others")
	}
}

func TestHandleEvent_NoInstances(t *testing.T) {
	src := newStubCollector()
	h := NewHandler(src, nil)

	detail := `{"eventTime": "2026-08-24T10:00:00Z", "userIdentity": {"type": "IAMUser", "userName": "alice"}}`
	if err := h.HandleEvent(context.Background(), launchEvent(detail)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.applied) != 0 {
		t.Error("nothing must be tagged for an event without instances")
	}
}

func TestHandleEvent_MalformedDetail(t *testing.T) {
	src := newStubCollector()
	h := NewHandler(src, nil)

	if err := h.HandleEvent(context.Background(), launchEvent(`{"userIdentity":`)); err == nil {
		t.Fatal("want error for malformed detail")
	}
}
