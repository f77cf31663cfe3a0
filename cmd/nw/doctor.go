package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/spf13/cobra"

	"github.com/netwarden/netwarden/internal/policy"
	"github.com/netwarden/netwarden/internal/providers/aws/common"
	netpack "github.com/netwarden/netwarden/internal/rulepacks/network"
)

// DoctorResult is the structured output of nw doctor. It can be serialised to
// JSON via --format=json or rendered as a human-readable table (default).
type DoctorResult struct {
	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		RegionsOK   bool   `json:"regions_ok"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	ConfigService struct {
		RecorderOn bool   `json:"recorder_on"`
		Error      string `json:"error,omitempty"`
	} `json:"config_service"`

	CloudTrail struct {
		MultiRegionTrail bool   `json:"multi_region_trail"`
		TrailName        string `json:"trail_name,omitempty"`
		Error            string `json:"error,omitempty"`
	} `json:"cloudtrail"`

	Policy struct {
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	OverallHealthy bool `json:"overall_healthy"`
}

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Run environment diagnostics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			profile, _ := cmd.Flags().GetString("profile")
			result, err := runDoctor(
				context.Background(),
				common.NewDefaultAWSClientProvider(),
				cmd.OutOrStdout(),
				format,
				profile,
			)
			if err != nil {
				// Rendering failure; let Cobra/main handle it.
				return err
			}
			if !result.OverallHealthy {
				// Exit directly so no error text reaches main.go's
				// fmt.Fprintln(os.Stderr, err) path.
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	cmd.Flags().String("profile", "", "AWS profile to use (default: credential chain)")
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures (e.g. JSON encode error).
// Callers must inspect result.OverallHealthy to determine whether the
// environment is healthy; runDoctor itself never returns an error for an
// unhealthy result so that no error text leaks to callers (such as main).
func runDoctor(ctx context.Context, awsProvider common.AWSClientProvider, w io.Writer, format, profile string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, awsProvider, profile)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// It performs no rendering; callers decide how to present the result.
func collectDoctorResult(ctx context.Context, awsProvider common.AWSClientProvider, profile string) DoctorResult {
	var result DoctorResult

	// AWS: credentials → STS account ID → region discovery.
	// An empty profile string selects the default credential chain.
	if profile != "" {
		result.AWS.Profile = profile
	}
	profileCfg, err := awsProvider.LoadProfile(ctx, profile)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profileCfg.AccountID
		_, err = awsProvider.GetActiveRegions(ctx, profileCfg)
		if err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.RegionsOK = true
		}

		// AWS Config: the compliance rules only evaluate resources an active
		// configuration recorder captures.
		recOut, recErr := profileCfg.Clients.Config.DescribeConfigurationRecorderStatus(
			ctx, &configsvc.DescribeConfigurationRecorderStatusInput{})
		if recErr != nil {
			result.ConfigService.Error = recErr.Error()
		} else {
			for _, status := range recOut.ConfigurationRecordersStatus {
				if status.Recording {
					result.ConfigService.RecorderOn = true
					break
				}
			}
			if !result.ConfigService.RecorderOn {
				result.ConfigService.Error = "no configuration recorder is recording"
			}
		}

		// CloudTrail: the launch tagger is driven by management events, which
		// need a multi-region trail to cover launches in every region.
		// IncludeShadowTrails false so only trails owned by this account are
		// returned (not shadow copies of organization trails).
		trailOut, trailErr := profileCfg.Clients.CloudTrail.DescribeTrails(
			ctx, &cloudtrailsvc.DescribeTrailsInput{
				IncludeShadowTrails: aws.Bool(false),
			})
		if trailErr != nil {
			result.CloudTrail.Error = trailErr.Error()
		} else {
			for _, trail := range trailOut.TrailList {
				if aws.ToBool(trail.IsMultiRegionTrail) {
					result.CloudTrail.MultiRegionTrail = true
					result.CloudTrail.TrailName = aws.ToString(trail.Name)
					break
				}
			}
			if !result.CloudTrail.MultiRegionTrail {
				result.CloudTrail.Error = "no multi-region trail found"
			}
		}
	}

	// Policy: stat → load → validate (file is optional).
	_, statErr := os.Stat(defaultPolicyPath)
	if statErr == nil {
		result.Policy.Present = true
		cfg, loadErr := policy.LoadPolicy(defaultPolicyPath)
		if loadErr != nil {
			result.Policy.Errors = []string{loadErr.Error()}
		} else {
			errs := policy.Validate(cfg, doctorAllRuleIDs())
			if len(errs) == 0 {
				result.Policy.Valid = true
			} else {
				for _, e := range errs {
					result.Policy.Errors = append(result.Policy.Errors, e.Error())
				}
			}
		}
	} else if !os.IsNotExist(statErr) {
		// Stat error other than "not found": treat as present but unreadable.
		result.Policy.Present = true
		result.Policy.Errors = []string{statErr.Error()}
	}

	result.OverallHealthy = result.AWS.Credentials &&
		result.AWS.RegionsOK &&
		result.ConfigService.RecorderOn &&
		result.CloudTrail.MultiRegionTrail &&
		(!result.Policy.Present || result.Policy.Valid)

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
		doctorPrint(w, "Regions API", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		if result.AWS.RegionsOK {
			doctorPrint(w, "Regions API", "OK", "")
		} else {
			doctorPrint(w, "Regions API", "FAIL", result.AWS.Error)
		}
	}

	fmt.Fprintln(w, "\nAWS Config:")
	if !result.AWS.Credentials {
		doctorPrint(w, "Recorder", "FAIL", "skipped")
	} else if result.ConfigService.RecorderOn {
		doctorPrint(w, "Recorder", "OK", "recording")
	} else {
		doctorPrint(w, "Recorder", "FAIL", result.ConfigService.Error)
	}

	fmt.Fprintln(w, "\nCloudTrail:")
	if !result.AWS.Credentials {
		doctorPrint(w, "Multi-Region Trail", "FAIL", "skipped")
	} else if result.CloudTrail.MultiRegionTrail {
		doctorPrint(w, "Multi-Region Trail", "OK", result.CloudTrail.TrailName)
	} else {
		doctorPrint(w, "Multi-Region Trail", "FAIL", result.CloudTrail.Error)
	}

	fmt.Fprintln(w, "\nPolicy:")
	if !result.Policy.Present {
		doctorPrint(w, "netwarden.yaml present", "Not found (optional)", "")
	} else {
		doctorPrint(w, "netwarden.yaml present", "YES", "")
		if result.Policy.Valid {
			doctorPrint(w, "Policy valid", "OK", "")
		} else {
			for _, e := range result.Policy.Errors {
				doctorPrint(w, "Policy valid", "FAIL", e)
			}
		}
	}
}

// doctorAllRuleIDs returns all known rule IDs from the network rule pack.
func doctorAllRuleIDs() []string {
	var ids []string
	for _, r := range netpack.New() {
		ids = append(ids, r.ID())
	}
	return ids
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
