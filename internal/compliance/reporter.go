package compliance

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	configtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"
	"github.com/sirupsen/logrus"
)

// maxEvaluationsPerPut is the PutEvaluations batch limit imposed by the
// AWS Config API.
const maxEvaluationsPerPut = 100

// ConfigPutClient covers the only Config operation the reporter uses.
// The real *configservice.Client satisfies it automatically.
type ConfigPutClient interface {
	PutEvaluations(
		ctx context.Context,
		params *configservice.PutEvaluationsInput,
		optFns ...func(*configservice.Options),
	) (*configservice.PutEvaluationsOutput, error)
}

// Reporter delivers rule evaluations back to AWS Config.
//
// TestMode forwards the PutEvaluations dry-run flag: Config validates the
// evaluations without recording them.
type Reporter struct {
	client   ConfigPutClient
	TestMode bool
}

// NewReporter returns a Reporter delivering through client.
func NewReporter(client ConfigPutClient) *Reporter {
	return &Reporter{client: client}
}

// Report sends the evaluations under the invocation's result token, batching
// to the API limit. An empty evaluation set sends nothing.
func (r *Reporter) Report(ctx context.Context, resultToken string, evals []Evaluation) error {
	for start := 0; start < len(evals); start += maxEvaluationsPerPut {
		end := start + maxEvaluationsPerPut
		if end > len(evals) {
			end = len(evals)
		}

		out, err := r.client.PutEvaluations(ctx, &configservice.PutEvaluationsInput{
			Evaluations: toConfigEvaluations(evals[start:end]),
			ResultToken: aws.String(resultToken),
			TestMode:    r.TestMode,
		})
		if err != nil {
			return fmt.Errorf("put evaluations: %w", err)
		}
		if n := len(out.FailedEvaluations); n > 0 {
			return fmt.Errorf("put evaluations: %d of %d rejected by AWS Config", n, end-start)
		}

		logrus.WithFields(logrus.Fields{
			"evaluations": end - start,
			"test_mode":   r.TestMode,
		}).Debug("Delivered evaluation batch")
	}
	return nil
}

// toConfigEvaluations converts internal evaluations to their SDK form.
func toConfigEvaluations(evals []Evaluation) []configtypes.Evaluation {
	out := make([]configtypes.Evaluation, 0, len(evals))
	for _, ev := range evals {
		sdkEval := configtypes.Evaluation{
			ComplianceResourceType: aws.String(ev.ResourceType),
			ComplianceResourceId:   aws.String(ev.ResourceID),
			ComplianceType:         configtypes.ComplianceType(ev.Compliance),
			OrderingTimestamp:      aws.Time(ev.OrderingTime),
		}
		if ev.Annotation != "" {
			sdkEval.Annotation = aws.String(ev.Annotation)
		}
		out = append(out, sdkEval)
	}
	return out
}
