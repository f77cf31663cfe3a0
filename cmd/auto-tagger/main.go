// Command auto-tagger is the Lambda that tags freshly launched EC2 instances
// and their volumes from CloudTrail RunInstances events delivered through
// EventBridge.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/sirupsen/logrus"

	"github.com/netwarden/netwarden/internal/log"
	"github.com/netwarden/netwarden/internal/policy"
	"github.com/netwarden/netwarden/internal/providers/aws/tagging"
	"github.com/netwarden/netwarden/internal/tagger"
)

func newHandler(ctx context.Context) (*tagger.Handler, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	pol, err := policy.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return tagger.NewHandler(tagging.NewDefaultTagCollector(cfg), pol), nil
}

func main() {
	log.SetupLambda()
	h, err := newHandler(context.Background())
	if err != nil {
		logrus.WithFields(logrus.Fields{"error": err}).Fatal("Lambda initialisation failed")
	}
	lambda.Start(h.HandleEvent)
}
