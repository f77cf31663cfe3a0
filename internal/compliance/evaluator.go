package compliance

import (
	"time"

	"github.com/netwarden/netwarden/internal/models"
)

// ComplianceType is an AWS Config compliance verdict in wire format.
type ComplianceType string

const (
	Compliant     ComplianceType = "COMPLIANT"
	NonCompliant  ComplianceType = "NON_COMPLIANT"
	NotApplicable ComplianceType = "NOT_APPLICABLE"
)

// Config resource types the rules evaluate.
const (
	ResourceTypeEC2Instance  = "AWS::EC2::Instance"
	ResourceTypeLoadBalancer = "AWS::ElasticLoadBalancingV2::LoadBalancer"
)

const (
	ec2Annotation = "Is this EC2 instance in a public subnet?"
	elbAnnotation = "Is this ELB instance in a public subnet?"

	// exemptSuffix marks verdicts downgraded by a policy exemption.
	exemptSuffix = " (exempt by policy)"
)

// Evaluation is one compliance verdict destined for PutEvaluations.
type Evaluation struct {
	ResourceType string
	ResourceID   string
	Compliance   ComplianceType
	Annotation   string
	OrderingTime time.Time
}

// EvaluateEC2Instance decides whether an EC2 instance sits in a public
// subnet. Resources of any other type are NOT_APPLICABLE. An empty
// instanceSubnet (instance gone or subnet unknown) is never in the public
// set, so the instance evaluates COMPLIANT.
func EvaluateEC2Instance(item ConfigurationItem, instanceSubnet string, public models.SubnetSet) Evaluation {
	ev := Evaluation{
		ResourceType: item.ResourceType,
		ResourceID:   item.ResourceID,
		Annotation:   ec2Annotation,
		OrderingTime: item.CaptureTime,
	}
	switch {
	case item.ResourceType != ResourceTypeEC2Instance:
		ev.Compliance = NotApplicable
	case public.Contains(instanceSubnet):
		ev.Compliance = NonCompliant
	default:
		ev.Compliance = Compliant
	}
	return ev
}

// EvaluateLoadBalancer decides whether a load balancer has any subnet in the
// public set. Resources of any other type are NOT_APPLICABLE.
func EvaluateLoadBalancer(item ConfigurationItem, lbSubnets []string, public models.SubnetSet) Evaluation {
	ev := Evaluation{
		ResourceType: item.ResourceType,
		ResourceID:   item.ResourceID,
		Annotation:   elbAnnotation,
		OrderingTime: item.CaptureTime,
	}
	if item.ResourceType != ResourceTypeLoadBalancer {
		ev.Compliance = NotApplicable
		return ev
	}

	ev.Compliance = Compliant
	for _, subnet := range lbSubnets {
		if public.Contains(subnet) {
			ev.Compliance = NonCompliant
			break
		}
	}
	return ev
}

// EvaluateInstanceInventory decides compliance by membership in the region's
// public-instance inventory instead of a per-instance subnet lookup.
func EvaluateInstanceInventory(item ConfigurationItem, publicInstances []string) Evaluation {
	ev := Evaluation{
		ResourceType: item.ResourceType,
		ResourceID:   item.ResourceID,
		Annotation:   ec2Annotation,
		OrderingTime: item.CaptureTime,
	}
	if item.ResourceType != ResourceTypeEC2Instance {
		ev.Compliance = NotApplicable
		return ev
	}

	ev.Compliance = Compliant
	for _, id := range publicInstances {
		if id == item.ResourceID {
			ev.Compliance = NonCompliant
			break
		}
	}
	return ev
}

// Exempt downgrades a NON_COMPLIANT evaluation to COMPLIANT and marks the
// annotation, so an exempted resource is visible as such in the Config
// console. Other verdicts pass through unchanged.
func Exempt(ev Evaluation) Evaluation {
	if ev.Compliance != NonCompliant {
		return ev
	}
	ev.Compliance = Compliant
	ev.Annotation += exemptSuffix
	return ev
}
