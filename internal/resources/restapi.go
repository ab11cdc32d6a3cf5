package resources

import (
	"fmt"
	"strings"

	"github.com/rshade/stackscale/internal/construct"
	"github.com/rshade/stackscale/internal/metrics"
)

// RestApiProps configures a REST API.
type RestApiProps struct {
	// StageName is the deployment stage, e.g. "prod". Required.
	StageName string

	// Description is copied onto the emitted resource.
	Description string
}

// RestApi is a REST API construct. Its latency and request-count metrics
// feed step scaling for the backend pools serving it.
type RestApi struct {
	tree  *construct.Tree
	node  construct.Node
	name  string
	stage string
}

// NewRestApi validates the stage name and attaches the API resource.
func NewRestApi(tree *construct.Tree, parent construct.Node, id string, props RestApiProps) (*RestApi, error) {
	if props.StageName == "" {
		return nil, fmt.Errorf("rest api %q: stageName is required", id)
	}
	if strings.ContainsAny(props.StageName, " /") {
		return nil, fmt.Errorf("rest api %q: stageName %q contains invalid characters", id, props.StageName)
	}

	node, err := tree.Child(parent, id)
	if err != nil {
		return nil, err
	}
	resourceProps := map[string]any{
		"Name":      id,
		"StageName": props.StageName,
	}
	if props.Description != "" {
		resourceProps["Description"] = props.Description
	}
	if err := tree.Attach(node, construct.Resource{
		Type:       "AWS::ApiGateway::RestApi",
		Properties: resourceProps,
	}); err != nil {
		return nil, err
	}
	return &RestApi{tree: tree, node: node, name: id, stage: props.StageName}, nil
}

// RequestCountMetric returns the per-stage request count metric.
func (a *RestApi) RequestCountMetric() metrics.Metric {
	return metrics.Metric{
		Namespace:  "AWS/ApiGateway",
		MetricName: "Count",
		Statistic:  metrics.StatisticAverage,
		PeriodSec:  300,
		Dimensions: map[string]string{"ApiName": a.name, "Stage": a.stage},
	}
}

// Node returns the API's handle in the construct tree.
func (a *RestApi) Node() construct.Node {
	return a.node
}
