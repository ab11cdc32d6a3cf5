package resources

import (
	"fmt"

	"github.com/rshade/stackscale/internal/construct"
	"github.com/rshade/stackscale/internal/metrics"
)

// QueueProps configures a message queue.
type QueueProps struct {
	// VisibilityTimeoutSec hides a message from other consumers while one
	// is processing it. Defaults to 30.
	VisibilityTimeoutSec int

	// RetentionSec keeps undelivered messages around. Defaults to 345600
	// (4 days).
	RetentionSec int
}

// Queue is a message queue construct. Its depth metric is the usual driver
// for worker-pool step scaling.
type Queue struct {
	tree *construct.Tree
	node construct.Node
	name string
}

// NewQueue validates the props and attaches the queue resource.
func NewQueue(tree *construct.Tree, parent construct.Node, id string, props QueueProps) (*Queue, error) {
	if props.VisibilityTimeoutSec < 0 {
		return nil, fmt.Errorf("queue %q: visibilityTimeout must be non-negative", id)
	}
	if props.RetentionSec < 0 {
		return nil, fmt.Errorf("queue %q: retention must be non-negative", id)
	}
	visibility := props.VisibilityTimeoutSec
	if visibility == 0 {
		visibility = 30
	}
	retention := props.RetentionSec
	if retention == 0 {
		retention = 345600
	}

	node, err := tree.Child(parent, id)
	if err != nil {
		return nil, err
	}
	if err := tree.Attach(node, construct.Resource{
		Type: "AWS::SQS::Queue",
		Properties: map[string]any{
			"VisibilityTimeout":      visibility,
			"MessageRetentionPeriod": retention,
		},
	}); err != nil {
		return nil, err
	}
	return &Queue{tree: tree, node: node, name: id}, nil
}

// DepthMetric returns the approximate-visible-messages metric for the
// queue, the standard input for queue-driven scaling.
func (q *Queue) DepthMetric() metrics.Metric {
	return metrics.Metric{
		Namespace:  "AWS/SQS",
		MetricName: "ApproximateNumberOfMessagesVisible",
		Statistic:  metrics.StatisticMaximum,
		PeriodSec:  300,
		Dimensions: map[string]string{"QueueName": q.name},
	}
}

// Node returns the queue's handle in the construct tree.
func (q *Queue) Node() construct.Node {
	return q.node
}
