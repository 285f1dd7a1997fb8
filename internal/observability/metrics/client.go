// Package metrics turns sync and workflow outcomes into StatsD metrics.
package metrics

import (
	"time"

	"github.com/target/paystream-client/internal/domain/model"
	obserrors "github.com/target/paystream-client/internal/observability/errors"
	"github.com/target/paystream-client/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
	ResultStale   = "stale"
)

// SliceMetric captures one slice fetch within a sync.
type SliceMetric struct {
	Role   string
	Slice  model.Slice
	Result string
	Err    error
}

// SyncMetric captures a completed sync round.
type SyncMetric struct {
	Role     string
	Result   string
	Duration time.Duration
	Slices   []SliceMetric
}

// EmitSync emits per-slice counters and the round duration.
func EmitSync(sink statsd.Sink, in SyncMetric) {
	if sink == nil {
		return
	}
	for _, sl := range in.Slices {
		tags := map[string]string{
			"role":   sl.Role,
			"slice":  string(sl.Slice),
			"result": sl.Result,
		}
		addErrorClass(tags, sl.Result, sl.Err)
		sink.Count("sync.slice", 1, tags)
	}

	tags := map[string]string{"role": in.Role, "result": in.Result}
	sink.Count("sync.round", 1, tags)
	if in.Duration > 0 {
		sink.Timing("sync.duration", in.Duration, CloneTags(tags))
	}
}

// WorkflowMetric captures one mutation workflow run.
type WorkflowMetric struct {
	Workflow string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitWorkflow emits standardised workflow metrics.
func EmitWorkflow(sink statsd.Sink, in WorkflowMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"workflow": in.Workflow,
		"result":   in.Result,
	}
	addErrorClass(tags, in.Result, in.Err)

	sink.Count("workflow.run", 1, tags)
	if in.Duration > 0 {
		sink.Timing("workflow.duration", in.Duration, CloneTags(tags))
	}
}

func addErrorClass(tags map[string]string, result string, err error) {
	if err == nil || result != ResultError {
		return
	}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
