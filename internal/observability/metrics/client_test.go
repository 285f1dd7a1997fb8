package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/paystream-client/internal/domain/model"
	apperrors "github.com/target/paystream-client/internal/errors"
)

type recorded struct {
	kind string
	name string
	tags map[string]string
}

type recordingSink struct {
	got []recorded
}

func (r *recordingSink) Count(name string, _ int64, tags map[string]string) {
	r.got = append(r.got, recorded{"count", name, tags})
}

func (r *recordingSink) Gauge(name string, _ float64, tags map[string]string) {
	r.got = append(r.got, recorded{"gauge", name, tags})
}

func (r *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	r.got = append(r.got, recorded{"timing", name, tags})
}

func TestEmitSync(t *testing.T) {
	sink := &recordingSink{}
	EmitSync(sink, SyncMetric{
		Role:     "admin",
		Result:   ResultError,
		Duration: time.Millisecond,
		Slices: []SliceMetric{
			{Role: "admin", Slice: model.SliceStats, Result: ResultSuccess},
			{Role: "admin", Slice: model.SliceUsers, Result: ResultError, Err: apperrors.Forbidden("no")},
		},
	})

	require.Len(t, sink.got, 4)
	assert.Equal(t, "sync.slice", sink.got[0].name)
	assert.NotContains(t, sink.got[0].tags, "error_class")
	assert.Equal(t, "forbidden", sink.got[1].tags["error_class"])
	assert.Equal(t, "sync.round", sink.got[2].name)
	assert.Equal(t, "timing", sink.got[3].kind)
}

func TestEmitWorkflow(t *testing.T) {
	sink := &recordingSink{}
	EmitWorkflow(sink, WorkflowMetric{Workflow: "submit_expense", Result: ResultError, Err: apperrors.Transport(assert.AnError)})

	require.Len(t, sink.got, 1, "no timing without a duration")
	assert.Equal(t, map[string]string{
		"workflow":    "submit_expense",
		"result":      ResultError,
		"error_class": "transport",
	}, sink.got[0].tags)
}

func TestEmitNilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitSync(nil, SyncMetric{})
		EmitWorkflow(nil, WorkflowMetric{})
	})
}
