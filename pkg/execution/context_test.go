package execution

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandyand/agentic-workflow-engine/pkg/models"
)

func newTestContext() *Context {
	return NewContext("wf-test", []string{"fetch", "extract", "save"})
}

func TestNewContextStartsPending(t *testing.T) {
	ctx := newTestContext()

	assert.Contains(t, ctx.RunID, "run-")
	assert.Equal(t, "wf-test", ctx.WorkflowID)

	for _, id := range []string{"fetch", "extract", "save"} {
		assert.Equal(t, models.StepPending, ctx.Status(id))
	}

	assert.True(t, ctx.Unfinished())
}

func TestOutputVisibleOnlyAfterSuccess(t *testing.T) {
	ctx := newTestContext()

	_, ok := ctx.Output("fetch")
	assert.False(t, ok)

	ctx.SetStatus("fetch", models.StepRunning)

	_, ok = ctx.Output("fetch")
	assert.False(t, ok)

	ctx.RecordSuccess("fetch", map[string]any{"status": 200}, 1, false, 15*time.Millisecond)

	output, ok := ctx.Output("fetch")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"status": 200}, output)
	assert.Equal(t, models.StepSucceeded, ctx.Status("fetch"))
}

func TestRecordFailure(t *testing.T) {
	ctx := newTestContext()

	ctx.RecordFailure("fetch", "handler", errors.New("connection refused"), 3, 50*time.Millisecond)

	assert.Equal(t, models.StepFailed, ctx.Status("fetch"))

	report := ctx.Report(models.RunFailed)
	require.Len(t, report.Steps, 3)

	failed := report.Steps[0]
	assert.Equal(t, "fetch", failed.StepID)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "handler", failed.Error.Kind)
	assert.Equal(t, "connection refused", failed.Error.Message)
	assert.Equal(t, 3, failed.Attempts)
}

func TestRecordSkipNamesUpstream(t *testing.T) {
	ctx := newTestContext()

	ctx.RecordSkip("extract", "fetch")

	assert.Equal(t, models.StepSkipped, ctx.Status("extract"))

	report := ctx.Report(models.RunFailed)
	skipped := report.Steps[1]
	require.NotNil(t, skipped.Error)
	assert.Equal(t, "upstream_failed", skipped.Error.Kind)
	assert.Contains(t, skipped.Error.Message, "fetch")
}

func TestUnfinished(t *testing.T) {
	ctx := newTestContext()

	ctx.RecordSuccess("fetch", nil, 1, false, 0)
	ctx.RecordFailure("extract", "handler", errors.New("boom"), 1, 0)
	assert.True(t, ctx.Unfinished())

	ctx.RecordSkip("save", "extract")
	assert.False(t, ctx.Unfinished())
}

func TestReportPreservesDefinitionOrder(t *testing.T) {
	ctx := newTestContext()

	ctx.RecordSuccess("save", nil, 1, false, 0)
	ctx.RecordSuccess("fetch", nil, 1, false, 0)

	report := ctx.Report(models.RunSucceeded)
	require.Len(t, report.Steps, 3)
	assert.Equal(t, "fetch", report.Steps[0].StepID)
	assert.Equal(t, "extract", report.Steps[1].StepID)
	assert.Equal(t, "save", report.Steps[2].StepID)
}

func TestReportSnapshotsResults(t *testing.T) {
	ctx := newTestContext()

	report := ctx.Report(models.RunSucceeded)
	ctx.RecordSuccess("fetch", map[string]any{"status": 200}, 1, false, 0)

	assert.Equal(t, models.StepPending, report.Steps[0].Status)
}

func TestLogAppends(t *testing.T) {
	ctx := newTestContext()

	ctx.Log("info", "", "run started")
	ctx.Log("error", "fetch", "step failed")

	report := ctx.Report(models.RunFailed)
	require.Len(t, report.Logs, 2)
	assert.Equal(t, "run started", report.Logs[0].Message)
	assert.Equal(t, "fetch", report.Logs[1].StepID)
	assert.False(t, report.Logs[0].Timestamp.IsZero())
}
