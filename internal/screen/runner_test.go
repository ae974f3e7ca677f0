package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumstock/backend/internal/calendar"
	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

type fakeLoader struct {
	bars []contracts.Bar
	err  error
}

func (f *fakeLoader) LoadRange(ctx context.Context, start, end time.Time) ([]contracts.Bar, error) {
	return f.bars, f.err
}

type fakeSaver struct {
	saved []contracts.Selection
	err   error
}

func (f *fakeSaver) SaveRun(ctx context.Context, selections []contracts.Selection) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, selections...)
	return nil
}

type memoryTaskLog struct {
	entries []contracts.TaskLogEntry
}

func (m *memoryTaskLog) LogRun(ctx context.Context, taskName, status, message string) {
	m.entries = append(m.entries, contracts.TaskLogEntry{
		TaskName: taskName, Status: status, Message: message,
	})
}

func newTestRunner(loader HistoryLoader, saver SelectionSaver, taskLog contracts.TaskLogger) *Runner {
	r := NewRunner(loader, saver, calendar.NewTable(nil, nil), taskLog, logger.NewNop())
	r.now = func() time.Time { return day("2025-06-20") }
	return r
}

func TestRunPersistsHits(t *testing.T) {
	loader := &fakeLoader{bars: positiveFixture("600000.SH")}
	saver := &fakeSaver{}
	taskLog := &memoryTaskLog{}

	runID, hits, err := newTestRunner(loader, saver, taskLog).
		Run(context.Background(), day("2025-06-09"), day("2025-06-16"), "weekly", 0)

	require.NoError(t, err)
	assert.Equal(t, "2025-06-20 6/9～6/16 weekly", runID)
	assert.Equal(t, 1, hits)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, runID, saver.saved[0].RunID)

	require.Len(t, taskLog.entries, 2)
	assert.Equal(t, contracts.StatusRunning, taskLog.entries[0].Status)
	assert.Equal(t, contracts.StatusSuccess, taskLog.entries[1].Status)
	assert.Equal(t, TaskName, taskLog.entries[1].TaskName)
}

func TestRunIDWithoutNote(t *testing.T) {
	assert.Equal(t, "2025-06-20 6/9～6/16",
		buildRunID(day("2025-06-20"), day("2025-06-09"), day("2025-06-16"), ""))
	assert.Equal(t, "2025-11-03 1/2～12/31 full year",
		buildRunID(day("2025-11-03"), day("2025-01-02"), day("2025-12-31"), "full year"))
}

func TestRunLoadFailureLogsFail(t *testing.T) {
	loader := &fakeLoader{err: errors.New("connection refused")}
	taskLog := &memoryTaskLog{}

	_, hits, err := newTestRunner(loader, &fakeSaver{}, taskLog).
		Run(context.Background(), day("2025-06-09"), day("2025-06-16"), "", 0)

	require.Error(t, err)
	assert.Zero(t, hits)
	require.Len(t, taskLog.entries, 2)
	assert.Equal(t, contracts.StatusFail, taskLog.entries[1].Status)
	assert.Contains(t, taskLog.entries[1].Message, "connection refused")
}

func TestRunSaveFailureLogsFail(t *testing.T) {
	loader := &fakeLoader{bars: positiveFixture("600000.SH")}
	saver := &fakeSaver{err: errors.New("deadlock detected")}
	taskLog := &memoryTaskLog{}

	_, hits, err := newTestRunner(loader, saver, taskLog).
		Run(context.Background(), day("2025-06-09"), day("2025-06-16"), "", 0)

	require.Error(t, err)
	assert.Zero(t, hits)
	assert.Empty(t, saver.saved)
	assert.Equal(t, contracts.StatusFail, taskLog.entries[len(taskLog.entries)-1].Status)
}

func TestRunInvertedRange(t *testing.T) {
	taskLog := &memoryTaskLog{}

	_, _, err := newTestRunner(&fakeLoader{}, &fakeSaver{}, taskLog).
		Run(context.Background(), day("2025-06-16"), day("2025-06-09"), "", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid range")
	assert.Empty(t, taskLog.entries)
}

func TestRunNoHitsStillSucceeds(t *testing.T) {
	loader := &fakeLoader{bars: nil}
	saver := &fakeSaver{}
	taskLog := &memoryTaskLog{}

	runID, hits, err := newTestRunner(loader, saver, taskLog).
		Run(context.Background(), day("2025-06-09"), day("2025-06-16"), "", 0)

	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	assert.Zero(t, hits)
	assert.Empty(t, saver.saved)
	assert.Equal(t, contracts.StatusSuccess, taskLog.entries[len(taskLog.entries)-1].Status)
}
