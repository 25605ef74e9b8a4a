package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	runs int
	err  error
}

func (j *fakeJob) Run() error   { j.runs++; return j.err }
func (j *fakeJob) Name() string { return "fake" }

func TestAddJob_RejectsInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a cron expression", &fakeJob{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestAddJob_AcceptsSecondsField(t *testing.T) {
	s := New(zerolog.Nop())

	assert.NoError(t, s.AddJob("0 5 18 * * MON-FRI", &fakeJob{}))
	assert.NoError(t, s.AddJob("@every 30s", &fakeJob{}))
}

func TestRunNow_ExecutesAndPropagatesErrors(t *testing.T) {
	s := New(zerolog.Nop())

	ok := &fakeJob{}
	require.NoError(t, s.RunNow(ok))
	assert.Equal(t, 1, ok.runs)

	failing := &fakeJob{err: errors.New("disk full")}
	err := s.RunNow(failing)
	require.Error(t, err)
	assert.Equal(t, 1, failing.runs)
}
