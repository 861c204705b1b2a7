package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	runs int
	err  error
}

func (j *stubJob) Run() error   { j.runs++; return j.err }
func (j *stubJob) Name() string { return j.name }

func TestAddJobRecordsEntries(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 0 * * * *", &stubJob{name: "corpus_refresh"}))
	require.NoError(t, s.AddJob("@every 30s", &stubJob{name: "health_check"}))

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Name: "corpus_refresh", Schedule: "0 0 * * * *"}, entries[0])
	assert.Equal(t, Entry{Name: "health_check", Schedule: "@every 30s"}, entries[1])
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &stubJob{name: "broken"})
	require.Error(t, err)
	assert.Empty(t, s.Entries())
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &stubJob{name: "corpus_refresh"}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)

	job.err = errors.New("model not ready")
	assert.Error(t, s.RunNow(job))
	assert.Equal(t, 2, job.runs)
}

func TestEntriesReturnsCopy(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@hourly", &stubJob{name: "health_check"}))

	entries := s.Entries()
	entries[0].Name = "mutated"

	assert.Equal(t, "health_check", s.Entries()[0].Name)
}
