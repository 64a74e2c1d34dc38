package loadtest_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/effective-security/caload/loadtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRate(t *testing.T) {
	r := loadtest.Summarize(10, 10, 8, nil, 2*time.Second)
	assert.Equal(t, 2, r.Failed)

	rate, ok := r.Rate()
	require.True(t, ok)
	assert.InDelta(t, 4.0, rate, 0.001)
}

func TestReportRateUnavailable(t *testing.T) {
	r := loadtest.Summarize(0, 0, 0, nil, 0)

	_, ok := r.Rate()
	assert.False(t, ok)

	var out bytes.Buffer
	r.Print(&out)
	assert.Contains(t, out.String(), "rate      : unavailable")
	assert.NotContains(t, out.String(), "req/s")
}

func TestReportPrint(t *testing.T) {
	errs := []loadtest.ErrorRecord{
		{
			SubjectID: "id-3",
			Phase:     loadtest.PhaseGeneration,
			Message:   "keygen failed",
			Time:      time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		},
		{
			SubjectID: "id-5",
			Phase:     loadtest.PhaseSubmission,
			Message:   "denied by policy module",
			Time:      time.Date(2026, 8, 31, 12, 0, 1, 0, time.UTC),
		},
	}
	r := loadtest.Summarize(5, 4, 3, errs, 1500*time.Millisecond)

	var out bytes.Buffer
	r.Print(&out)
	res := out.String()

	assert.Contains(t, res, "requested : 5")
	assert.Contains(t, res, "generated : 4")
	assert.Contains(t, res, "submitted : 3")
	assert.Contains(t, res, "failed    : 2")
	assert.Contains(t, res, "rate      : 2.00 req/s")
	assert.Contains(t, res, "id-3 Generation: keygen failed")
	assert.Contains(t, res, "id-5 Submission: denied by policy module")
	assert.Contains(t, res, "[2026-08-31T12:00:00Z]")
}
