package loadtest

import (
	"context"
	"time"

	"github.com/effective-security/caload/enroll"
	"github.com/effective-security/caload/metricskey"
	"github.com/effective-security/xlog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Submitter drives submission of generated request blobs against one
// CA endpoint. The worker pool bounds concurrent RPCs and an optional
// rate limiter degrades excess load to queuing rather than errors.
type Submitter struct {
	client  enroll.Client
	target  enroll.Target
	workers int
	limiter *rate.Limiter
}

// NewSubmitter returns a Submitter running up to workers concurrent
// submit calls against the target.
func NewSubmitter(client enroll.Client, target enroll.Target, workers int) *Submitter {
	if workers < 1 {
		workers = 1
	}
	return &Submitter{
		client:  client,
		target:  target,
		workers: workers,
	}
}

// WithRateLimit caps submissions at rps per second across all workers.
func (s *Submitter) WithRateLimit(rps float64) *Submitter {
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), s.workers)
	}
	return s
}

// Run submits every generated record and returns the issuances, the
// error records for the rest, and the elapsed time of the phase.
// An issuance whose response carried no parsable CA request id still
// counts as success, with an empty CARequestID.
func (s *Submitter) Run(ctx context.Context, records []*RequestRecord) ([]*IssuedCertificate, []ErrorRecord, time.Duration) {
	started := time.Now()
	res := &collector{}

	var pool errgroup.Group
	pool.SetLimit(s.workers)

	for _, rec := range records {
		if ctx.Err() != nil {
			logger.KV(xlog.INFO, "reason", "cancelled", "phase", "submission")
			break
		}
		pool.Go(func() error {
			s.submitOne(ctx, rec, res)
			return nil
		})
	}
	_ = pool.Wait()

	elapsed := time.Since(started)
	logger.KV(xlog.DEBUG, "phase", "submission",
		"generated", len(records),
		"submitted", len(res.issued),
		"failed", len(res.errors),
		"elapsed", elapsed.String())

	return res.issued, res.errors, elapsed
}

func (s *Submitter) submitOne(ctx context.Context, rec *RequestRecord, res *collector) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			// run cancelled while queued, the item was never attempted
			return
		}
	}

	started := time.Now()
	issuance, err := s.client.Submit(ctx, rec.Artifact, s.target)
	if err != nil {
		rec.Stage = StageFailed
		phase := PhaseUnexpected
		if enroll.IsSubmissionError(err) {
			phase = PhaseSubmission
		}
		res.addError(rec.ID, phase, err)
		metricskey.StatsRequestsFailed.IncrCounter(1, rec.TemplateName, phase.String())
		return
	}

	rec.Stage = StageSubmitted
	res.addIssued(&IssuedCertificate{
		SubjectID:   rec.ID,
		CARequestID: issuance.RequestID,
		Certificate: issuance.Certificate,
		Path:        issuance.CertificatePath,
	})

	metricskey.PerfSubmitRequest.MeasureSince(started, rec.TemplateName)
	metricskey.StatsRequestsSubmitted.IncrCounter(1, rec.TemplateName)
}
