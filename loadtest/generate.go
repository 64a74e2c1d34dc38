package loadtest

import (
	"context"
	"time"

	"github.com/effective-security/caload/enroll"
	"github.com/effective-security/caload/metricskey"
	"github.com/effective-security/xlog"
	"golang.org/x/sync/errgroup"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/caload", "loadtest")

// Generator drives request-blob creation over all specs with a bounded
// worker pool. Items are independent; one item's failure never aborts
// the others.
type Generator struct {
	client  enroll.Client
	workers int
}

// NewGenerator returns a Generator running up to workers concurrent
// create calls.
func NewGenerator(client enroll.Client, workers int) *Generator {
	if workers < 1 {
		workers = 1
	}
	return &Generator{
		client:  client,
		workers: workers,
	}
}

// Run creates a request blob for every spec. It returns the records
// that reached StageGenerated and the error records for the rest.
// Output ordering is not guaranteed to match the input.
// Cancelling ctx stops dispatching new items; in-flight calls finish.
func (g *Generator) Run(ctx context.Context, specs []*enroll.RequestSpec) ([]*RequestRecord, []ErrorRecord) {
	res := &collector{}

	var pool errgroup.Group
	pool.SetLimit(g.workers)

	for _, spec := range specs {
		if ctx.Err() != nil {
			logger.KV(xlog.INFO, "reason", "cancelled", "phase", "generation")
			break
		}
		pool.Go(func() error {
			g.createOne(ctx, spec, res)
			return nil
		})
	}
	_ = pool.Wait()

	logger.KV(xlog.DEBUG, "phase", "generation",
		"requested", len(specs),
		"generated", len(res.records),
		"failed", len(res.errors))

	return res.records, res.errors
}

func (g *Generator) createOne(ctx context.Context, spec *enroll.RequestSpec, res *collector) {
	rec := &RequestRecord{
		ID:           spec.ID,
		CommonName:   spec.CommonName,
		TemplateName: spec.TemplateName,
		Stage:        StageCreated,
	}

	started := time.Now()
	artifact, err := g.client.Create(ctx, spec)
	if err != nil {
		rec.Stage = StageFailed
		phase := PhaseUnexpected
		if enroll.IsCreationError(err) {
			phase = PhaseGeneration
		}
		res.addError(spec.ID, phase, err)
		metricskey.StatsRequestsFailed.IncrCounter(1, spec.TemplateName, phase.String())
		return
	}

	rec.Stage = StageGenerated
	rec.Artifact = artifact
	res.addRecord(rec)

	metricskey.PerfCreateRequest.MeasureSince(started, spec.TemplateName)
	metricskey.StatsRequestsGenerated.IncrCounter(1, spec.TemplateName)
}
