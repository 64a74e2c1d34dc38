package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/effective-security/caload/enroll"
	"github.com/effective-security/caload/enroll/certreq"
	"github.com/effective-security/caload/enroll/localca"
	"github.com/effective-security/caload/loadtest"
	"github.com/effective-security/x/guid"
	"github.com/effective-security/xlog"
	"github.com/pkg/errors"
)

// RunCmd specifies flags for the Run command
type RunCmd struct {
	CaServer   string  `help:"CA server host name"`
	CaName     string  `help:"CA instance name on the server"`
	Template   string  `required:"" help:"certificate template to request"`
	Count      int     `short:"n" default:"1" help:"number of requests to generate"`
	OutDir     string  `default:"." help:"directory for request and certificate files" type:"path"`
	Workers    int     `default:"4" help:"worker pool size per phase"`
	Rate       float64 `help:"optional cap on submissions per second"`
	CsrProfile string        `help:"optional file with subject and key overrides"`
	LocalCa    bool          `help:"issue with an in-process CA instead of certreq"`
	Timeout    time.Duration `help:"optional deadline for the whole run"`
}

// Run the command. The command fails only on setup errors; item
// failures are recorded and reported, with exit code 0.
func (a *RunCmd) Run(cli *Cli) error {
	if a.Count < 0 {
		return errors.Errorf("invalid count: %d", a.Count)
	}
	if !a.LocalCa && (a.CaServer == "" || a.CaName == "") {
		return errors.Errorf("--ca-server and --ca-name are required")
	}

	// the only fatal filesystem error, checked before any work starts
	err := os.MkdirAll(a.OutDir, 0755)
	if err != nil {
		return errors.WithMessage(err, "unable to create output directory")
	}

	var profile *loadtest.Profile
	if a.CsrProfile != "" {
		profile, err = loadtest.LoadProfile(a.CsrProfile)
		if err != nil {
			return err
		}
	}

	client, err := a.client()
	if err != nil {
		return err
	}

	builder := loadtest.NewSpecBuilder(a.Template, profile)
	specs := make([]*enroll.RequestSpec, 0, a.Count)
	for i := 0; i < a.Count; i++ {
		spec, err := builder.Build(guid.MustCreate())
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	ctx, stop := signal.NotifyContext(cli.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	logger.KV(xlog.INFO, "op", "run",
		"count", a.Count,
		"template", a.Template,
		"workers", a.Workers)

	records, genErrs := loadtest.NewGenerator(client, a.Workers).Run(ctx, specs)

	target := enroll.Target{
		Server:       a.CaServer,
		CAName:       a.CaName,
		TemplateName: a.Template,
	}
	issued, subErrs, elapsed := loadtest.NewSubmitter(client, target, a.Workers).
		WithRateLimit(a.Rate).
		Run(ctx, records)

	report := loadtest.Summarize(
		len(specs), len(records), len(issued),
		append(genErrs, subErrs...), elapsed)
	report.Print(cli.Writer())

	return nil
}

func (a *RunCmd) client() (enroll.Client, error) {
	if a.LocalCa {
		return localca.New(a.OutDir)
	}
	return certreq.NewClient(a.OutDir), nil
}
