package loadtest

import (
	"fmt"
	"io"
	"time"
)

// Report aggregates the outcome of one load run. It is computed once,
// after both phases complete, and read-only thereafter.
type Report struct {
	// TotalRequested is the requested run size
	TotalRequested int
	// Generated is the count of requests that produced a blob
	Generated int
	// Submitted is the count of successful issuances
	Submitted int
	// Failed is the count of requests that did not get issued
	Failed int
	// Errors lists every recorded failure, in collection order
	Errors []ErrorRecord
	// Elapsed covers the submission phase only
	Elapsed time.Duration
}

// Summarize builds the report. elapsed covers the submission phase;
// the reported rate is submission throughput, not end-to-end.
func Summarize(total, generated, submitted int, errs []ErrorRecord, elapsed time.Duration) *Report {
	return &Report{
		TotalRequested: total,
		Generated:      generated,
		Submitted:      submitted,
		Failed:         total - submitted,
		Errors:         errs,
		Elapsed:        elapsed,
	}
}

// Rate returns the submission throughput in requests per second.
// ok is false when elapsed is zero and no rate can be computed.
func (r *Report) Rate() (float64, bool) {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0, false
	}
	return float64(r.Submitted) / secs, true
}

// Print renders the human-readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== CA load run ===")
	fmt.Fprintf(w, "requested : %d\n", r.TotalRequested)
	fmt.Fprintf(w, "generated : %d\n", r.Generated)
	fmt.Fprintf(w, "submitted : %d\n", r.Submitted)
	fmt.Fprintf(w, "failed    : %d\n", r.Failed)
	fmt.Fprintf(w, "elapsed   : %s\n", r.Elapsed)

	if rate, ok := r.Rate(); ok {
		fmt.Fprintf(w, "rate      : %.2f req/s\n", rate)
	} else {
		fmt.Fprintln(w, "rate      : unavailable")
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "errors    : %d\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  [%s] %s %s: %s\n",
				e.Time.Format(time.RFC3339), e.SubjectID, e.Phase, e.Message)
		}
	}
}
