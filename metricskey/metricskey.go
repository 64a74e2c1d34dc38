package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfCreateRequest is perf metric
	PerfCreateRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_create_request",
		Help:         "perf_create_request provides the sample metrics of request generation",
		RequiredTags: []string{"template"},
	}

	// PerfSubmitRequest is perf metric
	PerfSubmitRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_submit_request",
		Help:         "perf_submit_request provides the sample metrics of request submission",
		RequiredTags: []string{"template"},
	}
)

// Stats
var (
	// StatsRequestsGenerated is stats metric
	StatsRequestsGenerated = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "requests_generated",
		Help:         "requests_generated provides the count of generated requests",
		RequiredTags: []string{"template"},
	}

	// StatsRequestsSubmitted is stats metric
	StatsRequestsSubmitted = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "requests_submitted",
		Help:         "requests_submitted provides the count of submitted requests",
		RequiredTags: []string{"template"},
	}

	// StatsRequestsFailed is stats metric
	StatsRequestsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "requests_failed",
		Help:         "requests_failed provides the count of failed requests",
		RequiredTags: []string{"template", "phase"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfCreateRequest,
	&PerfSubmitRequest,
	&StatsRequestsGenerated,
	&StatsRequestsSubmitted,
	&StatsRequestsFailed,
}
