package loadtest

import (
	"time"

	"github.com/effective-security/caload/enroll"
)

// Stage of a request record's lifecycle. Records move through stages
// monotonically and end either Submitted or Failed.
type Stage int

// Stage values
const (
	StageCreated Stage = iota
	StageGenerated
	StageSubmitted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "Created"
	case StageGenerated:
		return "Generated"
	case StageSubmitted:
		return "Submitted"
	case StageFailed:
		return "Failed"
	}
	return "Unknown"
}

// Phase tags an error record with the run phase that produced it.
type Phase int

// Phase values
const (
	PhaseGeneration Phase = iota
	PhaseSubmission
	PhaseUnexpected
)

func (p Phase) String() string {
	switch p {
	case PhaseGeneration:
		return "Generation"
	case PhaseSubmission:
		return "Submission"
	}
	return "Unexpected"
}

// RequestRecord tracks one enrollment request through the run.
// A record is owned exclusively by the stage currently processing it
// and is never reused across runs.
type RequestRecord struct {
	// ID is the unique identifier of the request
	ID string
	// CommonName of the requested Subject
	CommonName string
	// TemplateName the request was built for
	TemplateName string
	// Stage the record has reached
	Stage Stage
	// Artifact is set once the request blob exists
	Artifact *enroll.Artifact
}

// ErrorRecord captures one failed operation. Records are append-only
// and never mutated after creation.
type ErrorRecord struct {
	// SubjectID references the RequestRecord's id
	SubjectID string
	// Phase that produced the failure
	Phase Phase
	// Message is the trimmed diagnostic text
	Message string
	// Time the failure was recorded
	Time time.Time
}

// IssuedCertificate is created only on successful submission.
type IssuedCertificate struct {
	// SubjectID references the RequestRecord's id
	SubjectID string
	// CARequestID assigned by the CA; empty when the response carried
	// no parsable identifier
	CARequestID string
	// Certificate holds the issued certificate bytes, when returned
	Certificate []byte
	// Path of the issued-certificate file, when persisted
	Path string
}
