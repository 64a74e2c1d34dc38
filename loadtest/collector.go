package loadtest

import (
	"strings"
	"sync"
	"time"
)

// collector accumulates results from concurrent workers.
// All appends go through one mutex; the slices are read only after
// the stage's pool has been waited on.
type collector struct {
	mu      sync.Mutex
	records []*RequestRecord
	issued  []*IssuedCertificate
	errors  []ErrorRecord
}

func (c *collector) addRecord(rec *RequestRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

func (c *collector) addIssued(ic *IssuedCertificate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued = append(c.issued, ic)
}

func (c *collector) addError(subjectID string, phase Phase, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, ErrorRecord{
		SubjectID: subjectID,
		Phase:     phase,
		Message:   strings.TrimSpace(err.Error()),
		Time:      time.Now().UTC(),
	})
}
