// Package loadtest drives synthetic enrollment load against a CA in
// two strict phases: generate all request blobs, then submit them.
package loadtest

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/caload/enroll"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

// Defaults for generated request specs
const (
	DefaultKeySize = 2048
	// SubjectPrefix is prepended to the unique id to form CommonName
	SubjectPrefix = "LoadTestCert-"
)

// Profile carries the optional subject and key overrides for generated
// specs, loaded from a YAML or JSON file.
type Profile struct {
	// Name holds the Subject fields beyond CommonName
	Name enroll.X509Name `json:"name" yaml:"name"`
	// KeySize in bits, defaults to 2048
	KeySize int `json:"key_size" yaml:"key_size"`
	// HashAlgorithm for the request signature, defaults to sha256
	HashAlgorithm string `json:"hash" yaml:"hash"`
	// KeyUsage bits, defaults to digital signature
	KeyUsage int `json:"key_usage" yaml:"key_usage"`
}

// LoadProfile reads a profile from file.
func LoadProfile(file string) (*Profile, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to read profile")
	}

	var p Profile
	if strings.HasSuffix(file, ".json") {
		err = json.Unmarshal(raw, &p)
	} else {
		err = yaml.Unmarshal(raw, &p)
	}
	if err != nil {
		return nil, errors.WithMessage(err, "invalid profile")
	}

	return &p, nil
}

// SpecBuilder builds the logical content of enrollment requests for
// one template. It performs no I/O.
type SpecBuilder struct {
	template string
	profile  Profile
}

// NewSpecBuilder returns a builder for the named template.
// The profile is optional.
func NewSpecBuilder(templateName string, profile *Profile) *SpecBuilder {
	b := &SpecBuilder{
		template: templateName,
	}
	if profile != nil {
		b.profile = *profile
	}
	return b
}

// Build produces the request spec for a caller-supplied unique id.
// The id must be unique per call; artifact names derive from it.
func (b *SpecBuilder) Build(id string) (*enroll.RequestSpec, error) {
	if b.template == "" {
		return nil, errors.New("template name is required")
	}

	spec := &enroll.RequestSpec{
		ID:            id,
		CommonName:    SubjectPrefix + id,
		KeySize:       DefaultKeySize,
		HashAlgorithm: enroll.SHA256,
		KeyUsage:      enroll.KeyUsageDigitalSignature,
		TemplateName:  b.template,
	}

	err := copier.CopyWithOption(spec, &b.profile, copier.Option{IgnoreEmpty: true})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to apply profile")
	}

	return spec, nil
}
