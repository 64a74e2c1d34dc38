package enroll

import "context"

// HashAlgorithm names accepted by request descriptors.
const (
	SHA256 = "sha256"
	SHA384 = "sha384"
	SHA512 = "sha512"
)

// KeyUsage bits for the request descriptor.
// Values match the X.509 KeyUsage bit assignments.
const (
	KeyUsageDigitalSignature = 0x80
	KeyUsageKeyEncipherment  = 0x20
)

// X509Name contains the optional Subject fields beyond CommonName.
type X509Name struct {
	Country            string `json:"c" yaml:"c"`
	Province           string `json:"st" yaml:"st"`
	Locality           string `json:"l" yaml:"l"`
	Organization       string `json:"o" yaml:"o"`
	OrganizationalUnit string `json:"ou" yaml:"ou"`
}

// RequestSpec describes the logical content of one enrollment request.
// It carries no protocol state; a Client turns it into a PKCS#10 blob.
type RequestSpec struct {
	// ID is the unique identifier generated for this request.
	// Artifact file names are derived from it.
	ID string `json:"id" yaml:"id"`
	// CommonName of the Subject
	CommonName string `json:"common_name" yaml:"common_name"`
	// Name holds the optional Subject fields
	Name X509Name `json:"name" yaml:"name"`
	// KeySize in bits for the generated RSA key
	KeySize int `json:"key_size" yaml:"key_size"`
	// HashAlgorithm for the request signature
	HashAlgorithm string `json:"hash" yaml:"hash"`
	// KeyUsage bits requested for the certificate
	KeyUsage int `json:"key_usage" yaml:"key_usage"`
	// TemplateName references the CA-side issuance policy
	TemplateName string `json:"template" yaml:"template"`
}

// Target identifies the CA that submissions are sent to.
type Target struct {
	// Server is the host name of the CA server
	Server string `json:"server" yaml:"server"`
	// CAName is the CA instance name on the server
	CAName string `json:"ca_name" yaml:"ca_name"`
	// TemplateName to request issuance with
	TemplateName string `json:"template" yaml:"template"`
}

// Config returns the CA config string in "server\ca" form.
func (t Target) Config() string {
	return t.Server + `\` + t.CAName
}

// Artifact is an opaque reference to a generated request blob on disk.
type Artifact struct {
	// ID of the RequestSpec the blob was created from
	ID string
	// Path of the request-blob file
	Path string
}

// Issuance is the result of a successful submission.
type Issuance struct {
	// RequestID assigned by the CA; empty when the response did not
	// carry a parsable identifier, which is still a success.
	RequestID string
	// CertificatePath is the issued-certificate file, when persisted
	CertificatePath string
	// Certificate holds the issued certificate bytes, when returned
	Certificate []byte
}

// Client performs the two protocol-level enrollment operations.
// Implementations must be safe for concurrent use: the stages invoke
// Create and Submit from bounded worker pools.
type Client interface {
	// Create produces a PKCS#10 request blob from the spec.
	Create(ctx context.Context, spec *RequestSpec) (*Artifact, error)
	// Submit sends a request blob to the target CA.
	Submit(ctx context.Context, artifact *Artifact, target Target) (*Issuance, error)
}
