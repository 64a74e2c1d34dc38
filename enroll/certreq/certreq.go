// Package certreq implements the enrollment client on top of the
// Windows certreq utility. Request blobs are created from an INF
// descriptor and submitted to a named AD CS instance.
package certreq

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/effective-security/caload/enroll"
	"github.com/effective-security/xlog"
	"github.com/pkg/errors"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/caload", "certreq")

// DefaultBinary is the certreq executable name resolved via PATH.
const DefaultBinary = "certreq"

// Client shells out to certreq for both enrollment operations.
// It is safe for concurrent use; every invocation works on files
// derived from the spec's unique id.
type Client struct {
	binary string
	outDir string
}

// NewClient returns a Client writing artifacts under outDir.
func NewClient(outDir string) *Client {
	return &Client{
		binary: DefaultBinary,
		outDir: outDir,
	}
}

// WithBinary overrides the certreq executable path.
func (c *Client) WithBinary(path string) *Client {
	c.binary = path
	return c
}

// Create renders the INF descriptor and runs `certreq -new` to produce
// the request blob. The descriptor file is removed after the attempt,
// on failure as well.
func (c *Client) Create(ctx context.Context, spec *enroll.RequestSpec) (*enroll.Artifact, error) {
	infFile := filepath.Join(c.outDir, spec.ID+".inf")
	reqFile := filepath.Join(c.outDir, spec.ID+".req")

	err := os.WriteFile(infFile, []byte(RenderINF(spec)), 0644)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to write request descriptor")
	}
	defer func() {
		if err := os.Remove(infFile); err != nil {
			logger.KV(xlog.WARNING, "reason", "remove_inf", "file", infFile, "err", err.Error())
		}
	}()

	out, err := c.run(ctx, "-new", "-f", infFile, reqFile)
	if err != nil {
		return nil, enroll.NewCreationError(err, out)
	}

	logger.KV(xlog.DEBUG, "op", "create", "id", spec.ID, "req", reqFile)
	return &enroll.Artifact{ID: spec.ID, Path: reqFile}, nil
}

// Submit runs `certreq -submit` against the target CA and parses the
// CA-assigned RequestId out of the tool's output. A response without a
// parsable identifier still counts as a successful issuance.
func (c *Client) Submit(ctx context.Context, artifact *enroll.Artifact, target enroll.Target) (*enroll.Issuance, error) {
	certFile := filepath.Join(c.outDir, artifact.ID+".cer")

	args := []string{
		"-submit", "-f",
		"-config", target.Config(),
	}
	if target.TemplateName != "" {
		args = append(args, "-attrib", "CertificateTemplate:"+target.TemplateName)
	}
	args = append(args, artifact.Path, certFile)

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, enroll.NewSubmissionError(err, out)
	}

	id, ok := ParseRequestID(out)
	if !ok {
		logger.KV(xlog.DEBUG, "reason", "no_request_id", "id", artifact.ID)
	}

	return &enroll.Issuance{
		RequestID:       id,
		CertificatePath: certFile,
	}, nil
}

// run executes certreq and returns its combined output.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	out, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		return text, errors.WithMessagef(err, "certreq %s", args[0])
	}
	return text, nil
}

// RenderINF produces the certreq request descriptor for the spec.
func RenderINF(spec *enroll.RequestSpec) string {
	var b strings.Builder

	b.WriteString("[Version]\r\n")
	b.WriteString("Signature = \"$Windows NT$\"\r\n\r\n")

	b.WriteString("[NewRequest]\r\n")
	fmt.Fprintf(&b, "Subject = %q\r\n", subjectString(spec))
	fmt.Fprintf(&b, "KeyLength = %d\r\n", spec.KeySize)
	b.WriteString("KeySpec = 1\r\n")
	b.WriteString("Exportable = FALSE\r\n")
	b.WriteString("MachineKeySet = TRUE\r\n")
	fmt.Fprintf(&b, "HashAlgorithm = %s\r\n", spec.HashAlgorithm)
	fmt.Fprintf(&b, "KeyUsage = 0x%x\r\n", spec.KeyUsage)
	b.WriteString("RequestType = PKCS10\r\n")

	if spec.TemplateName != "" {
		b.WriteString("\r\n[RequestAttributes]\r\n")
		fmt.Fprintf(&b, "CertificateTemplate = %s\r\n", spec.TemplateName)
	}

	return b.String()
}

// subjectString renders the Subject line in RDN form, CN first.
func subjectString(spec *enroll.RequestSpec) string {
	parts := []string{"CN=" + spec.CommonName}
	appendRDN(&parts, "OU", spec.Name.OrganizationalUnit)
	appendRDN(&parts, "O", spec.Name.Organization)
	appendRDN(&parts, "L", spec.Name.Locality)
	appendRDN(&parts, "ST", spec.Name.Province)
	appendRDN(&parts, "C", spec.Name.Country)
	return strings.Join(parts, ", ")
}

func appendRDN(parts *[]string, attr, val string) {
	if val != "" {
		*parts = append(*parts, attr+"="+val)
	}
}

// ParseRequestID extracts the CA-assigned RequestId from certreq
// output. The second return is false when the output does not carry
// one; that outcome is not an error.
func ParseRequestID(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		rest, found := strings.CutPrefix(line, "RequestId:")
		if !found {
			continue
		}
		rest = strings.TrimSpace(rest)
		// certreq prints the id twice, once quoted: RequestId: "42"
		rest = strings.Trim(rest, `"`)
		if rest != "" {
			return rest, true
		}
	}
	return "", false
}
