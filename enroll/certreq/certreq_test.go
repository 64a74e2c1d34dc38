package certreq_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/caload/enroll"
	"github.com/effective-security/caload/enroll/certreq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestID(t *testing.T) {
	tcases := []struct {
		output string
		id     string
		found  bool
	}{
		{
			output: "Active Directory Enrollment Policy\nRequestId: 1742\nRequestId: \"1742\"\nCertificate retrieved(Issued) Issued",
			id:     "1742",
			found:  true,
		},
		{
			output: `RequestId: "36"`,
			id:     "36",
			found:  true,
		},
		{
			output: "  RequestId: 7  ",
			id:     "7",
			found:  true,
		},
		{
			output: "Certificate retrieved(Issued) Issued",
			found:  false,
		},
		{
			output: "",
			found:  false,
		},
		{
			output: "RequestId:",
			found:  false,
		},
	}

	for _, tc := range tcases {
		id, found := certreq.ParseRequestID(tc.output)
		assert.Equal(t, tc.found, found, "output: %q", tc.output)
		assert.Equal(t, tc.id, id, "output: %q", tc.output)
	}
}

func TestRenderINF(t *testing.T) {
	spec := &enroll.RequestSpec{
		ID:         "abc123",
		CommonName: "LoadTestCert-abc123",
		Name: enroll.X509Name{
			Organization:       "ekspand",
			OrganizationalUnit: "load",
		},
		KeySize:       2048,
		HashAlgorithm: enroll.SHA256,
		KeyUsage:      enroll.KeyUsageDigitalSignature,
		TemplateName:  "LoadTest",
	}

	inf := certreq.RenderINF(spec)
	assert.Contains(t, inf, `Signature = "$Windows NT$"`)
	assert.Contains(t, inf, `Subject = "CN=LoadTestCert-abc123, OU=load, O=ekspand"`)
	assert.Contains(t, inf, "KeyLength = 2048")
	assert.Contains(t, inf, "HashAlgorithm = sha256")
	assert.Contains(t, inf, "KeyUsage = 0x80")
	assert.Contains(t, inf, "RequestType = PKCS10")
	assert.Contains(t, inf, "CertificateTemplate = LoadTest")

	spec.TemplateName = ""
	inf = certreq.RenderINF(spec)
	assert.NotContains(t, inf, "[RequestAttributes]")
}

func TestTargetConfig(t *testing.T) {
	target := enroll.Target{
		Server: "ca1.example.com",
		CAName: "Example Issuing CA",
	}
	assert.Equal(t, `ca1.example.com\Example Issuing CA`, target.Config())
}

func TestCreateToolFailure(t *testing.T) {
	tmpDir := t.TempDir()
	client := certreq.NewClient(tmpDir).
		WithBinary(filepath.Join(tmpDir, "no-such-certreq"))

	spec := &enroll.RequestSpec{
		ID:            "req1",
		CommonName:    "LoadTestCert-req1",
		KeySize:       2048,
		HashAlgorithm: enroll.SHA256,
		KeyUsage:      enroll.KeyUsageDigitalSignature,
		TemplateName:  "LoadTest",
	}

	_, err := client.Create(context.Background(), spec)
	require.Error(t, err)
	assert.True(t, enroll.IsCreationError(err))

	// the descriptor must be cleaned up on failure as well
	_, err = os.Stat(filepath.Join(tmpDir, "req1.inf"))
	assert.True(t, os.IsNotExist(err))
}

func TestSubmitToolFailure(t *testing.T) {
	tmpDir := t.TempDir()
	client := certreq.NewClient(tmpDir).
		WithBinary(filepath.Join(tmpDir, "no-such-certreq"))

	artifact := &enroll.Artifact{ID: "req1", Path: filepath.Join(tmpDir, "req1.req")}
	target := enroll.Target{Server: "ca1", CAName: "ca", TemplateName: "LoadTest"}

	_, err := client.Submit(context.Background(), artifact, target)
	require.Error(t, err)
	assert.True(t, enroll.IsSubmissionError(err))
}
