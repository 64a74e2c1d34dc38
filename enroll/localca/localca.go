// Package localca implements the enrollment client with an in-process
// issuing CA. It keeps the same create/submit contract as a real CA
// backend, which makes load runs and tests possible without an
// enterprise CA deployment.
package localca

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/effective-security/caload/certutil"
	"github.com/effective-security/caload/enroll"
	"github.com/effective-security/xlog"
	"github.com/pkg/errors"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/caload", "localca")

// Client is an enrollment client backed by a self-signed issuer.
// It is safe for concurrent use.
type Client struct {
	outDir string
	cert   *x509.Certificate
	key    *ecdsa.PrivateKey

	lastRequestID atomic.Uint64
	serial        atomic.Uint64
}

// New creates a Client with a fresh self-signed issuer, writing
// artifacts under outDir.
func New(outDir string) (*Client, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName: "caload local issuer",
		},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to create issuer certificate")
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	c := &Client{
		outDir: outDir,
		cert:   cert,
		key:    key,
	}
	c.serial.Store(1)

	return c, nil
}

// Issuer returns the issuing certificate.
func (c *Client) Issuer() *x509.Certificate {
	return c.cert
}

// Create generates a throwaway RSA key and a PKCS#10 request for the
// spec, and writes the request blob as PEM.
func (c *Client) Create(ctx context.Context, spec *enroll.RequestSpec) (*enroll.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	key, err := rsa.GenerateKey(rand.Reader, spec.KeySize)
	if err != nil {
		return nil, enroll.NewCreationError(err, "")
	}

	template := &x509.CertificateRequest{
		Subject:            subjectName(spec),
		SignatureAlgorithm: signatureAlgorithm(spec.HashAlgorithm),
	}

	der, err := x509.CreateCertificateRequest(rand.Reader, template, key)
	if err != nil {
		return nil, enroll.NewCreationError(err, "")
	}

	reqFile := filepath.Join(c.outDir, spec.ID+".req")
	err = os.WriteFile(reqFile, certutil.EncodeRequestToPEM(der), 0644)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to write request blob")
	}

	keyPEM, err := certutil.EncodePrivateKeyToPEM(key)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to encode key")
	}
	err = os.WriteFile(filepath.Join(c.outDir, spec.ID+".key"), keyPEM, 0600)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to write key")
	}

	logger.KV(xlog.DEBUG, "op", "create", "id", spec.ID, "req", reqFile)
	return &enroll.Artifact{ID: spec.ID, Path: reqFile}, nil
}

// Submit signs the request blob with the local issuer and writes the
// issued certificate next to it. Every issuance is assigned a
// monotonically increasing request id.
func (c *Client) Submit(ctx context.Context, artifact *enroll.Artifact, target enroll.Target) (*enroll.Issuance, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	csr, err := certutil.LoadRequestFromPEM(artifact.Path)
	if err != nil {
		return nil, enroll.NewSubmissionError(err, "")
	}

	err = csr.CheckSignature()
	if err != nil {
		return nil, enroll.NewSubmissionError(errors.WithMessage(err, "invalid request signature"), "")
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(int64(c.serial.Add(1))),
		Subject:      csr.Subject,
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, c.cert, csr.PublicKey, c.key)
	if err != nil {
		return nil, enroll.NewSubmissionError(err, "")
	}

	certFile := filepath.Join(c.outDir, artifact.ID+".cer")
	certPEM := certutil.EncodeToPEM(der)
	err = os.WriteFile(certFile, certPEM, 0644)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to write certificate")
	}

	id := c.lastRequestID.Add(1)
	logger.KV(xlog.DEBUG, "op", "submit", "id", artifact.ID, "request_id", id)

	return &enroll.Issuance{
		RequestID:       strconv.FormatUint(id, 10),
		CertificatePath: certFile,
		Certificate:     certPEM,
	}, nil
}

func subjectName(spec *enroll.RequestSpec) pkix.Name {
	name := pkix.Name{
		CommonName: spec.CommonName,
	}
	appendIf(spec.Name.Country, &name.Country)
	appendIf(spec.Name.Province, &name.Province)
	appendIf(spec.Name.Locality, &name.Locality)
	appendIf(spec.Name.Organization, &name.Organization)
	appendIf(spec.Name.OrganizationalUnit, &name.OrganizationalUnit)
	return name
}

// appendIf appends to a if s is not an empty string.
func appendIf(s string, a *[]string) {
	if s != "" {
		*a = append(*a, s)
	}
}

func signatureAlgorithm(hash string) x509.SignatureAlgorithm {
	switch hash {
	case enroll.SHA384:
		return x509.SHA384WithRSA
	case enroll.SHA512:
		return x509.SHA512WithRSA
	default:
		return x509.SHA256WithRSA
	}
}
