// Package certutil provides PEM helpers for certificates, certificate
// requests and private keys.
package certutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/pkg/errors"
)

// ParseFromPEM returns Certificate parsed from PEM
func ParseFromPEM(bytes []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(bytes)
	if block == nil || block.Type != "CERTIFICATE" || len(block.Headers) != 0 {
		return nil, errors.Errorf("unable to parse PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to parse certificate")
	}

	return cert, nil
}

// LoadFromPEM returns Certificate loaded from the file
func LoadFromPEM(certFile string) (*x509.Certificate, error) {
	bytes, err := os.ReadFile(certFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return ParseFromPEM(bytes)
}

// EncodeToPEM returns PEM encoded certificate
func EncodeToPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

// ParseRequestFromPEM returns CertificateRequest parsed from PEM
func ParseRequestFromPEM(bytes []byte) (*x509.CertificateRequest, error) {
	block, _ := pem.Decode(bytes)
	if block == nil ||
		(block.Type != "CERTIFICATE REQUEST" && block.Type != "NEW CERTIFICATE REQUEST") {
		return nil, errors.Errorf("unable to parse PEM")
	}

	csr, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to parse certificate request")
	}

	return csr, nil
}

// LoadRequestFromPEM returns CertificateRequest loaded from the file
func LoadRequestFromPEM(csrFile string) (*x509.CertificateRequest, error) {
	bytes, err := os.ReadFile(csrFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return ParseRequestFromPEM(bytes)
}

// EncodeRequestToPEM returns PEM encoded certificate request
func EncodeRequestToPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der})
}

// EncodePrivateKeyToPEM returns PEM encoded private key
func EncodePrivateKeyToPEM(priv crypto.PrivateKey) (key []byte, err error) {
	switch priv := priv.(type) {
	case *rsa.PrivateKey:
		key = pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(priv),
		})
	case *ecdsa.PrivateKey, ed25519.PrivateKey:
		der, err := x509.MarshalPKCS8PrivateKey(priv)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		key = pem.EncodeToMemory(&pem.Block{
			Type:  "PRIVATE KEY",
			Bytes: der,
		})
	default:
		return nil, errors.Errorf("unsupported key type: %T", priv)
	}
	return key, nil
}
