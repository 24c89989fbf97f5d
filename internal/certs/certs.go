// Package certs keeps a self-signed certificate for serving the API over HTTPS
// on a local address.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// File names inside the certificate directory.
const (
	CertFileName = "nestegg.crt"
	KeyFileName  = "nestegg.key"
)

const (
	validity = 365 * 24 * time.Hour
	// renewBefore regenerates a certificate this close to expiry.
	renewBefore = 7 * 24 * time.Hour
)

// DefaultHosts are covered when a store is created without hosts.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

// Store loads or creates a certificate for a fixed set of hosts.
type Store struct {
	now      func() time.Time
	dir      string
	certFile string
	keyFile  string
	hosts    []string
}

// NewStore creates a store rooted at dir. Hosts may be DNS names or IP addresses.
func NewStore(dir string, hosts ...string) *Store {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	return &Store{
		now:      time.Now,
		dir:      dir,
		certFile: filepath.Join(dir, CertFileName),
		keyFile:  filepath.Join(dir, KeyFileName),
		hosts:    hosts,
	}
}

// Certificate returns the stored certificate, generating a new one when it is
// missing, unreadable, close to expiry or does not cover every host.
func (s *Store) Certificate() (tls.Certificate, error) {
	exists, err := s.exists()
	if err != nil {
		return tls.Certificate{}, err
	}
	if exists {
		cert, err := tls.LoadX509KeyPair(s.certFile, s.keyFile)
		if err == nil && s.check(cert) == nil {
			return cert, nil
		}
		if err := s.remove(); err != nil {
			return tls.Certificate{}, err
		}
	}
	return s.generate()
}

// TLSConfig wraps Certificate in a server configuration.
func (s *Store) TLSConfig() (*tls.Config, error) {
	cert, err := s.Certificate()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

func (s *Store) exists() (bool, error) {
	for _, path := range []string{s.certFile, s.keyFile} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("failed to check %s: %w", filepath.Base(path), err)
		}
	}
	return true, nil
}

func (s *Store) generate() (tls.Certificate, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := s.now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"nest-egg local server"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range s.hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to encode private key: %w", err)
	}

	if err := writePEM(s.certFile, "CERTIFICATE", certDER); err != nil {
		return tls.Certificate{}, err
	}
	if err := writePEM(s.keyFile, "EC PRIVATE KEY", keyDER); err != nil {
		return tls.Certificate{}, err
	}

	return tls.LoadX509KeyPair(s.certFile, s.keyFile)
}

func writePEM(path, blockType string, der []byte) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) check(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return fmt.Errorf("no certificates found")
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := s.now()
	if now.Before(x509Cert.NotBefore) {
		return fmt.Errorf("certificate not yet valid")
	}
	if now.Add(renewBefore).After(x509Cert.NotAfter) {
		return fmt.Errorf("certificate expires at %s", x509Cert.NotAfter.Format(time.RFC3339))
	}
	for _, h := range s.hosts {
		if err := x509Cert.VerifyHostname(h); err != nil {
			return fmt.Errorf("certificate not valid for %s: %w", h, err)
		}
	}
	return nil
}

func (s *Store) remove() error {
	for _, path := range []string{s.certFile, s.keyFile} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
