package sslcert

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CertSuite struct {
	suite.Suite
}

func TestCertSuite(t *testing.T) {
	suite.Run(t, new(CertSuite))
}

func (s *CertSuite) TestGenerate() {
	certPEM, keyPEM, err := New().Generate()
	s.Require().NoError(err)
	s.Require().NotEmpty(certPEM)
	s.Require().NotEmpty(keyPEM)

	// Пара должна грузиться штатным tls без файлов на диске.
	_, pairErr := tls.X509KeyPair(certPEM, keyPEM)
	s.Require().NoError(pairErr)

	block, _ := pem.Decode(certPEM)
	s.Require().NotNil(block)
	cert, parseErr := x509.ParseCertificate(block.Bytes)
	s.Require().NoError(parseErr)

	s.Contains(cert.DNSNames, "localhost")
	s.Len(cert.IPAddresses, 2)
	s.True(cert.NotAfter.After(time.Now()))
}

func (s *CertSuite) TestGenerate_CustomHosts() {
	certPEM, _, err := New("linktrack.local", "10.0.0.5").Generate()
	s.Require().NoError(err)

	block, _ := pem.Decode(certPEM)
	s.Require().NotNil(block)
	cert, parseErr := x509.ParseCertificate(block.Bytes)
	s.Require().NoError(parseErr)

	s.Equal([]string{"linktrack.local"}, cert.DNSNames)
	s.Require().Len(cert.IPAddresses, 1)
	s.Equal("10.0.0.5", cert.IPAddresses[0].String())
}
