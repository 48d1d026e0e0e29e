package sslcert

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"time"
)

// validity срок действия самоподписанного сертификата.
const validity = 365 * 24 * time.Hour

// Generator выпускает самоподписанные сертификаты для локального TLS.
// Сертификаты годятся для разработки и стендов, не для продакшена.
type Generator struct {
	hosts []string
}

// New создает генератор для перечисленных хостов. Без аргументов
// сертификат выписывается на localhost и loopback-адреса.
func New(hosts ...string) *Generator {
	if len(hosts) == 0 {
		hosts = []string{"localhost", "127.0.0.1", "::1"}
	}
	return &Generator{hosts: hosts}
}

// Generate выпускает новую пару сертификат/ключ в формате PEM.
// Ключ ECDSA P-256, сертификат подписан сам собой.
func (g *Generator) Generate() ([]byte, []byte, error) {
	privKey, keyErr := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if keyErr != nil {
		return nil, nil, fmt.Errorf("generate private key: %w", keyErr)
	}

	serial, serialErr := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128)) //nolint:mnd
	if serialErr != nil {
		return nil, nil, fmt.Errorf("generate serial number: %w", serialErr)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"linktrack"},
		},
		NotBefore:             now,
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range g.hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, certErr := x509.CreateCertificate(rand.Reader, template, template, &privKey.PublicKey, privKey)
	if certErr != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", certErr)
	}
	keyDER, marshalErr := x509.MarshalECPrivateKey(privKey)
	if marshalErr != nil {
		return nil, nil, fmt.Errorf("marshal private key: %w", marshalErr)
	}

	certPEM, pemErr := pemEncode("CERTIFICATE", certDER)
	if pemErr != nil {
		return nil, nil, pemErr
	}
	keyPEM, pemErr := pemEncode("EC PRIVATE KEY", keyDER)
	if pemErr != nil {
		return nil, nil, pemErr
	}
	return certPEM, keyPEM, nil
}

func pemEncode(blockType string, der []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := pem.Encode(&buf, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		return nil, fmt.Errorf("pem encode %s: %w", blockType, err)
	}
	return buf.Bytes(), nil
}
