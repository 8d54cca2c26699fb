package security

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrKeyMaterial is returned when signing key material cannot be decoded or
// is of an unsupported type.
var ErrKeyMaterial = errors.New("unusable key material")

// ParsePrivateKey decodes an RSA or ECDSA private key from value, which is
// either inline PEM or a path to a PEM file (both forms are accepted for
// JWT_PRIVATE_KEY).
func ParsePrivateKey(value string) (crypto.Signer, error) {
	block, err := decodePEM(value)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyMaterial, err)
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, ErrKeyMaterial
		}
		return signer, nil
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	}
	return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrKeyMaterial, block.Type)
}

// ParsePublicKey decodes the verification key for the pair produced by
// ParsePrivateKey. Accepts inline PEM or a file path.
func ParsePublicKey(value string) (crypto.PublicKey, error) {
	block, err := decodePEM(value)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}
	return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrKeyMaterial, block.Type)
}

// decodePEM resolves value to raw PEM bytes, reading from disk when it does
// not start with a PEM header, and decodes the first block.
func decodePEM(value string) (*pem.Block, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrKeyMaterial
	}
	raw := []byte(value)
	if !strings.HasPrefix(value, "-----BEGIN") {
		b, err := os.ReadFile(value)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, ErrKeyMaterial
	}
	return block, nil
}
