package gateways

import (
	"context"
	"fmt"

	"github.com/ochairo/cvpack/internal/external-adapters/gpg"
)

// gpgSigner wraps the external GPG adapter to implement the domain Signer gateway
type gpgSigner struct {
	signer *gpg.Signer
}

// NewGPGSigner loads the signing key
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGSigner(keyPath, passphrase string) (*gpgSigner, error) {
	signer, err := gpg.NewSignerFromFile(keyPath, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load GPG signing key: %w", err)
	}
	return &gpgSigner{signer: signer}, nil
}

// SignFile writes an armored detached signature for filePath
func (g *gpgSigner) SignFile(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sigPath, err := g.signer.SignFile(filePath)
	if err != nil {
		return "", fmt.Errorf("GPG signing failed: %w", err)
	}
	return sigPath, nil
}

// Fingerprint returns the signing key fingerprint
func (g *gpgSigner) Fingerprint() string {
	return g.signer.Fingerprint()
}

// gpgVerifier wraps the external GPG adapter to implement the domain SignatureVerifier gateway
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a verifier trusting the keys in keyFiles
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier(keyFiles ...string) (*gpgVerifier, error) {
	v := gpg.NewVerifier()
	for _, keyFile := range keyFiles {
		if err := v.ImportKeyFromFile(keyFile); err != nil {
			return nil, fmt.Errorf("failed to import GPG key from file: %w", err)
		}
	}
	return &gpgVerifier{verifier: v}, nil
}

// VerifySignature verifies a detached GPG signature from a local file
func (g *gpgVerifier) VerifySignature(ctx context.Context, filePath, sigPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fingerprint, err := g.verifier.VerifySignatureFromFile(filePath, sigPath)
	if err != nil {
		return "", fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return fingerprint, nil
}

// GetKeyringSize returns the number of keys loaded
func (g *gpgVerifier) GetKeyringSize() int {
	return g.verifier.GetKeyringSize()
}
