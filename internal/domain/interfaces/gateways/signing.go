package gateways

import "context"

// Signer produces a detached signature next to a file
type Signer interface {
	// SignFile signs filePath and returns the signature path
	SignFile(ctx context.Context, filePath string) (string, error)
}

// SignatureVerifier checks detached signatures
type SignatureVerifier interface {
	// VerifySignature checks sigPath against filePath and returns the signer's fingerprint
	VerifySignature(ctx context.Context, filePath, sigPath string) (string, error)
}
