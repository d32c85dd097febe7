package gateways

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// ChecksumAlgorithm names a supported digest
type ChecksumAlgorithm string

const (
	// SHA256 is the sha256sum digest
	SHA256 ChecksumAlgorithm = "sha256"
	// SHA512 is the sha512sum digest
	SHA512 ChecksumAlgorithm = "sha512"
)

// ErrNoChecksums is returned when an archive has no checksum sidecar files
var ErrNoChecksums = errors.New("no checksum files found")

func (a ChecksumAlgorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", a)
	}
}

// ChecksumVerifier checks archives against sha256sum/sha512sum style files
type ChecksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
func NewChecksumVerifier() *ChecksumVerifier {
	return &ChecksumVerifier{}
}

// VerifyChecksum verifies a file's digest
func (v *ChecksumVerifier) VerifyChecksum(ctx context.Context, filePath string, algo ChecksumAlgorithm, expectedSum string) error {
	actualSum, err := v.CalculateChecksum(ctx, filePath, algo)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actualSum, strings.TrimSpace(expectedSum)) {
		return fmt.Errorf("%s checksum mismatch: expected %s, got %s", algo, expectedSum, actualSum)
	}

	return nil
}

// VerifySidecars checks every <file>.sha256 and <file>.sha512 that exists next to filePath.
// It returns the names of the algorithms that were verified.
func (v *ChecksumVerifier) VerifySidecars(ctx context.Context, filePath string) ([]string, error) {
	var verified []string

	for _, algo := range []ChecksumAlgorithm{SHA256, SHA512} {
		sidecar := filePath + "." + string(algo)
		//nolint:gosec // G304: sidecar path derives from the archive being verified
		data, err := os.ReadFile(sidecar)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return verified, fmt.Errorf("failed to read %s: %w", sidecar, err)
		}

		fields := strings.Fields(string(data))
		if len(fields) == 0 {
			return verified, fmt.Errorf("%s is empty", sidecar)
		}

		if err := v.VerifyChecksum(ctx, filePath, algo, fields[0]); err != nil {
			return verified, err
		}
		verified = append(verified, string(algo))
	}

	if len(verified) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoChecksums, filePath)
	}
	return verified, nil
}

// CalculateChecksum returns the hex digest of a file
func (v *ChecksumVerifier) CalculateChecksum(ctx context.Context, filePath string, algo ChecksumAlgorithm) (string, error) {
	h, err := algo.newHash()
	if err != nil {
		return "", err
	}

	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if _, err := io.Copy(h, &contextReader{ctx: ctx, r: f}); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// contextReader stops a long copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
