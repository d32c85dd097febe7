package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces/gateways"
)

// signatureExtension is the suffix of armored detached signatures
const signatureExtension = ".asc"

// PackageFinder locates package archives and their sidecars
type PackageFinder interface {
	FindPackages(dir, name, version string) ([]entities.PackageFiles, error)
}

// ChecksumVerifier checks the checksum sidecars of an archive
type ChecksumVerifier interface {
	VerifySidecars(ctx context.Context, filePath string) ([]string, error)
}

// VerifyOrchestrator checks published packages: checksums always, signatures when a keyring is given
type VerifyOrchestrator struct {
	finder    PackageFinder
	checksums ChecksumVerifier
	verifier  gateways.SignatureVerifier
}

// NewVerifyOrchestrator creates a new verify orchestrator. verifier may be nil.
func NewVerifyOrchestrator(finder PackageFinder, checksums ChecksumVerifier, verifier gateways.SignatureVerifier) *VerifyOrchestrator {
	return &VerifyOrchestrator{finder: finder, checksums: checksums, verifier: verifier}
}

// PackageVerification is the outcome for one archive
type PackageVerification struct {
	Archive     string
	Checksums   []string
	Fingerprint string // signer fingerprint when a signature was checked
	Failed      bool
	Reason      string
}

// VerifyResult contains the verification results for every archive found
type VerifyResult struct {
	Packages []PackageVerification
	Duration time.Duration
}

// ErrVerificationFailed is returned when at least one package fails verification
var ErrVerificationFailed = errors.New("package verification failed")

// ErrNoPackages is returned when no archive matches
var ErrNoPackages = errors.New("no packages found")

// Verify checks every archive named <name>-<version>-* under dir.
// Signatures are required when a verifier is configured.
func (o *VerifyOrchestrator) Verify(ctx context.Context, dir, name, version string) (*VerifyResult, error) {
	startTime := time.Now()

	packages, err := o.finder.FindPackages(dir, name, version)
	if err != nil {
		return nil, fmt.Errorf("failed to find packages: %w", err)
	}
	if len(packages) == 0 {
		return nil, fmt.Errorf("%w for %s in %s", ErrNoPackages, name, dir)
	}

	result := &VerifyResult{}
	failed := 0
	for _, pkg := range packages {
		v := o.verifyPackage(ctx, pkg)
		if v.Failed {
			failed++
		}
		result.Packages = append(result.Packages, v)
	}
	result.Duration = time.Since(startTime)

	if failed > 0 {
		return result, fmt.Errorf("%w: %d of %d packages", ErrVerificationFailed, failed, len(packages))
	}
	return result, nil
}

func (o *VerifyOrchestrator) verifyPackage(ctx context.Context, pkg entities.PackageFiles) PackageVerification {
	v := PackageVerification{Archive: pkg.Archive}

	// Step 1: Checksums
	algos, err := o.checksums.VerifySidecars(ctx, pkg.Archive)
	v.Checksums = algos
	if err != nil {
		v.Failed = true
		v.Reason = err.Error()
		return v
	}

	// Step 2: Signature
	if o.verifier == nil {
		return v
	}
	sigPath := pkg.Archive + signatureExtension
	if _, err := os.Stat(sigPath); err != nil {
		v.Failed = true
		v.Reason = "signature missing: " + filepath.Base(sigPath)
		return v
	}
	fingerprint, err := o.verifier.VerifySignature(ctx, pkg.Archive, sigPath)
	if err != nil {
		v.Failed = true
		v.Reason = err.Error()
		return v
	}
	v.Fingerprint = fingerprint
	return v
}

// GetVerifySummary generates a human-readable verification summary
func (r *VerifyResult) GetVerifySummary() string {
	var b strings.Builder
	for _, p := range r.Packages {
		name := filepath.Base(p.Archive)
		if p.Failed {
			fmt.Fprintf(&b, "🚫 FAILED: %s\n   %s\n", name, p.Reason)
			continue
		}
		fmt.Fprintf(&b, "✅ PASSED: %s\n   Checksums: %s\n", name, strings.Join(p.Checksums, ", "))
		if p.Fingerprint != "" {
			fmt.Fprintf(&b, "   Signed by: %s\n", p.Fingerprint)
		}
	}
	fmt.Fprintf(&b, "   Duration: %v", r.Duration)
	return b.String()
}
