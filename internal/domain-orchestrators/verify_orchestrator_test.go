package orchestrators

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

type mockFinder struct {
	packages []entities.PackageFiles
	err      error
}

func (m *mockFinder) FindPackages(_, _, _ string) ([]entities.PackageFiles, error) {
	return m.packages, m.err
}

type mockChecksums struct {
	bad map[string]bool
}

func (m *mockChecksums) VerifySidecars(_ context.Context, filePath string) ([]string, error) {
	if m.bad[filePath] {
		return nil, errors.New("sha256 checksum mismatch")
	}
	return []string{"sha256", "sha512"}, nil
}

type mockSignatureVerifier struct {
	err error
}

func (m *mockSignatureVerifier) VerifySignature(_ context.Context, _, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "ABCDEF0123456789", nil
}

func writePackages(t *testing.T, names ...string) []entities.PackageFiles {
	t.Helper()
	dir := t.TempDir()
	var pkgs []entities.PackageFiles
	for _, name := range names {
		path := filepath.Join(dir, name)
		for _, p := range []string{path, path + ".asc"} {
			if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
				t.Fatal(err)
			}
		}
		pkgs = append(pkgs, entities.PackageFiles{Archive: path, Sidecars: []string{path + ".asc"}})
	}
	return pkgs
}

func TestVerifyOrchestrator_Verify(t *testing.T) {
	pkgs := writePackages(t, "opencv-4.10.0-linux-x86_64-release.tar.gz", "opencv-4.10.0-android-armv8-release.tar.gz")
	orch := NewVerifyOrchestrator(&mockFinder{packages: pkgs}, &mockChecksums{}, &mockSignatureVerifier{})

	result, err := orch.Verify(context.Background(), "dist", "opencv", "4.10.0")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(result.Packages) != 2 {
		t.Fatalf("verified %d packages, want 2", len(result.Packages))
	}
	for _, p := range result.Packages {
		if p.Failed || p.Fingerprint != "ABCDEF0123456789" {
			t.Errorf("package %+v should pass with a signature", p)
		}
	}
	if !strings.Contains(result.GetVerifySummary(), "Signed by: ABCDEF0123456789") {
		t.Errorf("summary = %s", result.GetVerifySummary())
	}
}

func TestVerifyOrchestrator_ChecksumsOnly(t *testing.T) {
	pkgs := writePackages(t, "opencv-4.10.0-linux-x86_64-release.tar.gz")
	orch := NewVerifyOrchestrator(&mockFinder{packages: pkgs}, &mockChecksums{}, nil)

	result, err := orch.Verify(context.Background(), "dist", "opencv", "")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Packages[0].Fingerprint != "" {
		t.Error("no signature should be checked without a verifier")
	}
}

func TestVerifyOrchestrator_Failures(t *testing.T) {
	pkgs := writePackages(t, "opencv-4.10.0-linux-x86_64-release.tar.gz", "opencv-4.10.0-ios-armv8-release.tar.gz")

	tests := []struct {
		name     string
		checks   *mockChecksums
		verifier *mockSignatureVerifier
		reason   string
	}{
		{
			name:     "checksum mismatch",
			checks:   &mockChecksums{bad: map[string]bool{pkgs[0].Archive: true}},
			verifier: &mockSignatureVerifier{},
			reason:   "checksum mismatch",
		},
		{
			name:     "bad signature",
			checks:   &mockChecksums{},
			verifier: &mockSignatureVerifier{err: errors.New("signature verification failed")},
			reason:   "signature verification failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := NewVerifyOrchestrator(&mockFinder{packages: pkgs}, tt.checks, tt.verifier)
			result, err := orch.Verify(context.Background(), "dist", "opencv", "4.10.0")
			if !errors.Is(err, ErrVerificationFailed) {
				t.Fatalf("Verify() error = %v, want ErrVerificationFailed", err)
			}
			if !result.Packages[0].Failed || !strings.Contains(result.Packages[0].Reason, tt.reason) {
				t.Errorf("package 0 = %+v, want failure %q", result.Packages[0], tt.reason)
			}
			if !strings.Contains(result.GetVerifySummary(), "FAILED") {
				t.Errorf("summary = %s", result.GetVerifySummary())
			}
		})
	}
}

func TestVerifyOrchestrator_MissingSignature(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "opencv-4.10.0-linux-x86_64-release.tar.gz")
	if err := os.WriteFile(archive, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	orch := NewVerifyOrchestrator(
		&mockFinder{packages: []entities.PackageFiles{{Archive: archive}}},
		&mockChecksums{},
		&mockSignatureVerifier{},
	)

	result, err := orch.Verify(context.Background(), dir, "opencv", "")
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("Verify() error = %v, want ErrVerificationFailed", err)
	}
	if !strings.Contains(result.Packages[0].Reason, "signature missing") {
		t.Errorf("Reason = %s", result.Packages[0].Reason)
	}
}

func TestVerifyOrchestrator_NoPackages(t *testing.T) {
	orch := NewVerifyOrchestrator(&mockFinder{}, &mockChecksums{}, nil)
	if _, err := orch.Verify(context.Background(), "dist", "opencv", ""); !errors.Is(err, ErrNoPackages) {
		t.Errorf("Verify() error = %v, want ErrNoPackages", err)
	}
}
