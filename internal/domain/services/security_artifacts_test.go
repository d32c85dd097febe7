package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

// Test SHA256 generation
func TestSecurityArtifactsService_GenerateSHA256(t *testing.T) {
	service := NewSecurityArtifactsService(&interfaces.NoOpLogger{})

	// Create test file
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.bin")
	testContent := []byte("test content for sha256")

	if err := os.WriteFile(testFile, testContent, 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Generate SHA256
	checksumPath, err := service.GenerateSHA256(testFile)
	if err != nil {
		t.Fatalf("GenerateSHA256 failed: %v", err)
	}

	// Verify checksum file exists
	if _, err := os.Stat(checksumPath); os.IsNotExist(err) {
		t.Error("SHA256 file was not created")
	}

	// Verify checksum file content
	//nolint:gosec // G304: checksumPath is test output file
	content, err := os.ReadFile(checksumPath)
	if err != nil {
		t.Fatalf("Failed to read checksum file: %v", err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, "test.bin") {
		t.Errorf("Checksum file should contain filename, got: %s", contentStr)
	}

	// SHA256 should be 64 hex characters
	parts := strings.Fields(contentStr)
	if len(parts) < 1 || len(parts[0]) != 64 {
		t.Errorf("Invalid SHA256 hash format: %s", contentStr)
	}
}

// Test SHA512 generation
func TestSecurityArtifactsService_GenerateSHA512(t *testing.T) {
	service := NewSecurityArtifactsService(&interfaces.NoOpLogger{})

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.bin")
	testContent := []byte("test content for sha512")

	if err := os.WriteFile(testFile, testContent, 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	checksumPath, err := service.GenerateSHA512(testFile)
	if err != nil {
		t.Fatalf("GenerateSHA512 failed: %v", err)
	}

	if _, err := os.Stat(checksumPath); os.IsNotExist(err) {
		t.Error("SHA512 file was not created")
	}

	//nolint:gosec // G304: checksumPath is test output file
	content, err := os.ReadFile(checksumPath)
	if err != nil {
		t.Fatalf("Failed to read checksum file: %v", err)
	}

	// SHA512 should be 128 hex characters
	parts := strings.Fields(string(content))
	if len(parts) < 1 || len(parts[0]) != 128 {
		t.Errorf("Invalid SHA512 hash format: %s", string(content))
	}
}

func testPackageInfo() *entities.PackageInfo {
	return &entities.PackageInfo{
		Name:    "opencv",
		Version: "4.10.0",
		Settings: entities.Settings{
			OS: "Linux", Arch: "x86_64", BuildType: "Release",
		},
		Options: entities.DefaultOptions(),
		Requires: []entities.Requirement{
			{Name: "eigen", Version: "3.4.0"},
			{Name: "zlib", Version: "1.3.1"},
		},
	}
}

// Test SBOM generation
func TestSecurityArtifactsService_GenerateSBOM(t *testing.T) {
	service := NewSecurityArtifactsService(&interfaces.NoOpLogger{})
	service.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "opencv-4.10.0-linux-x86_64-release.tar.gz")
	if err := os.WriteFile(testFile, []byte("archive"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	sbomPath, err := service.GenerateSBOM(context.Background(), testFile, testPackageInfo())
	if err != nil {
		t.Fatalf("GenerateSBOM failed: %v", err)
	}

	//nolint:gosec // G304: sbomPath is test output file
	data, err := os.ReadFile(sbomPath)
	if err != nil {
		t.Fatalf("Failed to read SBOM: %v", err)
	}

	var sbom entities.SBOM
	if err := json.Unmarshal(data, &sbom); err != nil {
		t.Fatalf("SBOM is not valid JSON: %v", err)
	}

	if sbom.BOMFormat != "CycloneDX" {
		t.Errorf("BOMFormat = %s, want CycloneDX", sbom.BOMFormat)
	}
	if sbom.Metadata.Timestamp != "2026-01-02T03:04:05Z" {
		t.Errorf("Timestamp = %s", sbom.Metadata.Timestamp)
	}
	if sbom.Metadata.Component == nil || sbom.Metadata.Component.Name != "opencv" {
		t.Errorf("Metadata component = %+v, want opencv", sbom.Metadata.Component)
	}

	// archive + two requirements
	if len(sbom.Components) != 3 {
		t.Fatalf("Components = %d, want 3", len(sbom.Components))
	}
	if sbom.Components[0].Version != "4.10.0" || len(sbom.Components[0].Hashes) != 1 {
		t.Errorf("Archive component = %+v", sbom.Components[0])
	}
	if sbom.Components[2].PURL != "pkg:generic/zlib@1.3.1" {
		t.Errorf("zlib purl = %s", sbom.Components[2].PURL)
	}
}

func TestSecurityArtifactsService_GenerateSBOM_WithoutInfo(t *testing.T) {
	service := NewSecurityArtifactsService(nil)

	testFile := filepath.Join(t.TempDir(), "pkg.tar.gz")
	if err := os.WriteFile(testFile, []byte("archive"), 0600); err != nil {
		t.Fatal(err)
	}

	sbomPath, err := service.GenerateSBOM(context.Background(), testFile, nil)
	if err != nil {
		t.Fatalf("GenerateSBOM failed: %v", err)
	}

	//nolint:gosec // G304: sbomPath is test output file
	data, _ := os.ReadFile(sbomPath)
	var sbom entities.SBOM
	if err := json.Unmarshal(data, &sbom); err != nil {
		t.Fatal(err)
	}
	if len(sbom.Components) != 1 || sbom.Components[0].Version != "unknown" {
		t.Errorf("Components = %+v, want single unknown-version file", sbom.Components)
	}
}

// Test provenance generation
func TestSecurityArtifactsService_GenerateProvenance(t *testing.T) {
	service := NewSecurityArtifactsService(&interfaces.NoOpLogger{})

	testFile := filepath.Join(t.TempDir(), "pkg.tar.gz")
	if err := os.WriteFile(testFile, []byte("archive"), 0600); err != nil {
		t.Fatal(err)
	}

	provenancePath, err := service.GenerateProvenance(context.Background(), testFile, testPackageInfo())
	if err != nil {
		t.Fatalf("GenerateProvenance failed: %v", err)
	}

	//nolint:gosec // G304: provenancePath is test output file
	data, err := os.ReadFile(provenancePath)
	if err != nil {
		t.Fatal(err)
	}

	var provenance map[string]interface{}
	if err := json.Unmarshal(data, &provenance); err != nil {
		t.Fatalf("Provenance is not valid JSON: %v", err)
	}

	if provenance["predicateType"] != "https://slsa.dev/provenance/v0.2" {
		t.Errorf("predicateType = %v", provenance["predicateType"])
	}

	subjects, ok := provenance["subject"].([]interface{})
	if !ok || len(subjects) != 1 {
		t.Fatalf("subject = %v", provenance["subject"])
	}
	subject := subjects[0].(map[string]interface{})
	if subject["size"] != float64(len("archive")) {
		t.Errorf("subject size = %v", subject["size"])
	}

	predicate := provenance["predicate"].(map[string]interface{})
	materials := predicate["materials"].([]interface{})
	if len(materials) != 2 {
		t.Errorf("materials = %d, want 2", len(materials))
	}
}

// Test GenerateAllArtifacts
func TestSecurityArtifactsService_GenerateAllArtifacts(t *testing.T) {
	service := NewSecurityArtifactsService(&interfaces.NoOpLogger{})

	testFile := filepath.Join(t.TempDir(), "pkg.tar.gz")
	if err := os.WriteFile(testFile, []byte("archive"), 0600); err != nil {
		t.Fatal(err)
	}

	artifacts, err := service.GenerateAllArtifacts(context.Background(), testFile, testPackageInfo())
	if err != nil {
		t.Fatalf("GenerateAllArtifacts failed: %v", err)
	}

	for name, path := range map[string]string{
		"sha256":     artifacts.SHA256Path,
		"sha512":     artifacts.SHA512Path,
		"sbom":       artifacts.SBOMPath,
		"provenance": artifacts.ProvenancePath,
	} {
		if path == "" {
			t.Errorf("%s path is empty", name)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s file missing: %v", name, err)
		}
	}
}

func TestSecurityArtifactsService_NonexistentFile(t *testing.T) {
	service := NewSecurityArtifactsService(&interfaces.NoOpLogger{})

	_, err := service.GenerateAllArtifacts(context.Background(), "/nonexistent/pkg.tar.gz", nil)
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestSecurityArtifactsService_HashDeterminism(t *testing.T) {
	service := NewSecurityArtifactsService(&interfaces.NoOpLogger{})
	tmpDir := t.TempDir()

	first := filepath.Join(tmpDir, "a.bin")
	second := filepath.Join(tmpDir, "b.bin")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte("same content"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	p1, err := service.GenerateSHA256(first)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := service.GenerateSHA256(second)
	if err != nil {
		t.Fatal(err)
	}

	//nolint:gosec // G304: test output files
	c1, _ := os.ReadFile(p1)
	//nolint:gosec // G304: test output files
	c2, _ := os.ReadFile(p2)
	if strings.Fields(string(c1))[0] != strings.Fields(string(c2))[0] {
		t.Error("Equal content should produce equal hashes")
	}
}
