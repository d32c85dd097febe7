package services

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

// ToolName identifies cvpack in generated metadata
const ToolName = "cvpack"

// ToolVersion is overridden at link time
var ToolVersion = "dev"

// SecurityArtifactsService handles generation of security artifacts
type SecurityArtifactsService struct {
	logger interfaces.Logger
	now    func() time.Time
}

// NewSecurityArtifactsService creates a new security artifacts service
func NewSecurityArtifactsService(logger interfaces.Logger) *SecurityArtifactsService {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &SecurityArtifactsService{logger: logger, now: time.Now}
}

// SecurityArtifacts represents all security artifacts for a package archive
type SecurityArtifacts struct {
	SHA256Path     string
	SHA512Path     string
	SBOMPath       string
	ProvenancePath string
}

// GenerateAllArtifacts generates checksums, SBOM and provenance for a package archive.
// Checksums are mandatory; SBOM and provenance failures are logged and skipped.
func (s *SecurityArtifactsService) GenerateAllArtifacts(ctx context.Context, archivePath string, info *entities.PackageInfo) (*SecurityArtifacts, error) {
	artifacts := &SecurityArtifacts{}

	s.logger.Info("generating checksums", interfaces.F("archive", filepath.Base(archivePath)))
	sha256Path, err := s.GenerateSHA256(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SHA256: %w", err)
	}
	artifacts.SHA256Path = sha256Path

	sha512Path, err := s.GenerateSHA512(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SHA512: %w", err)
	}
	artifacts.SHA512Path = sha512Path

	sbomPath, err := s.GenerateSBOM(ctx, archivePath, info)
	if err != nil {
		s.logger.Warn("SBOM generation failed", interfaces.F("error", err))
	} else {
		artifacts.SBOMPath = sbomPath
	}

	provenancePath, err := s.GenerateProvenance(ctx, archivePath, info)
	if err != nil {
		s.logger.Warn("provenance generation failed", interfaces.F("error", err))
	} else {
		artifacts.ProvenancePath = provenancePath
	}

	return artifacts, nil
}

// GenerateSHA256 writes a sha256sum-compatible checksum file
func (s *SecurityArtifactsService) GenerateSHA256(filePath string) (string, error) {
	return s.writeChecksum(filePath, ".sha256", sha256.New())
}

// GenerateSHA512 writes a sha512sum-compatible checksum file
func (s *SecurityArtifactsService) GenerateSHA512(filePath string) (string, error) {
	return s.writeChecksum(filePath, ".sha512", sha512.New())
}

func (s *SecurityArtifactsService) writeChecksum(filePath, ext string, h hash.Hash) (string, error) {
	sum, err := hashFile(filePath, h)
	if err != nil {
		return "", err
	}

	checksumPath := filePath + ext
	content := fmt.Sprintf("%s  %s\n", sum, filepath.Base(filePath))
	if err := os.WriteFile(checksumPath, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", ext, err)
	}

	return checksumPath, nil
}

// GenerateSBOM writes a CycloneDX SBOM listing the archive and its linked requirements
func (s *SecurityArtifactsService) GenerateSBOM(_ context.Context, filePath string, info *entities.PackageInfo) (string, error) {
	sum, err := hashFile(filePath, sha256.New())
	if err != nil {
		return "", err
	}

	archive := entities.Component{
		Type:    "file",
		Name:    filepath.Base(filePath),
		Version: "unknown",
		Hashes:  []entities.Hash{{Algorithm: "SHA-256", Value: sum}},
	}

	sbom := entities.SBOM{
		BOMFormat:   "CycloneDX",
		SpecVersion: "1.5",
		Version:     1,
		Metadata: entities.Metadata{
			Timestamp: s.now().UTC().Format(time.RFC3339),
			Tools:     []entities.Tool{{Name: ToolName, Version: ToolVersion}},
		},
		Components: []entities.Component{archive},
	}

	if info != nil {
		archive.Version = info.Version
		sbom.Components[0] = archive
		sbom.Metadata.Component = &entities.Component{
			Type:    "library",
			Name:    info.Name,
			Version: info.Version,
			PURL:    fmt.Sprintf("pkg:generic/%s@%s", info.Name, info.Version),
		}
		for _, req := range info.Requires {
			sbom.Components = append(sbom.Components, entities.Component{
				Type:    "library",
				Name:    req.Name,
				Version: req.Version,
				PURL:    fmt.Sprintf("pkg:generic/%s@%s", req.Name, req.Version),
			})
		}
	}

	data, err := json.MarshalIndent(sbom, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SBOM: %w", err)
	}

	sbomPath := filePath + ".sbom.json"
	if err := os.WriteFile(sbomPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write SBOM file: %w", err)
	}

	return sbomPath, nil
}

// GenerateProvenance writes an in-toto statement with a SLSA provenance predicate
func (s *SecurityArtifactsService) GenerateProvenance(_ context.Context, filePath string, info *entities.PackageInfo) (string, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return "", err
	}
	sum256, err := hashFile(filePath, sha256.New())
	if err != nil {
		return "", err
	}
	sum512, err := hashFile(filePath, sha512.New())
	if err != nil {
		return "", err
	}

	parameters := map[string]interface{}{}
	materials := []map[string]interface{}{}
	if info != nil {
		parameters["settings"] = info.Settings
		parameters["options"] = info.Options
		for _, req := range info.Requires {
			materials = append(materials, map[string]interface{}{
				"uri": fmt.Sprintf("pkg:generic/%s@%s", req.Name, req.Version),
			})
		}
	}

	timestamp := s.now().UTC().Format(time.RFC3339)
	provenance := map[string]interface{}{
		"_type": "https://in-toto.io/Statement/v0.1",
		"subject": []map[string]interface{}{
			{
				"name": filepath.Base(filePath),
				"size": fileInfo.Size(),
				"digest": map[string]string{
					"sha256": sum256,
					"sha512": sum512,
				},
			},
		},
		"predicateType": "https://slsa.dev/provenance/v0.2",
		"predicate": map[string]interface{}{
			"builder": map[string]string{
				"id": "https://github.com/ochairo/cvpack",
			},
			"buildType": "https://github.com/ochairo/cvpack/cmake@v1",
			"invocation": map[string]interface{}{
				"parameters": parameters,
			},
			"metadata": map[string]interface{}{
				"buildFinishedOn": timestamp,
				"completeness": map[string]bool{
					"parameters":  true,
					"environment": false,
					"materials":   info != nil,
				},
				"reproducible": false,
			},
			"materials": materials,
		},
	}

	data, err := json.MarshalIndent(provenance, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal provenance: %w", err)
	}

	provenancePath := filePath + ".provenance.json"
	if err := os.WriteFile(provenancePath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write provenance file: %w", err)
	}

	return provenancePath, nil
}

func hashFile(filePath string, h hash.Hash) (string, error) {
	//nolint:gosec // G304: filePath is the package archive produced by this build
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
