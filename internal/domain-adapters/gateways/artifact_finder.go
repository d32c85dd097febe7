package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// sidecarSuffixes are the files emitted next to every package archive
var sidecarSuffixes = []string{".sha256", ".sha512", ".sbom.json", ".provenance.json", ".asc"}

// ArtifactFinder provides utilities for locating build artifacts
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// FindPackages searches dir recursively for archives named <name>-<version>-*.
// An empty version matches every version.
func (f *ArtifactFinder) FindPackages(dir, name, version string) ([]entities.PackageFiles, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("artifacts directory does not exist: %s", dir)
	}

	prefix := name + "-"
	if version != "" {
		prefix = fmt.Sprintf("%s-%s-", name, strings.TrimPrefix(version, "v"))
	}

	var packages []entities.PackageFiles
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if !strings.HasPrefix(base, prefix) {
			return nil
		}
		if _, ok := archiveFormatOf(base); !ok {
			return nil
		}

		pkg := entities.PackageFiles{Archive: path}
		for _, suffix := range sidecarSuffixes {
			if _, err := os.Stat(path + suffix); err == nil {
				pkg.Sidecars = append(pkg.Sidecars, path+suffix)
			}
		}
		packages = append(packages, pkg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(packages, func(i, j int) bool { return packages[i].Archive < packages[j].Archive })
	return packages, nil
}
