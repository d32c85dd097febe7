package gateways

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

// Packager archives an installed package folder into a distributable tarball
type Packager struct {
	format ArchiveFormat
	logger interfaces.Logger
}

// NewPackager creates a new packager
func NewPackager(format ArchiveFormat, logger interfaces.Logger) *Packager {
	if format == "" {
		format = FormatTarGz
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Packager{format: format, logger: logger}
}

// PackageInfoFileName is the metadata file written into every package folder
const PackageInfoFileName = "cvpack-package.json"

// WritePackageInfo writes package metadata as indented JSON into packageFolder
func (p *Packager) WritePackageInfo(packageFolder string, info *entities.PackageInfo) (string, error) {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode package info: %w", err)
	}

	path := filepath.Join(packageFolder, PackageInfoFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return "", fmt.Errorf("failed to write package info: %w", err)
	}
	return path, nil
}

// ReadPackageInfo loads metadata previously written by WritePackageInfo
func ReadPackageInfo(packageFolder string) (*entities.PackageInfo, error) {
	//nolint:gosec // G304: path is built from a package folder we produced
	data, err := os.ReadFile(filepath.Join(packageFolder, PackageInfoFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read package info: %w", err)
	}
	var info entities.PackageInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode package info: %w", err)
	}
	return &info, nil
}

// PackageArtifact archives packageFolder into outputDir as <folder name>.tar.gz (or .tar.xz).
// Returns a new artifact pointing to the archive.
func (p *Packager) PackageArtifact(
	ctx context.Context,
	recipe *entities.Recipe,
	settings entities.Settings,
	packageFolder, outputDir string,
) (*entities.Artifact, error) {
	info, err := os.Stat(packageFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to stat package folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("package folder %s is not a directory", packageFolder)
	}

	if outputDir == "" {
		outputDir = "dist"
	}
	archivePath := filepath.Join(outputDir, filepath.Base(filepath.Clean(packageFolder))+p.format.Extension())

	if err := p.createTarball(ctx, packageFolder, archivePath); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	p.logger.Info("package archived", interfaces.F("archive", archivePath))

	return &entities.Artifact{
		Name:     recipe.Name,
		Version:  recipe.Version,
		Platform: settings.Platform(),
		Path:     archivePath,
		Type:     "archive",
	}, nil
}

// createTarball creates a compressed tar archive from a source directory
func (p *Packager) createTarball(ctx context.Context, sourceDir, tarballPath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(tarballPath), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	//nolint:gosec // G304: File path tarballPath is constructed for package output
	file, err := os.Create(tarballPath)
	if err != nil {
		return fmt.Errorf("failed to create tarball file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	compressor, err := newCompressor(p.format, file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := compressor.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	tarWriter := tar.NewWriter(compressor)
	defer func() {
		if cerr := tarWriter.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	// Skip the archive itself when the output directory lies inside the package folder
	absTarball, err := filepath.Abs(tarballPath)
	if err != nil {
		return err
	}

	return filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if abs, absErr := filepath.Abs(path); absErr == nil && abs == absTarball {
			return nil
		}

		var linkTarget string
		if info.Mode()&os.ModeSymlink != 0 {
			linkTarget, err = os.Readlink(path)
			if err != nil {
				p.logger.Warn("skipping unreadable symlink", interfaces.F("path", path), interfaces.F("error", err))
				return nil
			}
		}

		header, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return fmt.Errorf("failed to create tar header: %w", err)
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if relPath == "." {
			return nil
		}

		header.Name = filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header: %w", err)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		//nolint:gosec // G304: File path from filepath.Walk for packaging
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		_, err = io.Copy(tarWriter, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to write file to tar: %w", err)
		}
		return nil
	})
}
