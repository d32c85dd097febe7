package gateways

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

// ArchiveFormat is a compressed tarball flavour
type ArchiveFormat string

const (
	// FormatTarGz is a gzip-compressed tarball
	FormatTarGz ArchiveFormat = "tar.gz"
	// FormatTarXz is an xz-compressed tarball
	FormatTarXz ArchiveFormat = "tar.xz"
)

// ParseArchiveFormat accepts "tar.gz", "tgz", "tar.xz" and "txz"
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "tar.gz", "tgz", "gz", "gzip":
		return FormatTarGz, nil
	case "tar.xz", "txz", "xz":
		return FormatTarXz, nil
	default:
		return "", fmt.Errorf("unsupported archive format %q", s)
	}
}

// Extension returns the file suffix including the leading dot
func (f ArchiveFormat) Extension() string {
	return "." + string(f)
}

// archiveFormatOf detects the format from a file name
func archiveFormatOf(name string) (ArchiveFormat, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz, true
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return FormatTarXz, true
	}
	return "", false
}

// archiveBaseName strips the archive suffix from a file name
func archiveBaseName(name string) string {
	for _, suffix := range []string{".tar.gz", ".tgz", ".tar.xz", ".txz"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

func newCompressor(format ArchiveFormat, w io.Writer) (io.WriteCloser, error) {
	switch format {
	case FormatTarGz:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case FormatTarXz:
		return xz.NewWriter(w)
	default:
		return nil, fmt.Errorf("unsupported archive format %q", format)
	}
}

func newDecompressor(format ArchiveFormat, r io.Reader) (io.Reader, func() error, error) {
	switch format {
	case FormatTarGz:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzr, gzr.Close, nil
	case FormatTarXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzr, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported archive format %q", format)
	}
}

// extractArchive unpacks a compressed tarball into destDir
func extractArchive(archivePath, destDir string, logger interfaces.Logger) error {
	format, ok := archiveFormatOf(archivePath)
	if !ok {
		return fmt.Errorf("not a supported archive: %s", archivePath)
	}

	//nolint:gosec // G304: File path archivePath is function parameter for extraction
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	r, closeFn, err := newDecompressor(format, file)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on decompressor
	defer closeFn()

	tr := tar.NewReader(r)

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	// Symlinks are created after all regular files exist
	type symlinkInfo struct {
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	cleanDest := filepath.Clean(destDir)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read error: %w", err)
		}

		//nolint:gosec // G305: Path traversal validated by prefix check below
		target := filepath.Join(destDir, header.Name)
		if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return fmt.Errorf("invalid file path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}

			//nolint:gosec // G115: Integer overflow from tar header mode is acceptable
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}

			// 1GB per entry guards against decompression bombs
			if _, err := io.Copy(outFile, io.LimitReader(tr, 1<<30)); err != nil {
				_ = outFile.Close()
				return fmt.Errorf("failed to write file: %w", err)
			}
			if err := outFile.Close(); err != nil {
				return fmt.Errorf("failed to close file: %w", err)
			}

		case tar.TypeSymlink:
			symlinks = append(symlinks, symlinkInfo{target: target, linkname: header.Linkname})

		default:
			logger.Warn("ignoring unsupported archive entry",
				interfaces.F("type", string(header.Typeflag)), interfaces.F("name", header.Name))
		}
	}

	for _, link := range symlinks {
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		if err := os.Symlink(link.linkname, link.target); err != nil {
			logger.Warn("failed to create symlink",
				interfaces.F("path", link.target), interfaces.F("target", link.linkname), interfaces.F("error", err))
		}
	}

	return nil
}
