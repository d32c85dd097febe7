package gateways

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

// ContribDirName is the folder the extra modules are exported into
const ContribDirName = "opencv_contrib"

// SourceExporter copies the library sources and the contrib modules into the source folder
type SourceExporter struct {
	logger interfaces.Logger
}

// NewSourceExporter creates a new source exporter
func NewSourceExporter(logger interfaces.Logger) *SourceExporter {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &SourceExporter{logger: logger}
}

// ContribPath returns where the contrib modules are read from
func ContribPath(source entities.RecipeSource) string {
	if source.ContribPath != "" {
		return source.ContribPath
	}
	return filepath.Join(filepath.Dir(filepath.Clean(source.Path)), ContribDirName)
}

// Export recreates sourceFolder from the recipe's source and contrib locations.
// Either may be a directory or a .tar.gz/.tar.xz archive.
func (e *SourceExporter) Export(ctx context.Context, recipe *entities.Recipe, sourceFolder string) (*entities.Artifact, error) {
	if recipe.Source.Path == "" {
		return nil, fmt.Errorf("recipe %s has no source path", recipe.Name)
	}

	if err := os.RemoveAll(sourceFolder); err != nil {
		return nil, fmt.Errorf("failed to clean source folder: %w", err)
	}

	if err := e.exportTree(ctx, recipe.Source.Path, sourceFolder); err != nil {
		return nil, fmt.Errorf("export sources: %w", err)
	}

	contrib := ContribPath(recipe.Source)
	if err := e.exportTree(ctx, contrib, filepath.Join(sourceFolder, ContribDirName)); err != nil {
		return nil, fmt.Errorf("export %s: %w", ContribDirName, err)
	}

	e.logger.Info("sources exported",
		interfaces.F("source", recipe.Source.Path),
		interfaces.F("contrib", contrib),
		interfaces.F("dest", sourceFolder))

	return &entities.Artifact{
		Name:    recipe.Name,
		Version: recipe.Version,
		Path:    sourceFolder,
		Type:    "directory",
	}, nil
}

func (e *SourceExporter) exportTree(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("source not found: %w", err)
	}

	if info.IsDir() {
		return copyTree(ctx, src, dst)
	}

	if _, ok := archiveFormatOf(src); !ok {
		return fmt.Errorf("%s is neither a directory nor a supported archive", src)
	}
	if err := extractArchive(src, dst, e.logger); err != nil {
		return err
	}
	return hoistSingleDir(dst)
}

// hoistSingleDir moves the contents of a lone top-level directory up into dir.
// Release tarballs usually wrap everything in <name>-<version>/.
func hoistSingleDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read extracted directory: %w", err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	// Rename first so a child sharing the wrapper's name cannot collide
	wrapper := filepath.Join(dir, ".cvpack-hoist")
	if err := os.Rename(filepath.Join(dir, entries[0].Name()), wrapper); err != nil {
		return fmt.Errorf("failed to hoist %s: %w", entries[0].Name(), err)
	}

	children, err := os.ReadDir(wrapper)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", wrapper, err)
	}
	for _, child := range children {
		if err := os.Rename(filepath.Join(wrapper, child.Name()), filepath.Join(dir, child.Name())); err != nil {
			return fmt.Errorf("failed to hoist %s: %w", child.Name(), err)
		}
	}
	return os.Remove(wrapper)
}

// copyTree copies src into dst preserving modes and symlinks.
// When dst lies inside src, the directory holding it is not copied.
func copyTree(ctx context.Context, src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if abs, absErr := filepath.Abs(path); absErr == nil && abs != absSrc && containsPath(abs, absDst) {
				return filepath.SkipDir
			}
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)

		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("failed to read symlink %s: %w", path, err)
			}
			return os.Symlink(link, target)

		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		}
		return nil
	})
}

// containsPath reports whether path is dir or lies below it
func containsPath(dir, path string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(os.PathSeparator))
}

func copyFile(src, dst string, perm os.FileMode) error {
	//nolint:gosec // G304: src comes from walking the recipe source tree
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	//nolint:gosec // G304: dst is inside the export folder
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
