package services

import (
	"path/filepath"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// LayoutFor computes the folders of a single-config CMake build.
// Sources are shared between targets; build and package folders are per target.
func LayoutFor(recipe *entities.Recipe, settings entities.Settings, buildRoot, outputDir string) entities.Layout {
	base := filepath.Join(buildRoot, recipe.Name+"-"+recipe.Version)
	buildFolder := filepath.Join(base, settings.Platform(), "build", settings.BuildType)

	return entities.Layout{
		SourceFolder:     filepath.Join(base, "source"),
		BuildFolder:      buildFolder,
		GeneratorsFolder: filepath.Join(buildFolder, "generators"),
		PackageFolder:    filepath.Join(outputDir, recipe.Name+"-"+recipe.Version+"-"+settings.Target()),
	}
}
