// Package yaml provides YAML-based recipe parsing and repository implementations.
package yaml

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlRecipe represents the raw YAML structure
type yamlRecipe struct {
	Name        string            `yaml:"name"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description"`
	License     string            `yaml:"license"`
	Homepage    string            `yaml:"homepage"`
	Source      yamlSource        `yaml:"source"`
	Options     map[string]bool   `yaml:"options"`
	Requires    map[string]string `yaml:"requires"`
	Variables   map[string]string `yaml:"variables"`
	Build       yamlBuildStep     `yaml:"build"`
}

type yamlSource struct {
	Path        string `yaml:"path"`
	ContribPath string `yaml:"contrib_path"`
}

type yamlBuildStep struct {
	TimeoutMinutes int    `yaml:"timeout_minutes"`
	PreBuild       string `yaml:"pre_build"`
	PostInstall    string `yaml:"post_install"`
}

// RecipeParser parses YAML recipe files
type RecipeParser struct{}

// NewRecipeParser creates a new YAML parser
func NewRecipeParser() *RecipeParser {
	return &RecipeParser{}
}

// ParseFile parses a YAML recipe file into a Recipe entity.
// Relative source paths are resolved against the recipe's directory.
func (p *RecipeParser) ParseFile(filePath string) (*entities.Recipe, error) {
	//nolint:gosec // G304: filePath is recipe definition path from repository
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	recipe, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	recipe.FilePath = filePath
	dir := filepath.Dir(filePath)
	recipe.Source.Path = resolvePath(dir, recipe.Source.Path)
	if recipe.Source.ContribPath != "" {
		recipe.Source.ContribPath = resolvePath(dir, recipe.Source.ContribPath)
	}

	return recipe, nil
}

// Parse parses YAML bytes into a Recipe entity
func (p *RecipeParser) Parse(data []byte) (*entities.Recipe, error) {
	var yamlDef yamlRecipe
	if err := yaml.Unmarshal(data, &yamlDef); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if yamlDef.Name == "" {
		return nil, fmt.Errorf("recipe must have a name")
	}
	if yamlDef.Version == "" {
		return nil, fmt.Errorf("recipe %s must have a version", yamlDef.Name)
	}
	if yamlDef.Build.TimeoutMinutes < 0 {
		return nil, fmt.Errorf("recipe %s: timeout_minutes must not be negative", yamlDef.Name)
	}

	sourcePath := yamlDef.Source.Path
	if sourcePath == "" {
		sourcePath = "."
	}

	def := &entities.Recipe{
		Name:        yamlDef.Name,
		Version:     yamlDef.Version,
		Description: yamlDef.Description,
		License:     yamlDef.License,
		Homepage:    yamlDef.Homepage,
		Source: entities.RecipeSource{
			Path:        sourcePath,
			ContribPath: yamlDef.Source.ContribPath,
		},
		Options:   yamlDef.Options,
		Requires:  yamlDef.Requires,
		Variables: yamlDef.Variables,
		Build: entities.RecipeBuildStep{
			TimeoutMinutes: yamlDef.Build.TimeoutMinutes,
			PreBuild:       yamlDef.Build.PreBuild,
			PostInstall:    yamlDef.Build.PostInstall,
		},
	}

	if _, err := def.ResolveOptions(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", def.Name, err)
	}

	return def, nil
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
