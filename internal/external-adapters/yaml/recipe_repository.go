package yaml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

var recipeExtensions = []string{".yml", ".yaml"}

// RecipeRepository implements repositories.RecipeRepository using YAML files
type RecipeRepository struct {
	recipesDir string
	parser     *RecipeParser
	logger     interfaces.Logger
}

// NewRecipeRepository creates a new YAML-based recipe repository
func NewRecipeRepository(recipesDir string, logger interfaces.Logger) *RecipeRepository {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &RecipeRepository{
		recipesDir: recipesDir,
		parser:     NewRecipeParser(),
		logger:     logger,
	}
}

// GetRecipe retrieves a package recipe by name, or by path when name is a YAML file
func (r *RecipeRepository) GetRecipe(_ context.Context, name string) (*entities.Recipe, error) {
	if hasRecipeExtension(name) {
		if _, err := os.Stat(name); err == nil {
			return r.parser.ParseFile(name)
		}
	}

	for _, ext := range recipeExtensions {
		filePath := filepath.Join(r.recipesDir, name+ext)
		if _, err := os.Stat(filePath); err == nil {
			return r.parser.ParseFile(filePath)
		}
	}

	return nil, fmt.Errorf("%w: %s (searched %s)", entities.ErrRecipeNotFound, name, r.recipesDir)
}

// ListRecipes returns all available package recipes sorted by name
func (r *RecipeRepository) ListRecipes(_ context.Context) ([]*entities.Recipe, error) {
	entries, err := os.ReadDir(r.recipesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes directory: %w", err)
	}

	recipes := make([]*entities.Recipe, 0)
	for _, entry := range entries {
		if entry.IsDir() || !hasRecipeExtension(entry.Name()) {
			continue
		}

		filePath := filepath.Join(r.recipesDir, entry.Name())
		def, err := r.parser.ParseFile(filePath)
		if err != nil {
			// Log warning but continue processing other files
			r.logger.Warn("skipping unparsable recipe", interfaces.F("file", entry.Name()), interfaces.F("error", err))
			continue
		}

		recipes = append(recipes, def)
	}

	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Name < recipes[j].Name })
	return recipes, nil
}

func hasRecipeExtension(name string) bool {
	for _, ext := range recipeExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
