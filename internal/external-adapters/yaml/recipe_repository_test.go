package yaml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

func writeRecipe(t *testing.T, dir, file, body string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestRecipeRepository_GetRecipe_Success(t *testing.T) {
	tmpDir := t.TempDir()
	writeRecipe(t, tmpDir, "opencv.yml", "name: opencv\nversion: 4.10.0\n")
	writeRecipe(t, tmpDir, "opencv-lite.yaml", "name: opencv-lite\nversion: 4.10.0\n")

	repo := NewRecipeRepository(tmpDir, nil)

	for _, name := range []string{"opencv", "opencv-lite"} {
		recipe, err := repo.GetRecipe(context.Background(), name)
		if err != nil {
			t.Fatalf("GetRecipe(%s) error = %v", name, err)
		}
		if recipe.Name != name {
			t.Errorf("GetRecipe() name = %v, want %s", recipe.Name, name)
		}
	}
}

func TestRecipeRepository_GetRecipe_ByPath(t *testing.T) {
	elsewhere := t.TempDir()
	path := writeRecipe(t, elsewhere, "custom.yml", "name: opencv\nversion: 4.9.0\n")

	recipe, err := NewRecipeRepository(t.TempDir(), nil).GetRecipe(context.Background(), path)
	if err != nil {
		t.Fatalf("GetRecipe() error = %v", err)
	}
	if recipe.Version != "4.9.0" {
		t.Errorf("Version = %s", recipe.Version)
	}
}

func TestRecipeRepository_GetRecipe_NotFound(t *testing.T) {
	repo := NewRecipeRepository(t.TempDir(), nil)

	_, err := repo.GetRecipe(context.Background(), "nonexistent")
	if !errors.Is(err, entities.ErrRecipeNotFound) {
		t.Errorf("GetRecipe() error = %v, want ErrRecipeNotFound", err)
	}
}

func TestRecipeRepository_ListRecipes(t *testing.T) {
	tmpDir := t.TempDir()
	writeRecipe(t, tmpDir, "zopencv.yml", "name: zopencv\nversion: 1.0.0\n")
	writeRecipe(t, tmpDir, "opencv.yml", "name: opencv\nversion: 4.10.0\n")
	writeRecipe(t, tmpDir, "broken.yml", "name: [\n")
	writeRecipe(t, tmpDir, "README.md", "# recipes\n")

	recipes, err := NewRecipeRepository(tmpDir, nil).ListRecipes(context.Background())
	if err != nil {
		t.Fatalf("ListRecipes() error = %v", err)
	}

	if len(recipes) != 2 {
		t.Fatalf("ListRecipes() returned %d recipes, want 2", len(recipes))
	}
	if recipes[0].Name != "opencv" || recipes[1].Name != "zopencv" {
		t.Errorf("ListRecipes() not sorted: %s, %s", recipes[0].Name, recipes[1].Name)
	}
}
