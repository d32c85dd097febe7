package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, resolved, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want no config file", resolved)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cvpack.yaml")
	content := `recipes_dir: my-recipes
cmake:
  generator: Ninja
  jobs: 8
archive:
  format: tar.xz
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CVPACK_OUTPUT_DIR", "/tmp/out")
	t.Setenv("CVPACK_CMAKE_JOBS", "4")

	cfg, resolved, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.RecipesDir != "my-recipes" || cfg.CMake.Generator != "Ninja" || cfg.Archive.Format != "tar.xz" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.OutputDir != "/tmp/out" || cfg.CMake.Jobs != 4 {
		t.Errorf("env values not applied: output=%s jobs=%d", cfg.OutputDir, cfg.CMake.Jobs)
	}
	if cfg.BuildRoot != ".cvpack" {
		t.Errorf("BuildRoot = %s, want default", cfg.BuildRoot)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, _, err := Load("/nonexistent/cvpack.yaml"); err == nil {
		t.Error("Load() should fail for a missing explicit config file")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "cvpack.yaml")
	if err := os.WriteFile(path, []byte("archive:\n  format: zip\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil {
		t.Error("Load() should reject an unknown archive format")
	}
}
