package toml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces/repositories"
)

const profileExtension = ".toml"

var _ repositories.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository implements repositories.ProfileRepository over a directory of TOML files
type ProfileRepository struct {
	profilesDir string
	parser      *ProfileParser
}

// NewProfileRepository creates a new TOML-based profile repository
func NewProfileRepository(profilesDir string) *ProfileRepository {
	return &ProfileRepository{
		profilesDir: profilesDir,
		parser:      NewProfileParser(),
	}
}

// GetProfile loads a profile by name or path without overrides
func (r *ProfileRepository) GetProfile(ctx context.Context, name string) (*entities.Profile, error) {
	return r.LoadProfile(ctx, name, entities.ProfileOverrides{})
}

// LoadProfile reads a profile and applies overrides before validation.
// An empty name builds the profile from overrides alone.
func (r *ProfileRepository) LoadProfile(_ context.Context, name string, overrides entities.ProfileOverrides) (*entities.Profile, error) {
	if name == "" {
		return r.parser.Parse("(overrides)", nil, overrides)
	}

	path, err := r.locate(name)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G304: path is a profile selected by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	return r.parser.Parse(strings.TrimSuffix(filepath.Base(path), profileExtension), data, overrides)
}

// ListProfiles returns the names of all profiles in the directory
func (r *ProfileRepository) ListProfiles(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.profilesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), profileExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), profileExtension))
	}
	sort.Strings(names)
	return names, nil
}

func (r *ProfileRepository) locate(name string) (string, error) {
	if strings.HasSuffix(name, profileExtension) {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	path := filepath.Join(r.profilesDir, name+profileExtension)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("profile not found: %s (searched %s)", name, r.profilesDir)
	}
	return path, nil
}
