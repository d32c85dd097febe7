// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// RecipeRepository defines the interface for accessing package recipes
type RecipeRepository interface {
	// GetRecipe retrieves a package recipe by name
	GetRecipe(ctx context.Context, name string) (*entities.Recipe, error)

	// ListRecipes returns all available package recipes
	ListRecipes(ctx context.Context) ([]*entities.Recipe, error)
}

// ProfileRepository defines the interface for accessing build profiles
type ProfileRepository interface {
	// GetProfile retrieves a profile by name or path
	GetProfile(ctx context.Context, name string) (*entities.Profile, error)

	// LoadProfile retrieves a profile and applies overrides before validation.
	// An empty name builds the profile from overrides alone.
	LoadProfile(ctx context.Context, name string, overrides entities.ProfileOverrides) (*entities.Profile, error)

	// ListProfiles returns the names of all available profiles
	ListProfiles(ctx context.Context) ([]string, error)
}
