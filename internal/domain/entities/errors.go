package entities

import "errors"

var (
	// ErrInvalidConfiguration is returned when settings or options cannot be built
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrRecipeNotFound is returned when no recipe file exists for a name
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrDependencyMissing is returned when a requirement has no installed prefix
	ErrDependencyMissing = errors.New("dependency not installed")
)

// InvalidConfigurationError describes why a configuration was rejected
type InvalidConfigurationError struct {
	Setting string
	Reason  string
}

func (e *InvalidConfigurationError) Error() string {
	if e.Setting == "" {
		return "invalid configuration: " + e.Reason
	}
	return "invalid configuration: " + e.Setting + ": " + e.Reason
}

// Is makes errors.Is(err, ErrInvalidConfiguration) match
func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
